// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fileutil

import (
	"os"
	fp "path/filepath"
	"time"

	"grecovery/pkg/log"

	"github.com/rjeczalik/notify"
)

// WaitForCreate waits for path to appear, using fs events on the parent dir
// with a polling fallback. Device nodes can take a moment to show up after
// media is inserted. Returns true if the path appeared before the timeout.
func WaitForCreate(path string, timeout time.Duration) bool {
	c := make(chan notify.EventInfo, 8)
	dir := fp.Dir(path)
	if err := notify.Watch(dir, c, notify.Create); err != nil {
		log.Logf("watch %s: %s", dir, err)
		return WaitFor(path, timeout)
	}
	defer notify.Stop(c)

	if _, err := os.Stat(path); err == nil {
		return true
	}
	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			return false
		case <-c:
		case <-time.After(500 * time.Millisecond):
			//poll in case an event was dropped
		}
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
}
