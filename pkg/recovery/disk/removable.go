// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package disk

import (
	"os"
	"os/exec"
	fp "path/filepath"
	"strings"
	"time"

	"grecovery/pkg/common/strs"
	futil "grecovery/pkg/fileutil"
	"grecovery/pkg/hw/block"
	"grecovery/pkg/log"

	"github.com/u-root/u-root/pkg/mount"
	"golang.org/x/sys/unix"
)

// FindOnRemovable probes every sd* device for the given path (relative to the
// media root), mounting each candidate at strs.USBRoot(). vfat is tried
// first, then ntfs. On success the matching device stays mounted and the path
// comes back rewritten under USBRoot; on total failure the input comes back
// unchanged with found false, so the eventual open fails with a sensible name
// in the log.
func FindOnRemovable(relpath string) (string, bool) {
	relpath = strings.TrimPrefix(relpath, "/")
	devs := block.ListRemovable()
	if len(devs) == 0 {
		log.Log("no removable devices present")
		return relpath, false
	}
	if err := os.MkdirAll(strs.USBRoot(), 0755); err != nil {
		log.Logln(err)
	}
	for _, dev := range devs {
		for _, fstype := range []string{"vfat", "ntfs"} {
			if !mountRemovable(dev, fstype) {
				continue
			}
			full := fp.Join(strs.USBRoot(), relpath)
			if _, err := os.Stat(full); err == nil {
				log.Logf("found %s on %s (%s)", relpath, dev, fstype)
				return full, true
			}
			_ = mount.Unmount(strs.USBRoot(), false, false)
		}
	}
	log.Logf("%s not found on any removable device", relpath)
	return relpath, false
}

func mountRemovable(dev, fstype string) bool {
	_, err := mount.Mount(dev, strs.USBRoot(), fstype, "", unix.MS_RDONLY)
	if err == nil {
		return true
	}
	// ntfs needs the fuse helper
	mnt := exec.Command("mount", "-r", "-t", fstype, dev, strs.USBRoot())
	_, ok := log.Cmd(mnt)
	return ok
}

// WaitRemovable blocks until at least one sd* device node appears, or the
// timeout elapses. Media enumeration races recovery startup after a cold
// boot, so installs from removable media wait briefly before probing.
func WaitRemovable(timeout time.Duration) bool {
	if len(block.ListRemovable()) > 0 {
		return true
	}
	log.Msg("Waiting for removable media...")
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		// sd* nodes appear directly in BlockDir; watch for any create there.
		if futil.WaitForCreate(fp.Join(strs.BlockDir(), "sda"), 2*time.Second) {
			return true
		}
		if len(block.ListRemovable()) > 0 {
			return true
		}
	}
	return len(block.ListRemovable()) > 0
}
