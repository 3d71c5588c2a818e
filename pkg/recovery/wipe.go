// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"os"

	"grecovery/pkg/common/strs"
	"grecovery/pkg/log"
	"grecovery/pkg/ui"
)

const dataRoot = "/data"

// wipeData erases user data, preferring a clone of the backup partition over
// a fresh format; the format runs only when no backup exists or the clone
// fails. wipeAll additionally resizes the data filesystem and reformats
// internal shared storage. A data wipe always takes the cache with it.
func (s *Session) wipeData(wipeAll bool) error {
	s.UI.SetBackground(ui.BgErasing)
	log.Msg("-- Wiping data...")

	if err := s.Dev.PreWipeData(); err != nil {
		log.Logf("device wipe hook: %s", err)
	}
	if err := s.Vol.EnsureUnmounted(dataRoot); err != nil {
		return err
	}

	if err := s.Vol.CloneBackup(); err != nil {
		log.Logf("backup restore unavailable (%s), formatting", err)
		if err = s.Vol.Format(dataRoot); err != nil {
			return err
		}
	}

	if wipeAll {
		if err := s.Vol.CheckAndResize(dataRoot); err != nil {
			log.Logln(err)
		}
		if err := s.Vol.Format(strs.InternalRoot()); err != nil {
			log.Logln(err)
		}
	}

	if err := s.wipeCache(); err != nil {
		return err
	}
	log.Msg("Data wipe complete.")
	return nil
}

// wipeCache reformats the cache volume and remounts it so logging state can
// continue. The durable-log cursor restarts with the fresh volume.
func (s *Session) wipeCache() error {
	s.UI.SetBackground(ui.BgErasing)
	log.Msg("-- Wiping cache...")
	if err := s.Vol.EnsureUnmounted(strs.CacheRoot()); err != nil {
		return err
	}
	if err := s.Vol.Format(strs.CacheRoot()); err != nil {
		return err
	}
	s.logOffset = 0
	if err := s.Vol.EnsureMounted(strs.CacheRoot()); err != nil {
		log.Logln(err)
	} else if err = os.MkdirAll(strs.RecoveryDir(), 0755); err != nil {
		log.Logln(err)
	}
	log.Msg("Cache wipe complete.")
	return nil
}
