// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"fmt"
	"os"
	fp "path/filepath"

	"grecovery/pkg/common/strs"
	futil "grecovery/pkg/fileutil"
	"grecovery/pkg/log"

	"golang.org/x/sys/unix"
)

// finish is the checkpoint/handoff sequence. Idempotent: any number of
// consecutive invocations with the same state leaves the same end state on
// disk. The fallback menu calls it with StateCheckpoint on every pass;
// terminal states additionally clear the control record (per the clear
// policy), remove the command file, and unmount cache.
//
// Every step is individually best-effort. A failing step is logged and the
// rest still run; the design assumption is that a power cycle can land
// between any two of them.
func (s *Session) finish(st State) {
	s.ensureCacheMounted()
	if err := os.MkdirAll(strs.RecoveryDir(), 0755); err != nil {
		log.Logln(err)
	}

	// one-shot intent for the main system, only on a terminal path
	if s.intent != "" && st != StateCheckpoint {
		if err := os.WriteFile(strs.IntentFile(), []byte(s.intent), 0644); err != nil {
			log.Logln(err)
		}
	}

	// locale cache, reused by a future run lacking --locale
	if s.Locale != "" {
		if err := os.WriteFile(strs.LocaleFile(), []byte(s.Locale), 0644); err != nil {
			log.Logln(err)
		}
	}

	s.copyLogs()

	// last install result snapshot
	if _, err := os.Stat(strs.TmpInstallFile()); err == nil {
		if err = futil.CopyFile(strs.TmpInstallFile(), strs.LastInstallFile(), 0644); err != nil {
			log.Logln(err)
		}
	}

	normalizePerms()

	if s.updateDone && st == StateSuccess {
		flag := fmt.Sprintf("success$path=%s", s.pendingPath)
		if err := os.WriteFile(strs.FlagFile(), []byte(flag), 0644); err != nil {
			log.Logln(err)
		}
	}

	if s.Clear(st) {
		if err := s.Store.Clear(); err != nil {
			log.Logf("clearing control record: %s", err)
		}
		if err := os.Remove(strs.CommandFile()); err != nil && !os.IsNotExist(err) {
			log.Logln(err)
		}
	}

	if st != StateCheckpoint {
		if err := s.Vol.EnsureUnmounted(strs.CacheRoot()); err != nil {
			log.Logln(err)
		}
	}
	unix.Sync()
}

// copyLogs appends the newly-written portion of the working log to the
// durable log and snapshots the whole working log as the last-run copy. The
// cursor guarantees each working-log byte lands in the durable log exactly
// once across repeated checkpoints.
func (s *Session) copyLogs() {
	off, err := futil.CopyTail(strs.WorkingLog(), strs.LogFile(), s.logOffset, true)
	if err != nil {
		log.Logf("durable log: %s", err)
	}
	s.logOffset = off
	if err = futil.CopyFile(strs.WorkingLog(), strs.LastLogFile(), 0600); err != nil {
		log.Logf("last log: %s", err)
	}
}

// normalizePerms keeps persisted state readable by the main system.
func normalizePerms() {
	for _, f := range []string{
		strs.LogFile(), strs.LastLogFile(), strs.LastInstallFile(),
		strs.IntentFile(), strs.LocaleFile(), strs.FlagFile(),
	} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := os.Chmod(f, 0640); err != nil {
			log.Logln(err)
		}
	}
	if err := os.Chmod(fp.Dir(strs.LogFile()), 0770); err != nil && !os.IsNotExist(err) {
		log.Logln(err)
	}
}
