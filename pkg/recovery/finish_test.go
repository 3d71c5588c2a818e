// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"os"
	"testing"

	"grecovery/pkg/bcb"
	"grecovery/pkg/common/strs"
	"grecovery/pkg/log/testlog"
)

func snapshotState(t *testing.T) map[string]string {
	t.Helper()
	state := make(map[string]string)
	for _, f := range []string{
		strs.LogFile(), strs.LastLogFile(), strs.LastInstallFile(),
		strs.IntentFile(), strs.LocaleFile(), strs.FlagFile(), strs.BCBDevice(),
	} {
		b, err := os.ReadFile(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			t.Fatal(err)
		}
		state[f] = string(b)
	}
	return state
}

// Two consecutive finishes with the same state produce the same files, byte
// for byte, as one.
func TestFinishIdempotent(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	s, _, _, _ := newTestSession(t)
	s.Locale = "en_US"
	s.intent = "done"

	if err := os.WriteFile(strs.WorkingLog(), []byte("line one\nline two\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(strs.TmpInstallFile(), []byte("/cache/ota.zip\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Store.Save(bcb.Message{Command: "boot-recovery", Recovery: "recovery\n"}); err != nil {
		t.Fatal(err)
	}

	s.finish(StateSuccess)
	first := snapshotState(t)
	s.finish(StateSuccess)
	second := snapshotState(t)

	if len(first) != len(second) {
		t.Fatalf("file sets differ: %v vs %v", first, second)
	}
	for f, content := range first {
		if second[f] != content {
			t.Errorf("%s changed on second finish:\n%q\nvs\n%q", f, content, second[f])
		}
	}

	if !mustLoad(t, s).IsEmpty() {
		t.Error("control record not cleared")
	}
	if got := first[strs.IntentFile()]; got != "done" {
		t.Errorf("intent %q", got)
	}
	if got := first[strs.LocaleFile()]; got != "en_US" {
		t.Errorf("locale cache %q", got)
	}
}

// Repeated checkpoints copy each working-log byte into the durable log
// exactly once, in order, even as the working log grows between calls.
func TestFinishLogCursor(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	s, _, _, _ := newTestSession(t)

	if err := os.WriteFile(strs.WorkingLog(), []byte("alpha\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s.finish(StateCheckpoint)
	s.finish(StateCheckpoint)

	wl, err := os.OpenFile(strs.WorkingLog(), os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = wl.WriteString("beta\n"); err != nil {
		t.Fatal(err)
	}
	wl.Close()
	s.finish(StateCheckpoint)

	durable, err := os.ReadFile(strs.LogFile())
	if err != nil {
		t.Fatal(err)
	}
	if string(durable) != "alpha\nbeta\n" {
		t.Errorf("durable log %q, want each byte exactly once", durable)
	}
	last, err := os.ReadFile(strs.LastLogFile())
	if err != nil {
		t.Fatal(err)
	}
	if string(last) != "alpha\nbeta\n" {
		t.Errorf("last log %q", last)
	}
}

// Checkpoints never clear the record or remove the command file; terminal
// states do.
func TestFinishClearPolicy(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	s, _, _, _ := newTestSession(t)

	save := func() {
		err := s.Store.Save(bcb.Message{Command: "boot-recovery", Recovery: "recovery\n--wipe_data\n"})
		if err != nil {
			t.Fatal(err)
		}
		if err = os.WriteFile(strs.CommandFile(), []byte("--wipe_data\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	save()
	s.finish(StateCheckpoint)
	if mustLoad(t, s).IsEmpty() {
		t.Error("checkpoint cleared the record")
	}
	if _, err := os.Stat(strs.CommandFile()); err != nil {
		t.Error("checkpoint removed the command file")
	}

	s.finish(StateRetry)
	if mustLoad(t, s).IsEmpty() {
		t.Error("retry state cleared the record")
	}

	s.finish(StateUserExit)
	if !mustLoad(t, s).IsEmpty() {
		t.Error("user exit did not clear the record")
	}
	if _, err := os.Stat(strs.CommandFile()); !os.IsNotExist(err) {
		t.Error("user exit did not remove the command file")
	}

	save()
	s.finish(StateSuccess)
	if !mustLoad(t, s).IsEmpty() {
		t.Error("success did not clear the record")
	}
}
