// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package bcb

import (
	"bytes"
	"errors"
	"os"
	fp "path/filepath"
	"strings"
	"testing"

	"grecovery/pkg/log/testlog"
)

func tmpStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(fp.Join(t.TempDir(), "misc"))
}

func TestRoundTrip(t *testing.T) {
	s := tmpStore(t)
	in := Message{
		Command:  "boot-recovery",
		Recovery: "recovery\n--wipe_data\n",
	}
	if err := s.Save(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}

	fi, err := os.Stat(s.Device())
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != BlockLen {
		t.Errorf("record is %d bytes, want %d", fi.Size(), BlockLen)
	}
}

// Fields at or past their fixed size are rejected, not silently truncated.
func TestFieldLen(t *testing.T) {
	s := tmpStore(t)
	long := Message{Command: strings.Repeat("x", CommandLen)}
	if err := s.Save(long); !errors.Is(err, ErrFieldLen) {
		t.Errorf("got %v, want ErrFieldLen", err)
	}
	long = Message{Recovery: "recovery\n" + strings.Repeat("x", RecoveryLen)}
	if err := s.Save(long); !errors.Is(err, ErrFieldLen) {
		t.Errorf("got %v, want ErrFieldLen", err)
	}
	// one under the limit fits
	ok := Message{Command: strings.Repeat("x", CommandLen-1)}
	if err := s.Save(ok); err != nil {
		t.Error(err)
	}
}

// Erased flash reads as all 0xff; that is an empty record, not garbage.
func TestErasedFlash(t *testing.T) {
	s := tmpStore(t)
	blk := bytes.Repeat([]byte{0xff}, BlockLen)
	if err := os.WriteFile(s.Device(), blk, 0600); err != nil {
		t.Fatal(err)
	}
	m, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsEmpty() {
		t.Errorf("erased flash decoded as %+v", m)
	}
}

func TestClear(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	s := tmpStore(t)
	err := s.Save(Message{Command: "boot-recovery", Recovery: "recovery\n--wipe_cache\n"})
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Clear(); err != nil {
		t.Fatal(err)
	}
	m, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsEmpty() {
		t.Errorf("record not empty after clear: %+v", m)
	}
	tlog.MustContain(t, "clearing boot control block")
}

// A missing record is degraded, not fatal: zero message plus the error.
func TestLoadMissing(t *testing.T) {
	s := tmpStore(t)
	m, err := s.Load()
	if err == nil {
		t.Error("expected an error for a missing record")
	}
	if !m.IsEmpty() {
		t.Errorf("got %+v, want zero message", m)
	}
}

// A short record is also degraded; no partial decode.
func TestLoadShort(t *testing.T) {
	s := tmpStore(t)
	if err := os.WriteFile(s.Device(), []byte("boot-recovery"), 0600); err != nil {
		t.Fatal(err)
	}
	m, err := s.Load()
	if err == nil {
		t.Error("expected an error for a short record")
	}
	if !m.IsEmpty() {
		t.Errorf("got %+v, want zero message", m)
	}
}
