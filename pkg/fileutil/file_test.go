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
	"strings"
	"testing"
	"time"

	"grecovery/pkg/log/testlog"
)

func TestReadLines(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	f := fp.Join(t.TempDir(), "command")
	content := "--update_package=/cache/ota.zip\n\n--show_text\n"
	if err := os.WriteFile(f, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadLines(f, 10, 100)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"--update_package=/cache/ota.zip", "", "--show_text"}
	if len(lines) != len(want) {
		t.Fatalf("got %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestReadLinesCaps(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	f := fp.Join(t.TempDir(), "many")
	content := strings.Repeat("line\n", 20) + strings.Repeat("x", 50) + "\n"
	if err := os.WriteFile(f, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadLines(f, 5, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 5 {
		t.Errorf("got %d lines, want cap of 5", len(lines))
	}

	lines, err = ReadLines(f, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds length cap", l)
		}
	}
}

// An over-long line is truncated in place; the lines after it still read.
func TestReadLinesLongLine(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	f := fp.Join(t.TempDir(), "long")
	content := "before\n" + strings.Repeat("x", 1<<16) + "\nafter\n"
	if err := os.WriteFile(f, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadLines(f, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"before", strings.Repeat("x", 10), "after"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := fp.Join(dir, "src")
	dst := fp.Join(dir, "sub", "dst")
	if err := os.WriteFile(src, []byte("payload"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("dst %q", got)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0644 {
		t.Errorf("mode %v", fi.Mode())
	}
}

func TestWaitFor(t *testing.T) {
	dir := t.TempDir()
	missing := fp.Join(dir, "never")
	if WaitFor(missing, 300*time.Millisecond) {
		t.Error("found a file that does not exist")
	}
	present := fp.Join(dir, "present")
	if err := os.WriteFile(present, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !WaitFor(present, 2*time.Second) {
		t.Error("existing file not found")
	}
}
