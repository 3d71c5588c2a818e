// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"bytes"
	"os"
	fp "path/filepath"
	"testing"

	"grecovery/pkg/log/testlog"

	"github.com/ulikunitz/xz"
)

func TestVerifyMissing(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	if got := verify(fp.Join(t.TempDir(), "nope.zip")); got != Error {
		t.Errorf("got %s, want error", got)
	}
}

func TestVerifyEmpty(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	f := fp.Join(t.TempDir(), "empty.zip")
	if err := os.WriteFile(f, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := verify(f); got != Corrupt {
		t.Errorf("got %s, want corrupt", got)
	}
}

// Uncompressed packages pass through; the update tool validates its own
// formats.
func TestVerifyUncompressed(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	f := fp.Join(t.TempDir(), "update.img")
	if err := os.WriteFile(f, []byte("raw image data, long enough"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := verify(f); got != Success {
		t.Errorf("got %s, want success", got)
	}
}

// A file claiming to be xz but failing to decompress is corrupt.
func TestVerifyTruncatedXz(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = w.Write(bytes.Repeat([]byte("payload "), 1024)); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	good := buf.Bytes()

	dir := t.TempDir()
	whole := fp.Join(dir, "good.xz")
	if err = os.WriteFile(whole, good, 0644); err != nil {
		t.Fatal(err)
	}
	if got := verify(whole); got != Success {
		t.Errorf("intact stream: got %s, want success", got)
	}

	cut := fp.Join(dir, "cut.xz")
	if err = os.WriteFile(cut, good[:len(good)/2], 0644); err != nil {
		t.Fatal(err)
	}
	if got := verify(cut); got != Corrupt {
		t.Errorf("truncated stream: got %s, want corrupt", got)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{
		None:        "none",
		Success:     "success",
		Error:       "error",
		Corrupt:     "corrupt",
		Outcome(42): "Outcome(42)",
	} {
		if got := o.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
