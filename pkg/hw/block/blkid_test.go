// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package block

import (
	"testing"

	"grecovery/pkg/log/testlog"
)

func TestParseBlkidOut(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	out := []byte(`/dev/sda1: LABEL="UPDATE" UUID="4ACA-9B54" TYPE="vfat" PARTUUID="a0b1c2d3-01"`)
	bi, err := parseBlkidOut(out)
	if err != nil {
		t.Fatal(err)
	}
	if bi.Label != "UPDATE" {
		t.Errorf("label %q", bi.Label)
	}
	if bi.UUID != "4ACA-9B54" {
		t.Errorf("uuid %q", bi.UUID)
	}
	if bi.FsType != FsFat {
		t.Errorf("fstype %s", bi.FsType)
	}
	if !bi.Partition {
		t.Error("not flagged as partition")
	}
}

func TestParseBlkidGarbage(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	if _, err := parseBlkidOut([]byte("not blkid output")); err == nil {
		t.Error("garbage parsed without error")
	}
}

func TestFsFromStr(t *testing.T) {
	for in, want := range map[string]FsType{
		"ext2":    FsExt4,
		"ext4":    FsExt4,
		"NTFS":    FsNtfs,
		"ntfs-3g": FsNtfs,
		"vfat":    FsFat,
		"exfat":   FsExfat,
		"btrfs":   FsUnknown,
	} {
		if got := FsFromStr(in); got != want {
			t.Errorf("%s: got %s, want %s", in, got, want)
		}
	}
	if FsUnknown.Recognized() {
		t.Error("unknown fs counts as recognized")
	}
}
