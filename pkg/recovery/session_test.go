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
	"strings"
	"testing"
	"time"

	"grecovery/pkg/bcb"
	"grecovery/pkg/common/strs"
	"grecovery/pkg/install"
	"grecovery/pkg/ui"
)

// tmpStrs relocates every well-known path under a test dir.
type tmpStrs struct{ root string }

var _ strs.Stringer = tmpStrs{}

func (s tmpStrs) p(rel string) string       { return fp.Join(s.root, rel) }
func (s tmpStrs) EnvPrefix() string         { return "RECOVERY_" }
func (s tmpStrs) CacheRoot() string         { return s.p("cache") }
func (s tmpStrs) RecoveryDir() string       { return s.p("cache/recovery") }
func (s tmpStrs) CommandFile() string       { return s.p("cache/recovery/command") }
func (s tmpStrs) FlagFile() string          { return s.p("cache/recovery/last_flag") }
func (s tmpStrs) IntentFile() string        { return s.p("cache/recovery/intent") }
func (s tmpStrs) LogFile() string           { return s.p("cache/recovery/log") }
func (s tmpStrs) LastLogFile() string       { return s.p("cache/recovery/last_log") }
func (s tmpStrs) LastInstallFile() string   { return s.p("cache/recovery/last_install") }
func (s tmpStrs) LocaleFile() string        { return s.p("cache/recovery/last_locale") }
func (s tmpStrs) WorkingLog() string        { return s.p("tmp/recovery.log") }
func (s tmpStrs) TmpInstallFile() string    { return s.p("tmp/last_install") }
func (s tmpStrs) USBRoot() string           { return s.p("mnt/usb_storage") }
func (s tmpStrs) InternalRoot() string      { return s.p("mnt/internal_sd") }
func (s tmpStrs) AutoUpdateTag() string     { return "/FirmwareUpdate/auto_sd_update.tag" }
func (s tmpStrs) AutoUpdatePackage() string { return "/FirmwareUpdate/update.img" }
func (s tmpStrs) DataPartName() string      { return "userdata" }
func (s tmpStrs) BackupPartName() string    { return "databk" }
func (s tmpStrs) BCBDevice() string         { return s.p("dev/misc") }
func (s tmpStrs) BlockDir() string          { return s.p("dev/block") }
func (s tmpStrs) ByNameDir() string         { return s.p("dev/block/by-name") }
func (s tmpStrs) LegacyRootTag() string     { return "CACHE:" }
func (s tmpStrs) SDTool() string            { return s.p("sbin/sdtool") }
func (s tmpStrs) Updater() string           { return s.p("sbin/updater") }
func (s tmpStrs) ImageWriter() string       { return s.p("sbin/rkflash") }
func (s tmpStrs) LogPfx() string            { return "recovery_" }
func (s tmpStrs) RecoveryFstab() string     { return s.p("etc/recovery.fstab") }

type fakeUI struct {
	keys  []ui.Key
	bgs   []ui.Background
	lines []string

	visible bool
	ever    bool
	menus   int
	items   []string
	sel     int
}

var _ ui.UI = (*fakeUI)(nil)

func (f *fakeUI) Print(format string, args ...interface{}) {
	f.lines = append(f.lines, fmt.Sprintf(format, args...))
}
func (f *fakeUI) ShowText(v bool) {
	f.visible = v
	if v {
		f.ever = true
	}
}
func (f *fakeUI) IsTextVisible() bool      { return f.visible }
func (f *fakeUI) WasTextEverVisible() bool { return f.ever }
func (f *fakeUI) SetBackground(b ui.Background) {
	f.bgs = append(f.bgs, b)
}
func (f *fakeUI) StartMenu(headers, items []string, initial int) {
	f.menus++
	f.items = items
	f.sel = initial
	f.visible = true
	f.ever = true
}
func (f *fakeUI) SelectMenu(sel int) int {
	if sel < 0 {
		sel = 0
	}
	if sel >= len(f.items) {
		sel = len(f.items) - 1
	}
	f.sel = sel
	return sel
}
func (f *fakeUI) EndMenu() {}
func (f *fakeUI) WaitKey(_ time.Duration) (ui.Key, bool) {
	if len(f.keys) == 0 {
		return ui.KeyNone, true
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k, false
}
func (f *fakeUI) FlushKeys() {}

func (f *fakeUI) sawBackground(b ui.Background) bool {
	for _, got := range f.bgs {
		if got == b {
			return true
		}
	}
	return false
}

type fakeVol struct {
	mountErr map[string]error
	formats  map[string]int
	cloneErr error
	clones   int
	resizes  int

	removable bool
	found     map[string]string
}

var _ Volumes = (*fakeVol)(nil)

func (v *fakeVol) EnsureMounted(p string) error   { return v.mountErr[p] }
func (v *fakeVol) EnsureUnmounted(p string) error { return nil }
func (v *fakeVol) Format(p string) error {
	if v.formats == nil {
		v.formats = make(map[string]int)
	}
	v.formats[p]++
	return nil
}
func (v *fakeVol) CloneBackup() error {
	v.clones++
	return v.cloneErr
}
func (v *fakeVol) CheckAndResize(p string) error { v.resizes++; return nil }
func (v *fakeVol) FindOnRemovable(rel string) (string, bool) {
	rel = strings.TrimPrefix(rel, "/")
	if p, ok := v.found[rel]; ok {
		return p, true
	}
	return rel, false
}
func (v *fakeVol) WaitRemovable(time.Duration) bool { return v.removable }
func (v *fakeVol) UnmountAll(bool)                  {}

type fakeInst struct {
	res       install.Result
	pkgs      []string
	imgs      []string
	sideloads int
}

var _ install.Installer = (*fakeInst)(nil)

func (i *fakeInst) InstallPackage(path string) install.Result {
	i.pkgs = append(i.pkgs, path)
	return i.res
}
func (i *fakeInst) InstallImage(path string) install.Result {
	i.imgs = append(i.imgs, path)
	return i.res
}
func (i *fakeInst) Sideload() install.Result {
	i.sideloads++
	return i.res
}

// newTestSession wires a session out of fakes, with all well-known paths
// under a temp dir.
func newTestSession(t *testing.T) (*Session, *fakeUI, *fakeVol, *fakeInst) {
	t.Helper()
	root := t.TempDir()
	strs.SetStringer(tmpStrs{root})
	t.Cleanup(func() { strs.SetStringer(nil) })
	for _, d := range []string{"cache/recovery", "tmp", "dev", "etc"} {
		if err := os.MkdirAll(fp.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	fu := &fakeUI{}
	fv := &fakeVol{}
	fi := &fakeInst{}
	s := NewSession(fu, fv, fi, DefaultDevice{}, bcb.NewStore(strs.BCBDevice()), nil)
	return s, fu, fv, fi
}

func mustLoad(t *testing.T, s *Session) bcb.Message {
	t.Helper()
	m, err := s.Store.Load()
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return m
}
