// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"bytes"
	"io"
	"os"
	"os/exec"

	"grecovery/pkg/common/strs"
	"grecovery/pkg/log"

	"github.com/ulikunitz/xz"
	"golang.org/x/sys/unix"
)

// wipeMarker is written by the updater tool when the package asks for a
// cache wipe after install.
const wipeMarker = "/tmp/.wipe_cache"

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// ExecInstaller shells out to the platform update tools. It satisfies
// Installer.
type ExecInstaller struct{}

var _ Installer = (*ExecInstaller)(nil)

func (ei *ExecInstaller) InstallPackage(path string) Result {
	log.Msgf("Installing update %s...", path)
	if res := verify(path); res != Success {
		return record(path, Result{Outcome: res})
	}
	os.Remove(wipeMarker)
	upd := exec.Command(strs.Updater(), "--update-package", path)
	if _, ok := log.Cmd(upd); !ok {
		return record(path, Result{Outcome: Error})
	}
	res := Result{Outcome: Success}
	if _, err := os.Stat(wipeMarker); err == nil {
		res.WipeCache = true
		os.Remove(wipeMarker)
	}
	return record(path, res)
}

func (ei *ExecInstaller) InstallImage(path string) Result {
	log.Msgf("Writing firmware image %s...", path)
	if res := verify(path); res != Success {
		return record(path, Result{Outcome: res})
	}
	wr := exec.Command(strs.ImageWriter(), path)
	if _, ok := log.Cmd(wr); !ok {
		return record(path, Result{Outcome: Error})
	}
	return record(path, Result{Outcome: Success})
}

func (ei *ExecInstaller) Sideload() Result {
	log.Msg("Waiting for sideload connection...")
	// adbd writes the received package to a fixed path, then exits.
	const sideloadPkg = "/tmp/update.zip"
	os.Remove(sideloadPkg)
	adb := exec.Command("/sbin/adbd", "--sideload", sideloadPkg)
	if _, ok := log.Cmd(adb); !ok {
		return Result{Outcome: Error}
	}
	return ei.InstallPackage(sideloadPkg)
}

// verify sanity-checks a package before handing it to external tools. An
// unreadable or truncated compressed stream is Corrupt; anything
// environmental (no space for scratch files) is Error.
func verify(path string) Outcome {
	f, err := os.Open(path)
	if err != nil {
		log.Logf("open %s: %s", path, err)
		return Error
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.Size() == 0 {
		log.Logf("%s is empty or unreadable", path)
		return Corrupt
	}
	if !enoughScratch(fi.Size()) {
		log.Logf("not enough scratch space for %s (%d bytes)", path, fi.Size())
		return Error
	}
	magic := make([]byte, len(xzMagic))
	if _, err = io.ReadFull(f, magic); err != nil {
		log.Logf("reading %s: %s", path, err)
		return Corrupt
	}
	if !bytes.Equal(magic, xzMagic) {
		// not compressed; the update tool validates its own formats
		return Success
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		log.Logln(err)
		return Error
	}
	xr, err := xz.NewReader(f)
	if err == nil {
		_, err = io.Copy(io.Discard, xr)
	}
	if err != nil {
		log.Logf("%s fails integrity check: %s", path, err)
		return Corrupt
	}
	return Success
}

func enoughScratch(need int64) bool {
	var st unix.Statfs_t
	if err := unix.Statfs("/tmp", &st); err != nil {
		log.Logf("statfs /tmp: %s", err)
		return true
	}
	free := int64(st.Bavail) * st.Bsize
	return free >= need/4
}

// record notes the attempt in the working install record. The finisher
// snapshots it to durable storage.
func record(path string, r Result) Result {
	code := "0"
	if r.Outcome == Success {
		code = "1"
	}
	err := os.WriteFile(strs.TmpInstallFile(), []byte(path+"\n"+code+"\n"), 0644)
	if err != nil {
		log.Logln(err)
	}
	log.Logf("install of %s: %s", path, r.Outcome)
	return r
}
