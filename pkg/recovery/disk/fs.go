// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package disk implements mount/unmount and format primitives for the named
//volumes recovery works with. It assumes exactly one recovery process
//instance at a time; volumes are a single global resource.
package disk

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	fp "path/filepath"
	"strings"

	"grecovery/pkg/common/strs"
	futil "grecovery/pkg/fileutil"
	"grecovery/pkg/log"

	"github.com/u-root/u-root/pkg/mount"
)

// Volume describes one named, mountable storage area.
type Volume struct {
	MountPoint string
	FsType     string
	Device     string
	Opts       string
	mounted    bool
}

var table []*Volume

var ErrNoVolume = errors.New("no volume for path")

// LoadVolumeTable populates the volume table from strs.RecoveryFstab(),
// falling back to built-in defaults when the file is absent or empty.
// Line format: mountpoint fstype device [opts]. Comments with '#'.
func LoadVolumeTable() {
	table = nil
	lines, err := futil.ReadLines(strs.RecoveryFstab(), 32, 512)
	if err != nil && !os.IsNotExist(err) {
		log.Logf("reading %s: %s", strs.RecoveryFstab(), err)
	}
	for _, l := range lines {
		if i := strings.IndexByte(l, '#'); i >= 0 {
			l = l[:i]
		}
		f := strings.Fields(l)
		if len(f) < 3 {
			continue
		}
		v := &Volume{MountPoint: f[0], FsType: f[1], Device: f[2]}
		if len(f) > 3 {
			v.Opts = f[3]
		}
		table = append(table, v)
	}
	if len(table) == 0 {
		table = defaultTable()
	}
	log.Logf("volume table: %d entries", len(table))
}

func defaultTable() []*Volume {
	byName := func(part string) string { return fp.Join(strs.ByNameDir(), part) }
	return []*Volume{
		{MountPoint: strs.CacheRoot(), FsType: "ext4", Device: byName("cache")},
		{MountPoint: "/data", FsType: "ext4", Device: byName(strs.DataPartName())},
		{MountPoint: "/system", FsType: "ext4", Device: byName("system")},
		{MountPoint: "/backup", FsType: "ext4", Device: byName("backup")},
		{MountPoint: strs.InternalRoot(), FsType: "vfat", Device: byName("user")},
		{MountPoint: strs.USBRoot(), FsType: "vfat", Device: ""},
		{MountPoint: "/misc", FsType: "emmc", Device: byName("misc")},
	}
}

// VolumeFor returns the volume whose mount point is a prefix of path, or nil.
// The longest match wins.
func VolumeFor(path string) *Volume {
	var best *Volume
	for _, v := range table {
		if path == v.MountPoint || strings.HasPrefix(path, v.MountPoint+"/") {
			if best == nil || len(v.MountPoint) > len(best.MountPoint) {
				best = v
			}
		}
	}
	return best
}

// EnsureMounted mounts the volume containing path, if not already mounted.
func EnsureMounted(path string) error {
	v := VolumeFor(path)
	if v == nil {
		return fmt.Errorf("%w: %s", ErrNoVolume, path)
	}
	return v.Mount()
}

// EnsureUnmounted unmounts the volume containing path, if mounted.
func EnsureUnmounted(path string) error {
	v := VolumeFor(path)
	if v == nil {
		return fmt.Errorf("%w: %s", ErrNoVolume, path)
	}
	return v.Umount()
}

func (v *Volume) Mount() error {
	if v.mounted {
		return nil
	}
	if v.Device == "" {
		return fmt.Errorf("no device for %s", v.MountPoint)
	}
	if err := os.MkdirAll(v.MountPoint, 0755); err != nil {
		log.Logln(err)
	}
	// Try u-root's Mount(). If it reports an error, retry with the mount
	// binary - FUSE types like ntfs-3g need the helper.
	_, err := mount.Mount(v.Device, v.MountPoint, v.FsType, v.Opts, 0)
	if err == nil {
		log.Logf("mount %s on %s", v.Device, v.MountPoint)
		v.mounted = true
		return nil
	}
	log.Logf("u-root mount failed with %s, trying binary...", err)
	mnt := exec.Command("mount", v.Device, v.MountPoint, "-t", v.FsType)
	if v.Opts != "" {
		mnt.Args = append(mnt.Args, "-o", v.Opts)
	}
	if _, ok := log.Cmd(mnt); !ok {
		return fmt.Errorf("mounting %s on %s failed", v.Device, v.MountPoint)
	}
	v.mounted = true
	return nil
}

func (v *Volume) Umount() error {
	if !v.mounted {
		return nil
	}
	err := mount.Unmount(v.MountPoint, false, true)
	if err != nil {
		log.Logf("umount %s: %s", v.MountPoint, err)
		return err
	}
	log.Logf("umount %s", v.MountPoint)
	v.mounted = false
	return nil
}

// Format reformats the volume containing path. The volume is unmounted
// first. Label is the base of the mount point.
func Format(path string) error {
	v := VolumeFor(path)
	if v == nil {
		return fmt.Errorf("%w: %s", ErrNoVolume, path)
	}
	if err := v.Umount(); err != nil {
		return err
	}
	label := strings.ToUpper(fp.Base(v.MountPoint))
	log.Logf("formatting %s as %s, label %s", v.Device, v.FsType, label)
	var mkfs *exec.Cmd
	if v.FsType == "vfat" {
		mkfs = exec.Command("mkdosfs", "-n", label, v.Device)
	} else {
		mkfs = exec.Command("mke2fs", "-L", label, "-m", "1", "-t", "ext4", v.Device)
	}
	if _, ok := log.Cmd(mkfs); !ok {
		return fmt.Errorf("formatting %s failed", v.Device)
	}
	return nil
}

// UnmountAll unmounts every mounted volume, in reverse table order. Suitable
// as a preboot housekeeping task.
func UnmountAll(_ bool) {
	log.Log("unmount all volumes")
	for i := len(table) - 1; i >= 0; i-- {
		if table[i].mounted {
			_ = table[i].Umount()
		}
	}
}
