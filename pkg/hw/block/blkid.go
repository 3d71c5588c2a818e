// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package block contains functions dealing with linux block devices.
package block

import (
	"fmt"
	"os"
	"os/exec"
	fp "path/filepath"
	"strings"

	"grecovery/pkg/common/strs"
	"grecovery/pkg/log"

	"github.com/google/shlex"
)

var Verbose bool

func parseBlkidOut(out []byte) (binfo BlkInfo, err error) {
	split := strings.Split(string(out), ":")
	if len(split) != 2 {
		err = fmt.Errorf("can't parse %s", string(out))
		return
	}
	elements, err := shlex.Split(split[1])
	if err != nil {
		return
	}
	for _, e := range elements {
		kv := strings.Split(e, "=")
		if len(kv) != 2 {
			log.Logf("blkid %s: can't parse %s, skipping", split[0], e)
			continue
		}
		//shlex removes spaces and quotes - we don't need to
		k, v := kv[0], kv[1]

		switch strings.ToUpper(k) {
		case "UUID":
			binfo.UUID = v
		case "TYPE":
			binfo.FsType = FsFromStr(v)
		case "LABEL":
			binfo.Label = v
		case "PARTUUID":
			binfo.Partition = true
			binfo.PartUUID = v
		default:
			if Verbose {
				log.Logf("blkid %s: ignoring %s", split[0], e)
			}
		}
	}
	if binfo.FsType.Recognized() {
		binfo.Partition = true
	}
	return
}

type FsType int

const (
	FsUnknown FsType = iota
	FsExt4
	FsNtfs
	FsFat
	FsExfat
)

func FsFromStr(s string) FsType {
	/* some of these probably won't ever be encountered */
	switch strings.ToLower(s) {
	case "ext2", "ext3", "ext4":
		return FsExt4
	case "ntfs", "ntfs-3g":
		return FsNtfs
	case "fat", "vfat":
		return FsFat
	case "exfat":
		return FsExfat
	}
	return FsUnknown
}

func (f FsType) String() (t string) {
	switch f {
	case FsUnknown:
		t = "unknown"
	case FsExt4:
		t = "ext4"
	case FsNtfs:
		t = "ntfs"
	case FsFat:
		t = "vfat"
	case FsExfat:
		t = "exfat"
	default:
		t = "fsType VALUE OUT OF RANGE"
	}
	return
}

func (f FsType) Recognized() bool {
	return f == FsExt4 || f == FsNtfs || f == FsFat || f == FsExfat
}

type BlkInfo struct {
	FsType    FsType
	UUID      string
	Partition bool
	PartUUID  string
	Label     string
	Device    string
}

func GetInfo(device string) (bi BlkInfo, err error) {
	blkid := exec.Command("/sbin/blkid", device)
	out, err := blkid.CombinedOutput()
	if err != nil {
		log.Logf("error %s executing %v\noutput:%s\n", err, blkid.Args, out)
		return
	}
	bi, err = parseBlkidOut(out)
	bi.Device = device
	return
}

func DetermineFSType(device string) FsType {
	bi, err := GetInfo(device)
	if err != nil {
		log.Logf("failed to recognize fs on %s", device)
	}
	return bi.FsType
}

// ListRemovable returns device nodes under strs.BlockDir() that look like
// removable/usb-attached disks or their partitions (sd*). Order follows the
// directory listing and is not guaranteed repeatable across boots.
func ListRemovable() (devs []string) {
	ents, err := os.ReadDir(strs.BlockDir())
	if err != nil {
		log.Logf("listing %s: %s", strs.BlockDir(), err)
		return nil
	}
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), "sd") {
			devs = append(devs, fp.Join(strs.BlockDir(), e.Name()))
		}
	}
	return
}

// ByName resolves a partition name (e.g. "userdata") to its device node via
// the by-name dir.
func ByName(part string) (string, error) {
	p := fp.Join(strs.ByNameDir(), part)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}
