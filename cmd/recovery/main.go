// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Command recovery is the recovery-mode pid 1 payload. It resolves the
// commanded action from the boot control block, the command file, or its own
// arguments, executes it, and reboots; see pkg/recovery.
package main

import (
	"fmt"
	"os"

	"grecovery/pkg/bcb"
	"grecovery/pkg/common/strs"
	"grecovery/pkg/hw/power"
	hk "grecovery/pkg/init/housekeeping"
	"grecovery/pkg/install"
	"grecovery/pkg/log"
	"grecovery/pkg/log/flags"
	"grecovery/pkg/recovery"
	"grecovery/pkg/recovery/disk"
	"grecovery/pkg/ui"

	"golang.org/x/sys/unix"
)

// adbd is the stripped-down sideload-only daemon. Invoked with the sentinel
// arg, this binary is only a trampoline into it.
const adbdPath = "/sbin/adbd"

func main() {
	if len(os.Args) == 2 && os.Args[1] == "--adbd" {
		err := unix.Exec(adbdPath, []string{adbdPath}, os.Environ())
		fmt.Fprintf(os.Stderr, "exec %s: %s\n", adbdPath, err)
		os.Exit(1)
	}

	log.SetPrefix(strs.LogPfx())
	log.SetFatalAction(power.FatalAction)
	log.AddConsoleLog(flags.EndUser)
	if _, err := log.AddNamedFileLog(strs.WorkingLog()); err != nil {
		// keep events in memory; they still reach the durable log once
		// cache is usable
		fmt.Fprintf(os.Stderr, "working log: %s\n", err)
	} else {
		log.FlushMemLog()
	}
	log.Log("recovery starting")

	hk.AddPrebootDefaults(disk.UnmountAll)
	disk.LoadVolumeTable()

	console, err := ui.NewConsole()
	if err != nil {
		log.Fatalf("no usable console: %s", err)
	}
	defer console.Close()
	hk.Preboots.Add(&hk.HkTask{Name: "console.restore", Func: func(_ bool) { console.Close() }})

	s := recovery.NewSession(console, recovery.DiskVolumes{},
		&install.ExecInstaller{}, recovery.DefaultDevice{},
		bcb.NewStore(strs.BCBDevice()), nil)
	success := s.Run(os.Args)

	log.Logf("recovery done, success=%t", success)
	power.Reboot(success)
}
