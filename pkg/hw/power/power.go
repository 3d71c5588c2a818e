// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package power handles poweroff- and reboot-related functionality, including
//running pre-reboot (Preboot) functions registered with the housekeeping pkg.
package power

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"grecovery/pkg/common/strs"
	hk "grecovery/pkg/init/housekeeping"
	"grecovery/pkg/log"

	"golang.org/x/sys/unix"
)

// Defines the action taken on failure, which is to reboot. Install via
// log.SetFatalAction at startup.
var FatalAction = log.FailAction{
	MsgPfx:     "ERROR, rebooting:",
	Terminator: FailReboot,
}

//Reboot.
func FailReboot() {
	Reboot(false)
}

//Reboot after a successful run.
func RebootSuccess() {
	Reboot(true)
}

//Not for general use - prefer FailReboot() or RebootSuccess()
func Reboot(success bool) {
	/* this func can be called from a defer statement; deferred functions
	   will execute even if panic() was called. exiting or rebooting will
	   mask any such panic, so check for it and log it
	*/
	x := recover()
	if x != nil {
		log.Logf("panic() caught in reboot(success=%t)", success)
		success = false
		log.Msgf("internal error: %s", x)
		stars := "***********************************************************"
		log.Logf("%s\nstack trace:\n%s\n%s", stars, debug.Stack(), stars)
	}

	hk.Preboots.Perform(success)
	if os.Getpid() != 1 || os.Getenv(strs.NoRebootEnv()) != "" {
		fmt.Fprintln(os.Stderr, "would reboot here")
		os.Exit(0)
	}
	time.Sleep(2 * time.Second)
	err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	if err != nil {
		fmt.Printf("%s", err)
	}
}

func Off() {
	hk.Preboots.Perform(true)
	if os.Getpid() != 1 || os.Getenv(strs.NoRebootEnv()) != "" {
		fmt.Fprintln(os.Stderr, "would shutdown here")
		os.Exit(0)
	}
	time.Sleep(2 * time.Second)
	err := unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF)
	if err != nil {
		fmt.Printf("%s", err)
	}
}
