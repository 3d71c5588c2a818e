// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"os"
	"strings"

	"grecovery/pkg/common/strs"
	futil "grecovery/pkg/fileutil"
	"grecovery/pkg/install"
	"grecovery/pkg/log"
	"grecovery/pkg/ui"

	"golang.org/x/sys/unix"
)

// Run drives one complete recovery pass: resolve and persist the commanded
// action, execute it, fall back to the menu on any non-terminal outcome, and
// run the handoff protocol. Returns true when the run ended in success or a
// user-chosen exit; the caller reboots either way.
func (s *Session) Run(cliArgs []string) bool {
	s.ensureCacheMounted()

	args := ResolveArgs(s.Store, cliArgs)
	opts := ParseOptions(args)
	s.intent = opts.Intent
	s.setLocale(opts.Locale)
	if opts.ShowText {
		s.UI.ShowText(true)
	}

	if opts.FactoryMode {
		s.factoryMode()
	}

	action := s.Decide(opts)
	log.Logf("action: %s %s", action.Kind, action.Path)

	st := s.execute(action)
	s.finish(st)
	return st == StateSuccess || st == StateUserExit
}

func (s *Session) execute(a Action) State {
	var res install.Result
	switch a.Kind {
	case KindInstallPackage:
		s.UI.SetBackground(ui.BgInstalling)
		res = s.Inst.InstallPackage(a.Path)
	case KindInstallImage:
		s.UI.SetBackground(ui.BgInstalling)
		res = s.Inst.InstallImage(a.Path)
	case KindWipeData:
		res.Outcome = install.Success
		if err := s.wipeData(a.WipeAll); err != nil {
			log.Logln(err)
			res.Outcome = install.Error
		}
	case KindWipeCache:
		res.Outcome = install.Success
		if err := s.wipeCache(); err != nil {
			log.Logln(err)
			res.Outcome = install.Error
		}
	case KindJustExit:
		return StateUserExit
	case KindNone:
		s.UI.SetBackground(ui.BgNoCommand)
		return s.promptAndWait()
	}

	if res.Outcome == install.Success &&
		(a.Kind == KindInstallPackage || a.Kind == KindInstallImage) {
		// any commanded install that completed is recorded in the flag file
		s.updateDone = true
	}

	// package-driven cache wipe applies even when none was requested
	if res.Outcome == install.Success && res.WipeCache {
		log.Msg("Package requested a cache wipe.")
		if err := s.wipeCache(); err != nil {
			log.Logln(err)
		}
	}

	if res.Outcome != install.Success {
		// checkpoint before showing the error, so the failure is on
		// durable storage if the user pulls power while reading it
		s.finish(StateCheckpoint)
		s.actionFailed("Installation aborted.")
		return s.promptAndWait()
	}
	if s.UI.IsTextVisible() {
		return s.promptAndWait()
	}
	return StateSuccess
}

// setLocale picks the run's locale: the explicit argument, else the cached
// value from the previous run, else the environment.
func (s *Session) setLocale(arg string) {
	s.Locale = arg
	if s.Locale == "" {
		if lines, err := futil.ReadLines(strs.LocaleFile(), 1, 64); err == nil && len(lines) > 0 {
			s.Locale = strings.TrimSpace(lines[0])
		}
	}
	if s.Locale == "" {
		s.Locale = os.Getenv(strs.LocaleEnv())
	}
	log.Logf("locale %q", s.Locale)
}

// factoryMode replaces this process with the factory test tool. Only
// returns on exec failure.
func (s *Session) factoryMode() {
	log.Msg("Entering factory mode...")
	s.finish(StateCheckpoint)
	tool := strs.SDTool()
	err := unix.Exec(tool, []string{tool, "factory"}, os.Environ())
	log.Fatalf("exec %s: %s", tool, err)
}
