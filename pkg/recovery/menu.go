// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	fp "path/filepath"
	"time"

	"grecovery/pkg/common/strs"
	"grecovery/pkg/install"
	"grecovery/pkg/log"
	"grecovery/pkg/ui"
)

const keyTimeout = 120 * time.Second

// itemTimeout is returned by the selection loop when input never arrived and
// nothing was ever shown to the user.
const itemTimeout = -1

// promptAndWait is the interactive fallback loop, entered when the primary
// action failed, was absent, or asked for attention. Each pass re-runs the
// checkpoint step first, so repeated entry is side-effect-idempotent. The
// loop ends with a terminal state: reboot chosen, an action that succeeded,
// or an unattended timeout.
func (s *Session) promptAndWait() State {
	for {
		s.finish(StateCheckpoint)
		s.UI.FlushKeys()

		sel := s.menuSelection()
		if sel == itemTimeout {
			log.Log("no input; rebooting")
			return StateUserExit
		}

		switch s.Dev.Invoke(sel) {
		case ActionReboot:
			return StateUserExit

		case ActionWipeData:
			if !s.confirmWipe() {
				continue
			}
			if err := s.wipeData(false); err != nil {
				s.actionFailed("Data wipe failed: %s", err)
			}

		case ActionWipeCache:
			if err := s.wipeCache(); err != nil {
				s.actionFailed("Cache wipe failed: %s", err)
			}

		case ActionRecoverBackup:
			if err := s.wipeData(false); err != nil {
				s.actionFailed("Restore from backup failed: %s", err)
			}

		case ActionApplyRemovable:
			if st, done := s.menuInstall(fp.Join(strs.USBRoot(), "update.zip"), false); done {
				return st
			}

		case ActionApplyCache:
			if st, done := s.menuInstall(fp.Join(strs.CacheRoot(), "update.zip"), false); done {
				return st
			}

		case ActionApplyImage:
			if st, done := s.menuInstall(fp.Join(strs.USBRoot(), "update.img"), true); done {
				return st
			}

		case ActionSideload:
			res := s.Inst.Sideload()
			if st, done := s.afterMenuInstall(res); done {
				return st
			}
		}
	}
}

// menuSelection waits for the user to pick a menu item. When the text view
// is down, the first key only brings the menu up. A key timeout reboots the
// device, but only if no text was ever shown this run; silently rebooting
// out from under a user reading an error is worse than waiting.
func (s *Session) menuSelection() int {
	headers, items := s.Dev.Menu()
	shown := s.UI.IsTextVisible()
	if shown {
		s.UI.StartMenu(headers, items, 0)
	}
	sel := 0
	for {
		k, timedOut := s.UI.WaitKey(keyTimeout)
		if timedOut {
			if s.UI.WasTextEverVisible() {
				continue
			}
			return itemTimeout
		}
		if !shown {
			s.UI.ShowText(true)
			s.UI.StartMenu(headers, items, 0)
			shown = true
			continue
		}
		switch s.Dev.HandleKey(k) {
		case ui.HighlightUp:
			sel = s.UI.SelectMenu(sel - 1)
		case ui.HighlightDown:
			sel = s.UI.SelectMenu(sel + 1)
		case ui.InvokeItem:
			s.UI.EndMenu()
			return sel
		}
	}
}

// confirmWipe double-checks a user-initiated data wipe. The yes item sits
// alone in a field of noes so a held-down key cannot land on it.
func (s *Session) confirmWipe() bool {
	headers := []string{"Confirm wipe of all user data?", "  THIS CAN NOT BE UNDONE."}
	items := make([]string, 11)
	for i := range items {
		items[i] = " No"
	}
	const yes = 7
	items[yes] = " Yes -- delete all user data"

	s.UI.StartMenu(headers, items, 0)
	defer s.UI.EndMenu()
	sel := 0
	for {
		k, timedOut := s.UI.WaitKey(keyTimeout)
		if timedOut {
			return false
		}
		switch s.Dev.HandleKey(k) {
		case ui.HighlightUp:
			sel = s.UI.SelectMenu(sel - 1)
		case ui.HighlightDown:
			sel = s.UI.SelectMenu(sel + 1)
		case ui.InvokeItem:
			return sel == yes
		}
	}
}

// menuInstall runs an install picked from the menu. done is true when the
// loop should end with the returned terminal state.
func (s *Session) menuInstall(path string, image bool) (State, bool) {
	s.UI.SetBackground(ui.BgInstalling)
	if fp.Dir(path) != strs.CacheRoot() {
		s.Vol.WaitRemovable(removableWait)
		if found, ok := s.Vol.FindOnRemovable(fp.Base(path)); ok {
			path = found
		}
	}
	var res install.Result
	if image {
		res = s.Inst.InstallImage(path)
	} else {
		res = s.Inst.InstallPackage(path)
	}
	return s.afterMenuInstall(res)
}

func (s *Session) afterMenuInstall(res install.Result) (State, bool) {
	if res.Outcome != install.Success {
		s.actionFailed("Installation aborted.")
		return StateRetry, false
	}
	if res.WipeCache {
		log.Msg("Package requested a cache wipe.")
		if err := s.wipeCache(); err != nil {
			log.Logln(err)
		}
	}
	if s.UI.IsTextVisible() {
		// user is watching; show the result and stay in the menu
		log.Msg("Install from menu complete.")
		return StateRetry, false
	}
	return StateSuccess, true
}

func (s *Session) actionFailed(format string, args ...interface{}) {
	log.Msgf(format, args...)
	s.UI.SetBackground(ui.BgError)
	s.UI.ShowText(true)
}
