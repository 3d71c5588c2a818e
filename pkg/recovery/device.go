// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"grecovery/pkg/ui"
)

// MenuAction is what a selected menu item does.
type MenuAction int

const (
	ActionNone MenuAction = iota
	ActionReboot
	ActionApplyRemovable
	ActionApplyCache
	ActionApplyImage
	ActionWipeData
	ActionWipeCache
	ActionRecoverBackup
	ActionSideload
)

// Device holds the board-specific pieces: the pre-wipe hook, the keymap, and
// the fallback menu. The default suits generic hardware; ports override it.
type Device interface {
	// PreWipeData runs a board-specific hook before user data is erased.
	// Best-effort; an error does not stop the wipe.
	PreWipeData() error
	// HandleKey translates a key into a menu event (ui.HighlightUp etc).
	HandleKey(k ui.Key) int
	// Menu returns the headers and items of the fallback menu.
	Menu() (headers, items []string)
	// Invoke maps a selected item index to its action.
	Invoke(item int) MenuAction
}

// DefaultDevice is the stock keymap and menu.
type DefaultDevice struct{}

var _ Device = DefaultDevice{}

func (DefaultDevice) PreWipeData() error { return nil }

func (DefaultDevice) HandleKey(k ui.Key) int {
	switch k {
	case ui.KeyUp:
		return ui.HighlightUp
	case ui.KeyDown:
		return ui.HighlightDown
	case ui.KeyEnter:
		return ui.InvokeItem
	}
	return ui.NoAction
}

var defaultMenuItems = []string{
	"reboot system now",
	"apply update from external storage",
	"apply update from cache",
	"apply raw image from external storage",
	"wipe data/factory reset",
	"wipe cache partition",
	"recover system from backup",
	"apply update from adb",
}

func (DefaultDevice) Menu() (headers, items []string) {
	headers = []string{"Recovery", "Use up/down and enter."}
	return headers, defaultMenuItems
}

func (DefaultDevice) Invoke(item int) MenuAction {
	switch item {
	case 0:
		return ActionReboot
	case 1:
		return ActionApplyRemovable
	case 2:
		return ActionApplyCache
	case 3:
		return ActionApplyImage
	case 4:
		return ActionWipeData
	case 5:
		return ActionWipeCache
	case 6:
		return ActionRecoverBackup
	case 7:
		return ActionSideload
	}
	return ActionNone
}
