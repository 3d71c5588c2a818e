// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package ui abstracts the operator-facing display and key input. The
//production implementation drives the console; tests substitute a scripted
//fake.
package ui

import "time"

// Background indicates the state shown when no menu or text is up.
type Background int

const (
	BgNone Background = iota
	BgNoCommand
	BgError
	BgErasing
	BgInstalling
)

func (b Background) String() string {
	switch b {
	case BgNone:
		return ""
	case BgNoCommand:
		return "No command."
	case BgError:
		return "Error!"
	case BgErasing:
		return "Erasing..."
	case BgInstalling:
		return "Installing update..."
	}
	return "Background OUT OF RANGE"
}

// Events returned by key translation. Negative so they cannot collide with
// menu item indexes.
const (
	NoAction      = -1
	HighlightUp   = -2
	HighlightDown = -3
	InvokeItem    = -4
)

// Physical keys, post escape-sequence translation.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyBack
)

// UI is the operator interface. Implementations own the highlight state of
// the active menu; callers drive it with events.
type UI interface {
	// Print writes a line of user-visible text.
	Print(format string, args ...interface{})

	// ShowText toggles the text/log view.
	ShowText(visible bool)
	IsTextVisible() bool
	// WasTextEverVisible reports whether the text view was ever shown this
	// run. Sticky; gates the idle-timeout reboot.
	WasTextEverVisible() bool

	SetBackground(b Background)

	// StartMenu displays a menu and highlights initial.
	StartMenu(headers, items []string, initial int)
	// SelectMenu moves the highlight to sel, clamped to the item range, and
	// returns the resulting position.
	SelectMenu(sel int) int
	// EndMenu takes the menu down. The text view stays as-is.
	EndMenu()

	// WaitKey blocks for the next key, or until the timeout elapses.
	WaitKey(timeout time.Duration) (k Key, timedOut bool)
	// FlushKeys discards buffered input.
	FlushKeys()
}
