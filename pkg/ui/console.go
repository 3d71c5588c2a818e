// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"grecovery/pkg/log"

	"golang.org/x/term"
)

// Console renders to the controlling terminal. Key input comes from a raw
// mode reader goroutine; arrow escape sequences are translated to KeyUp and
// KeyDown.
type Console struct {
	mu          sync.Mutex
	keys        chan Key
	oldState    *term.State
	background  Background
	textVisible bool
	textEver    bool

	headers   []string
	items     []string
	highlight int
	menuUp    bool
}

var _ UI = (*Console)(nil)

// NewConsole puts stdin in raw mode and starts the key reader. Call Close
// before exec'ing another program.
func NewConsole() (*Console, error) {
	c := &Console{keys: make(chan Key, 16)}
	st, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		// no tty; run headless, keys never arrive
		log.Logf("no raw console: %s", err)
	} else {
		c.oldState = st
	}
	go c.readKeys()
	return c, nil
}

func (c *Console) Close() {
	if c.oldState != nil {
		_ = term.Restore(int(os.Stdin.Fd()), c.oldState)
	}
}

func (c *Console) readKeys() {
	buf := make([]byte, 1)
	var esc []byte
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		b := buf[0]
		if len(esc) > 0 {
			esc = append(esc, b)
			if len(esc) == 3 {
				switch esc[2] {
				case 'A':
					c.keys <- KeyUp
				case 'B':
					c.keys <- KeyDown
				}
				esc = nil
			} else if esc[1] != '[' {
				esc = nil
			}
			continue
		}
		switch b {
		case 0x1b:
			esc = []byte{b}
		case '\r', '\n':
			c.keys <- KeyEnter
		case 'w', 'k':
			c.keys <- KeyUp
		case 's', 'j':
			c.keys <- KeyDown
		case 'q', 0x7f:
			c.keys <- KeyBack
		}
	}
}

func (c *Console) Print(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// raw mode: \n does not return the carriage
	fmt.Fprintf(os.Stdout, format+"\r\n", args...)
}

func (c *Console) ShowText(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textVisible = visible
	if visible {
		c.textEver = true
	}
}

func (c *Console) IsTextVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textVisible
}

func (c *Console) WasTextEverVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textEver
}

func (c *Console) SetBackground(b Background) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = b
	if !c.menuUp && !c.textVisible && b != BgNone {
		fmt.Fprintf(os.Stdout, "%s\r\n", b)
	}
}

func (c *Console) StartMenu(headers, items []string, initial int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = headers
	c.items = items
	c.highlight = clamp(initial, len(items))
	c.menuUp = true
	c.textVisible = true
	c.textEver = true
	c.redraw()
}

func (c *Console) SelectMenu(sel int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.menuUp {
		return sel
	}
	c.highlight = clamp(sel, len(c.items))
	c.redraw()
	return c.highlight
}

func (c *Console) EndMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menuUp = false
}

func clamp(sel, n int) int {
	if sel < 0 {
		return 0
	}
	if sel >= n {
		return n - 1
	}
	return sel
}

func (c *Console) redraw() {
	out := os.Stdout
	fmt.Fprint(out, "\r\n")
	for _, h := range c.headers {
		fmt.Fprintf(out, "  %s\r\n", h)
	}
	for i, item := range c.items {
		marker := "  "
		if i == c.highlight {
			marker = "> "
		}
		fmt.Fprintf(out, "%s%s\r\n", marker, item)
	}
}

func (c *Console) WaitKey(timeout time.Duration) (Key, bool) {
	if timeout <= 0 {
		return <-c.keys, false
	}
	select {
	case k := <-c.keys:
		return k, false
	case <-time.After(timeout):
		return KeyNone, true
	}
}

func (c *Console) FlushKeys() {
	for {
		select {
		case <-c.keys:
		default:
			return
		}
	}
}
