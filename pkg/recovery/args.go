// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"strings"

	"grecovery/pkg/bcb"
	"grecovery/pkg/common/strs"
	futil "grecovery/pkg/fileutil"
	"grecovery/pkg/log"
)

const (
	// recoveryTag is the mandatory first line of the control record's
	// recovery field.
	recoveryTag = "recovery"

	maxArgs   = 100
	maxArgLen = 4096
)

// ResolveArgs produces the canonical argument list for this run and persists
// it back into the control record before anything destructive happens.
// Exactly one source supplies the arguments, by precedence: the literal
// invocation arguments, then the control record, then the command file. A
// malformed source is logged and skipped, never fatal.
//
// The write-back is unconditional: a crash immediately after it leaves a
// record that resolves to the identical action on the next boot.
func ResolveArgs(store *bcb.Store, cli []string) []string {
	args := cli
	if len(args) == 0 {
		args = []string{recoveryTag}
	}
	if len(args) <= 1 {
		args = append(args[:1:1], fromRecord(store)...)
	}
	if len(args) <= 1 {
		args = append(args[:1:1], fromCommandFile()...)
	}
	log.Logf("resolved args: %q", args)

	m := bcb.Message{Command: "boot-recovery", Recovery: recoveryTag + "\n"}
	for _, a := range args[1:] {
		m.Recovery += a + "\n"
	}
	if err := store.Save(m); err != nil {
		// degraded: the run proceeds, but is not resumable
		log.Logf("persisting control record: %s", err)
	}
	return args
}

func fromRecord(store *bcb.Store) []string {
	m, err := store.Load()
	if err != nil {
		log.Logf("loading control record: %s", err)
		return nil
	}
	if m.Recovery == "" {
		return nil
	}
	return parseRecoveryField(m.Recovery)
}

// parseRecoveryField interprets the record's recovery field: the literal tag
// on the first line, then one argument per line. A field not starting with
// the tag is treated as malformed in its entirety.
func parseRecoveryField(field string) (args []string) {
	lines := strings.Split(field, "\n")
	if lines[0] != recoveryTag {
		log.Logf("malformed recovery field %q, ignoring", field)
		return nil
	}
	for _, l := range lines[1:] {
		if l == "" {
			continue
		}
		if len(l) > maxArgLen {
			l = l[:maxArgLen]
		}
		args = append(args, l)
		if len(args) == maxArgs {
			log.Logf("control record: arg limit (%d) reached", maxArgs)
			break
		}
	}
	return
}

func fromCommandFile() (args []string) {
	lines, err := futil.ReadLines(strs.CommandFile(), maxArgs, maxArgLen)
	if err != nil {
		if len(lines) == 0 {
			return nil
		}
		// parse exhaustion is not fatal; use what was read
		log.Logf("reading %s: %s", strs.CommandFile(), err)
	}
	for _, l := range lines {
		if l != "" {
			args = append(args, l)
		}
	}
	if len(args) > 0 {
		log.Logf("got arguments from %s", strs.CommandFile())
	}
	return
}
