// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"sync"
	"time"

	"grecovery/pkg/log/flags"
)

// A type of logger which can be chained/stacked, each adding different
// functionality. Events can go to the console, to a file, or just into
// memory - transparent to the caller.
//
// Normal logging goes through non-member functions in this package - Logf,
// Msgf, Fatalf, etc. End users do not need the details here.
type StackableLogger interface {
	// Add an entry to the log. Must call the same method on the next log in
	// the stack (if not nil).
	AddEntry(e LogEntry)

	// Chain one logger to another. It is an error to call this on a logger
	// to which another has already been chained.
	ForwardTo(StackableLogger)

	// Identifies the type of logger, to ensure no duplicates in the stack.
	Ident() string
	// Next StackableLogger or nil.
	Next() StackableLogger
	// Finalize any outstanding entries and release resources. Must call the
	// same method on the next log in the stack (if not nil).
	Finalize()
}

// Top logger on the stack. Functions accessing logStack or its chain MUST
// honor logStackMtx.
var logStack StackableLogger = &memLog{}

var logStackMtx sync.Mutex

type stackErr struct {
	Id string
}

func (se *stackErr) Error() string {
	return fmt.Sprintf("duplicate logger %s in stack", se.Id)
}

// Flushes data, closes files, etc.
func Finalize() {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack.Finalize()
}

// Restores the log stack to initial state: finalizes existing logger(s), then
// replaces the stack with a memLog.
func DefaultLogStack() { NewLogStack(&memLog{}) }

// Calls Finalize on existing logger(s), then sets newLog as the topmost logger.
func NewLogStack(newLog StackableLogger) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	if logStack != nil {
		logStack.Finalize()
	}
	logStack = newLog
}

// Add a logger to the stack. Anything requiring initialization must already be
// initialized. If addPrevious is true, events already stored in a memLog are
// replayed into the new logger.
//
// Prefer the AddXLog() helpers - AddFileLog(), AddConsoleLog(), etc.
//
// The only possible error is a logger of the same type already in the stack.
func AddLogger(sl StackableLogger, addPrevious bool) error {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	if addPrevious {
		addPreviousEvents(sl, logStack)
	}
	sl.ForwardTo(logStack)
	err := checkDupes(sl, logStack)
	if err == nil {
		logStack = sl
	}
	return err
}

// Verifies that the new logger is not a duplicate of another in the stack.
// Called by AddLogger. Recursive.
func checkDupes(newLogger, sl StackableLogger) error {
	if newLogger.Ident() == sl.Ident() {
		return &stackErr{Id: sl.Ident()}
	}
	next := sl.Next()
	if next != nil {
		return checkDupes(newLogger, next)
	}
	return nil
}

// Remove a log with the given id from the stack.
func RemoveLogger(id string) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	l := logStack
	var prev StackableLogger
	for l != nil {
		next := l.Next()
		if l.Ident() == id {
			l.ForwardTo(nil)
			l.Finalize()
			if prev != nil {
				prev.ForwardTo(next)
			}
			break
		}
		prev = l
		l = next
	}
}

// LogEntry is the primary record type for StackableLogger. As with
// StackableLogger, end users do not use this.
type LogEntry struct {
	Time  time.Time
	Msg   string
	Args  []interface{}
	Flags flags.Flag
}

// Backend of Logf(), Msgf(), Fatalf(). Translates args to a LogEntry and
// inserts into the topmost log.
func FlaggedLogf(opts flags.Flag, f string, va ...interface{}) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack.AddEntry(LogEntry{
		Time:  time.Now(),
		Flags: opts,
		Msg:   f,
		Args:  va,
	})
}

func (le *LogEntry) String() string {
	var div string
	switch {
	case le.Flags&flags.EndUser != 0:
		div = "-- "
	case le.Flags&flags.Fatal != 0:
		div = "!! "
	case le.Flags == 0:
		div = "*- "
	default:
		div = "?? "
	}
	f := div + le.Time.Format(TimestampLayout) + " " + div + le.Msg
	return fmt.Sprintf(f, le.Args...)
}

// When attaching a new logger, looks for a memLog in the stack and inserts all
// its entries into the new log before the new log is attached.
func addPreviousEvents(newlog, current StackableLogger) {
	if _, isMem := newlog.(*memLog); isMem {
		//should only be one memLog, so we'd be copying to ourselves
		return
	}
	ml := FindInStack(MemLogIdent)
	if ml != nil {
		if mem, ok := ml.(*memLog); ok {
			for _, e := range mem.Entries() {
				newlog.AddEntry(e)
			}
		}
	}
}

// Return true if a log in the stack matches given id.
func InStack(id string) bool {
	return FindInStack(id) != nil
}

// Return StackableLogger matching id, or nil.
func FindInStack(id string) StackableLogger {
	l := logStack
	for l != nil {
		if l.Ident() == id {
			return l
		}
		l = l.Next()
	}
	return nil
}
