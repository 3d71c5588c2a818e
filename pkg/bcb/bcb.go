// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

/* Package bcb reads and writes the boot control block, the fixed-size record
shared with the boot loader. The boot loader touches the record only across a
reboot boundary; while recovery runs, this process is the sole writer. There
is no locking - but every write is treated as though it might be the last
instruction ever executed, so the full block is written and synced in one
step.

The record is the only durable journal available: the intended operation is
written into it before the operation starts, so a power cycle at any point
resumes the same operation on the next boot.
*/
package bcb

import (
	"bytes"
	"fmt"
	"os"

	"grecovery/pkg/log"
)

const (
	CommandLen  = 32
	StatusLen   = 32
	RecoveryLen = 768
	BlockLen    = CommandLen + StatusLen + RecoveryLen
)

// Message is the in-memory form of the control record. Fields are
// variable-length strings here; bounds are enforced at (de)serialization
// rather than by silent truncation.
type Message struct {
	Command  string
	Status   string
	Recovery string
}

// IsEmpty is true if no field carries data. Erased flash reads as 0xff, which
// counts as empty.
func (m Message) IsEmpty() bool {
	return m.Command == "" && m.Status == "" && m.Recovery == ""
}

var ErrFieldLen = fmt.Errorf("bcb: field exceeds fixed size")

func (m Message) marshal() ([]byte, error) {
	if len(m.Command) >= CommandLen || len(m.Status) >= StatusLen || len(m.Recovery) >= RecoveryLen {
		return nil, ErrFieldLen
	}
	blk := make([]byte, BlockLen)
	copy(blk[0:], m.Command)
	copy(blk[CommandLen:], m.Status)
	copy(blk[CommandLen+StatusLen:], m.Recovery)
	return blk, nil
}

func unmarshal(blk []byte) (m Message) {
	m.Command = fixedStr(blk[0:CommandLen])
	m.Status = fixedStr(blk[CommandLen : CommandLen+StatusLen])
	m.Recovery = fixedStr(blk[CommandLen+StatusLen : BlockLen])
	return
}

// fixedStr interprets a fixed-size field: NUL-terminated, or all-0xff when
// the underlying flash is erased.
func fixedStr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	b = bytes.TrimRight(b, "\xff")
	return string(b)
}

// Store provides access to the control record at a device path. File-backed
// in tests.
type Store struct {
	dev string
}

func NewStore(dev string) *Store {
	return &Store{dev: dev}
}

func (s *Store) Device() string { return s.dev }

// Load reads the control record. A missing or unreadable record is not fatal:
// the zero Message and the error are returned, and the run proceeds
// best-effort - this matches the boot loader's behavior with a blank flash.
func (s *Store) Load() (Message, error) {
	f, err := os.Open(s.dev)
	if err != nil {
		return Message{}, err
	}
	defer f.Close()
	blk := make([]byte, BlockLen)
	n, err := f.ReadAt(blk, 0)
	if n < BlockLen {
		return Message{}, err
	}
	return unmarshal(blk), nil
}

// Save overwrites the control record with m and syncs. The whole fixed block
// is written in a single WriteAt so a torn write cannot interleave old and
// new commands beyond sector granularity.
func (s *Store) Save(m Message) error {
	blk, err := m.marshal()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.dev, os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err = f.WriteAt(blk, 0); err != nil {
		return err
	}
	return f.Sync()
}

// Clear zeroes the record, returning control to the normal boot path. Only
// correct once a terminal state has been reached; see the policy in
// pkg/recovery.
func (s *Store) Clear() error {
	log.Log("clearing boot control block")
	return s.Save(Message{})
}
