// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

/* Package recovery implements the restart-safe control loop: resolve the
commanded action from its possible sources, persist it back to the boot
control block before doing anything destructive, execute it, and hand control
back to the boot loader. A power cycle at any instruction boundary resumes
the same action on the next boot; nothing resumability depends on lives in
process memory.
*/
package recovery

import (
	"time"

	"grecovery/pkg/bcb"
	"grecovery/pkg/common/strs"
	"grecovery/pkg/install"
	"grecovery/pkg/log"
	"grecovery/pkg/recovery/disk"
	"grecovery/pkg/ui"

	"github.com/google/uuid"
)

// State classifies how far a run has progressed. Checkpoint is the
// non-terminal variant used on each pass through the fallback menu.
type State int

const (
	StateCheckpoint State = iota
	StateSuccess
	StateUserExit
	StateRetry
)

// ClearPolicy decides whether the boot control block is cleared for a given
// state. Clearing ends the "reboot into recovery again" regime; retaining it
// means an unattended reboot retries the same action.
type ClearPolicy func(st State) bool

// DefaultClearPolicy clears the record if and only if the run reached
// terminal success or the user chose to exit.
func DefaultClearPolicy(st State) bool {
	return st == StateSuccess || st == StateUserExit
}

// Volumes is the volume operation gateway consumed by the session. The
// production implementation wraps pkg/recovery/disk; tests substitute fakes.
type Volumes interface {
	EnsureMounted(path string) error
	EnsureUnmounted(path string) error
	Format(path string) error
	CloneBackup() error
	CheckAndResize(path string) error
	FindOnRemovable(relpath string) (string, bool)
	WaitRemovable(timeout time.Duration) bool
	UnmountAll(success bool)
}

// DiskVolumes is the production gateway.
type DiskVolumes struct{}

var _ Volumes = DiskVolumes{}

func (DiskVolumes) EnsureMounted(path string) error   { return disk.EnsureMounted(path) }
func (DiskVolumes) EnsureUnmounted(path string) error { return disk.EnsureUnmounted(path) }
func (DiskVolumes) Format(path string) error          { return disk.Format(path) }
func (DiskVolumes) CloneBackup() error                { return disk.CloneBackup() }
func (DiskVolumes) CheckAndResize(path string) error  { return disk.CheckAndResize(path) }
func (DiskVolumes) FindOnRemovable(rel string) (string, bool) {
	return disk.FindOnRemovable(rel)
}
func (DiskVolumes) WaitRemovable(timeout time.Duration) bool { return disk.WaitRemovable(timeout) }
func (DiskVolumes) UnmountAll(success bool)                  { disk.UnmountAll(success) }

// Session owns all process-wide mutable state for one run: the chosen
// action, the pending install path, the locale, and the durable-log cursor.
// Everything needed to resume after a power cycle lives in the control
// record, not here.
type Session struct {
	UI    ui.UI
	Vol   Volumes
	Inst  install.Installer
	Dev   Device
	Store *bcb.Store
	Clear ClearPolicy

	RunID  string
	Locale string

	intent      string
	pendingPath string
	updateDone  bool
	logOffset   int64
}

// NewSession wires a session with the given collaborators. A nil policy gets
// the default.
func NewSession(u ui.UI, vol Volumes, inst install.Installer, dev Device, store *bcb.Store, clear ClearPolicy) *Session {
	if clear == nil {
		clear = DefaultClearPolicy
	}
	s := &Session{
		UI:    u,
		Vol:   vol,
		Inst:  inst,
		Dev:   dev,
		Store: store,
		Clear: clear,
		RunID: uuid.New().String(),
	}
	log.Logf("recovery run %s", s.RunID)
	return s
}

// ensureCacheMounted mounts the cache volume, formatting it first if the
// mount fails. Cache holds only logs and state files; losing it is better
// than being unable to record anything. A reformat invalidates the log
// cursor.
func (s *Session) ensureCacheMounted() {
	if err := s.Vol.EnsureMounted(strs.CacheRoot()); err == nil {
		return
	}
	log.Logf("cache will not mount; reformatting")
	if err := s.Vol.Format(strs.CacheRoot()); err != nil {
		log.Logf("reformat of cache failed: %s", err)
		return
	}
	s.logOffset = 0
	if err := s.Vol.EnsureMounted(strs.CacheRoot()); err != nil {
		log.Logf("cache unusable: %s", err)
	}
}
