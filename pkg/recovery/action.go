// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"flag"
	"io"
	fp "path/filepath"
	"strings"
	"time"

	"grecovery/pkg/common/strs"
	"grecovery/pkg/log"
)

// Options holds the parsed command line. One Options maps to exactly one
// Action per run.
type Options struct {
	FactoryMode   bool
	Intent        string
	UpdatePackage string
	UpdateImage   string
	WipeData      bool
	WipeCache     bool
	ShowText      bool
	WipeAll       bool
	JustExit      bool
	Locale        string
}

// ParseOptions interprets the resolved argument list. Unrecognized options
// and bare words are logged and skipped rather than failing the run; the
// arguments may come from an older or newer system image.
func ParseOptions(args []string) *Options {
	o := &Options{}
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&o.FactoryMode, "factory_mode", false, "enter factory test mode")
	fs.StringVar(&o.Intent, "send_intent", "", "intent string passed back to the main system")
	fs.StringVar(&o.UpdatePackage, "update_package", "", "path of update package to install")
	fs.StringVar(&o.UpdateImage, "update_rkimage", "", "path of raw firmware image to write")
	fs.BoolVar(&o.WipeData, "wipe_data", false, "erase user data (and cache)")
	fs.BoolVar(&o.WipeCache, "wipe_cache", false, "erase cache")
	fs.BoolVar(&o.ShowText, "show_text", false, "show the text view immediately")
	fs.BoolVar(&o.WipeAll, "wipe_all", false, "erase user data, cache, and internal storage")
	fs.BoolVar(&o.JustExit, "just_exit", false, "do nothing and exit")
	fs.StringVar(&o.Locale, "locale", "", "locale for user-visible text")

	rest := args[1:]
	for len(rest) > 0 {
		err := fs.Parse(rest)
		rest = fs.Args()
		if err != nil {
			// skip-unknown: the failing token was consumed
			log.Logf("ignoring: %s", err)
			continue
		}
		if len(rest) > 0 {
			log.Logf("ignoring argument %q", rest[0])
			rest = rest[1:]
		}
	}
	if o.WipeAll {
		o.WipeData = true
		o.ShowText = true
	}
	if o.WipeData {
		o.WipeCache = true
	}
	return o
}

// Kind of recovery action. Exactly one is derived per run.
type Kind int

const (
	KindNone Kind = iota
	KindInstallPackage
	KindInstallImage
	KindWipeData
	KindWipeCache
	KindJustExit
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInstallPackage:
		return "install package"
	case KindInstallImage:
		return "install image"
	case KindWipeData:
		return "wipe data"
	case KindWipeCache:
		return "wipe cache"
	case KindJustExit:
		return "just exit"
	}
	return "Kind OUT OF RANGE"
}

// Action is the single primary action for this run.
type Action struct {
	Kind      Kind
	Path      string
	WipeCache bool
	WipeAll   bool
}

const removableWait = 4 * time.Second

// Decide maps options to the run's action, by fixed precedence: package
// install, image install, auto-discovered update, data wipe, cache wipe,
// exit, none. Install paths get the legacy root tag rewritten and, when
// they point at removable media, resolved across the attached devices.
func (s *Session) Decide(o *Options) Action {
	// an update discovered on removable media outranks wipes and exit, but
	// never an explicitly commanded install
	if o.UpdatePackage == "" && o.UpdateImage == "" {
		s.probeAutoUpdate(o)
	}

	switch {
	case o.UpdatePackage != "":
		return Action{Kind: KindInstallPackage, Path: s.resolvePath(o.UpdatePackage)}
	case o.UpdateImage != "":
		return Action{Kind: KindInstallImage, Path: s.resolvePath(o.UpdateImage)}
	case o.WipeData:
		return Action{Kind: KindWipeData, WipeCache: true, WipeAll: o.WipeAll}
	case o.WipeCache:
		return Action{Kind: KindWipeCache}
	case o.JustExit:
		return Action{Kind: KindJustExit}
	}
	return Action{Kind: KindNone}
}

// probeAutoUpdate looks for the unattended-update tag file on removable
// media. If the tag and its package are present, the run installs that
// package and records completion in the flag file.
func (s *Session) probeAutoUpdate(o *Options) {
	if !s.Vol.WaitRemovable(removableWait) {
		return
	}
	if _, ok := s.Vol.FindOnRemovable(strs.AutoUpdateTag()); !ok {
		return
	}
	pkg, ok := s.Vol.FindOnRemovable(strs.AutoUpdatePackage())
	if !ok {
		log.Logf("update tag present but %s is missing", strs.AutoUpdatePackage())
		return
	}
	log.Msgf("Unattended update: %s", pkg)
	o.UpdateImage = pkg
}

// resolvePath normalizes an install path: the historical root tag becomes
// the cache mount point, and paths under the removable-media root are
// located across the attached devices. On probe failure the path is used
// as-is and fails later as an install error.
func (s *Session) resolvePath(path string) string {
	if strings.HasPrefix(path, strs.LegacyRootTag()) {
		path = fp.Join(strs.CacheRoot(), strings.TrimPrefix(path, strs.LegacyRootTag()))
		log.Logf("legacy path rewritten to %s", path)
	}
	if strings.HasPrefix(path, strs.USBRoot()) {
		s.Vol.WaitRemovable(removableWait)
		if found, ok := s.Vol.FindOnRemovable(strings.TrimPrefix(path, strs.USBRoot())); ok {
			path = found
		}
	}
	s.pendingPath = path
	return path
}
