// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package install applies update packages and raw firmware images. The actual
//flashing is delegated to external tools; this package validates the input,
//checks space, runs the tool, and records the attempt.
package install

import "fmt"

// Outcome of an install attempt.
type Outcome int

const (
	None Outcome = iota
	Success
	Error
	Corrupt
)

func (o Outcome) String() string {
	switch o {
	case None:
		return "none"
	case Success:
		return "success"
	case Error:
		return "error"
	case Corrupt:
		return "corrupt"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result of an install attempt. WipeCache is set when the package requests a
// cache wipe after a successful install.
type Result struct {
	Outcome   Outcome
	WipeCache bool
}

// Installer applies updates. Implementations must be safe to call more than
// once in a run; a retried install starts from scratch.
type Installer interface {
	// InstallPackage applies an update package at an absolute path.
	InstallPackage(path string) Result
	// InstallImage writes a raw firmware image at an absolute path.
	InstallImage(path string) Result
	// Sideload receives a package over a debug connection and applies it.
	Sideload() Result
}
