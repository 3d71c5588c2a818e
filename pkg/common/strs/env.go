// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package strs

func VerboseEnv() string  { return EnvPrefix() + "VERBOSE" }
func NoRebootEnv() string { return EnvPrefix() + "NO_REBOOT" }
func LocaleEnv() string   { return EnvPrefix() + "LOCALE" }
