// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Grecovery brings a device back to a working state after a failed,
// requested, or unattended software update. It runs as the payload of a
// minimal recovery environment, resolves the commanded action from the boot
// control block, the command file, or its own arguments, persists that
// action back to the control block before doing anything destructive, and
// reboots when done. A power cycle at any point resumes the same action on
// the next boot.
//
// See cmd/recovery for the binary and pkg/recovery for the control loop.
package grecovery
