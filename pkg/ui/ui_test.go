// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package ui

import "testing"

func TestClamp(t *testing.T) {
	for _, tc := range []struct {
		sel, n, want int
	}{
		{-5, 8, 0},
		{-1, 8, 0},
		{0, 8, 0},
		{7, 8, 7},
		{8, 8, 7},
		{100, 8, 7},
	} {
		if got := clamp(tc.sel, tc.n); got != tc.want {
			t.Errorf("clamp(%d,%d) = %d, want %d", tc.sel, tc.n, got, tc.want)
		}
	}
}

func TestBackgroundString(t *testing.T) {
	if BgNoCommand.String() != "No command." {
		t.Error(BgNoCommand.String())
	}
	if BgNone.String() != "" {
		t.Error(BgNone.String())
	}
}
