// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package disk

import (
	"fmt"
	"io"
	"os"

	"grecovery/pkg/common/strs"
	"grecovery/pkg/hw/block"
	"grecovery/pkg/log"
)

// CloneBackup restores the data partition from the backup partition by raw
// block copy. Both volumes must be unmounted by the caller. Returns an error
// if the backup partition does not exist; callers fall back to a format.
func CloneBackup() error {
	src, err := block.ByName(strs.BackupPartName())
	if err != nil {
		return fmt.Errorf("no backup partition %s: %w", strs.BackupPartName(), err)
	}
	dst, err := block.ByName(strs.DataPartName())
	if err != nil {
		return fmt.Errorf("no data partition %s: %w", strs.DataPartName(), err)
	}
	log.Msgf("Restoring %s from backup...", strs.DataPartName())
	return blockCopy(src, dst)
}

func blockCopy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer out.Close()
	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("copied %d bytes of %s to %s: %w", n, src, dst, err)
	}
	log.Logf("copied %d bytes of %s to %s", n, src, dst)
	return out.Sync()
}
