// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fileutil

import (
	"io"
	"os"
	fp "path/filepath"
)

// CopyTail copies bytes of src starting at offset into dst, returning the new
// offset (old offset plus bytes copied). If appendDst is true dst is appended
// to, otherwise it is truncated first. Repeated calls with the returned
// offset copy each source byte exactly once, in order.
//
// If src has shrunk below offset - e.g. because the volume it lived on was
// reformatted - the copy restarts from the beginning of src.
func CopyTail(src, dst string, offset int64, appendDst bool) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return offset, err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return offset, err
	}
	if fi.Size() < offset {
		offset = 0
	}
	if _, err = in.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}

	mode := os.O_WRONLY | os.O_CREATE
	if appendDst {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}
	if err = os.MkdirAll(fp.Dir(dst), 0755); err != nil {
		return offset, err
	}
	out, err := os.OpenFile(dst, mode, 0600)
	if err != nil {
		return offset, err
	}
	n, err := io.Copy(out, in)
	cerr := out.Close()
	if err == nil {
		err = cerr
	}
	return offset + n, err
}
