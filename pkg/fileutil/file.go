// Copyright (C) 2016-2021 the Grecovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fileutil

import (
	"bufio"
	"io"
	"os"
	fp "path/filepath"
	"strings"
	"time"

	"grecovery/pkg/log"
)

// CopyFile copies src to dst. If mode is 0, the source file's mode is used.
func CopyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if mode == 0 {
		fi, err := in.Stat()
		if err != nil {
			return err
		}
		mode = fi.Mode()
	}
	err = os.MkdirAll(fp.Dir(dst), 0755)
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WaitFor waits for a file to appear or times out. Returns true if the file
// appears, false otherwise. Sleeps .1s between checks.
func WaitFor(path string, timeout time.Duration) (found bool) {
	stop := make(chan struct{})
	go func() {
		time.Sleep(timeout)
		close(stop)
	}()
	return WaitForChan(path, stop)
}

// WaitForChan is like WaitFor, but returns no later than when stop chan is
// closed.
func WaitForChan(path string, stop chan struct{}) (found bool) {
	for {
		select {
		case <-stop:
			return
		case <-time.After(100 * time.Millisecond):
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			found = true
			break
		}
	}
	return
}

// ReadLines reads a file at the given path, returning individual lines with
// terminators stripped, up to maxLines. Lines longer than maxLen bytes are
// truncated, and the lines after them still read. Blank lines are kept - the
// file format is one argument per line and an empty argument is still an
// argument.
func ReadLines(path string, maxLines, maxLen int) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	var lines []string
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			l := strings.TrimRight(line, "\r\n")
			if len(l) > maxLen {
				l = l[:maxLen]
			}
			lines = append(lines, l)
			if len(lines) == maxLines {
				log.Logf("ReadLines: max lines (%d) read from %s", maxLines, path)
				return lines, nil
			}
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			//surface what was read; parse exhaustion is not fatal
			return lines, err
		}
	}
}
