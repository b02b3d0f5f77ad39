// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefsio

import (
	"fmt"
	"os"
)

// OSBlob wraps an *os.File as a Blob, mirroring the teacher's
// diskio.OSFile.
type OSBlob struct {
	file *os.File
	size int64
}

var _ Blob = (*OSBlob)(nil)

// OpenOSBlob opens path read-only and stats its size up front.
func OpenOSBlob(path string) (*OSBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	return &OSBlob{file: f, size: info.Size()}, nil
}

func (b *OSBlob) Size() int64 { return b.size }

func (b *OSBlob) ReadAt(offset int64, dst []byte) error {
	if err := checkRange(b.size, offset, len(dst)); err != nil {
		return err
	}
	return readFullAt(b.file, offset, dst)
}

// Close releases the underlying file descriptor.
func (b *OSBlob) Close() error {
	return b.file.Close()
}
