// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DirentType mirrors the POSIX d_type values bcachefs stores in a
// dirent value.
type DirentType uint8

const (
	DTUnknown DirentType = 0
	DTFifo    DirentType = 1
	DTChr     DirentType = 2
	DTDir     DirentType = 4
	DTBlk     DirentType = 6
	DTReg     DirentType = 8
	DTLnk     DirentType = 10
	DTSock    DirentType = 12
)

func (t DirentType) String() string {
	switch t {
	case DTFifo:
		return "DT_FIFO"
	case DTChr:
		return "DT_CHR"
	case DTDir:
		return "DT_DIR"
	case DTBlk:
		return "DT_BLK"
	case DTReg:
		return "DT_REG"
	case DTLnk:
		return "DT_LNK"
	case DTSock:
		return "DT_SOCK"
	default:
		return "DT_UNKNOWN"
	}
}

// DirectoryEntry is the directory() projection's result (spec.md
// §4.J): {parent_inode, inode, type, name}.
type DirectoryEntry struct {
	ParentInode uint64
	Inode       uint64
	Type        DirentType
	Name        string
}

// String formats a DirectoryEntry the way original_source's
// DirectoryEntry::operator<< does: parent, inode, type, name.
func (d DirectoryEntry) String() string {
	return fmt.Sprintf("%d %d %d %s", d.ParentInode, d.Inode, uint8(d.Type), d.Name)
}

func (d DirectoryEntry) GoString() string {
	return fmt.Sprintf("bcachefs.DirectoryEntry{ParentInode:%d, Inode:%d, Type:%v, Name:%q}",
		d.ParentInode, d.Inode, d.Type, d.Name)
}

const direntValueHeaderSize = 16 // child_inode(8) + d_type(1) + pad(7)

func decodeDirectoryEntry(k *Key) (*DirectoryEntry, error) {
	if k.bkey.Type != BkeyTypeDirent {
		return nil, newProjectionError(ProjectionErrorNotDirent, k.bkey.Type)
	}
	v := k.value()
	if len(v) < direntValueHeaderSize {
		return nil, newProjectionError(ProjectionErrorNotDirent, k.bkey.Type)
	}
	name := v[direntValueHeaderSize:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return &DirectoryEntry{
		ParentInode: k.bkey.Inode,
		Inode:       binary.LittleEndian.Uint64(v[0:8]),
		Type:        DirentType(v[8]),
		Name:        string(name),
	}, nil
}

// Extent is the extend() projection's result (spec.md §3, §4.J):
// {file_offset, disk_offset, size}, all in bytes.
type Extent struct {
	FileOffset int64
	DiskOffset int64
	Size       int64
}

func (e Extent) String() string {
	return fmt.Sprintf("file_offset=%d disk_offset=%d size=%d", e.FileOffset, e.DiskOffset, e.Size)
}

const extentPtrValueSize = 8 // leading on-disk sector offset

func decodeExtent(k *Key) (*Extent, error) {
	fileOffset := (int64(k.bkey.Offset) - int64(k.bkey.Size)) * SectorSize

	switch k.bkey.Type {
	case BkeyTypeExtent:
		v := k.value()
		if len(v) < extentPtrValueSize {
			return nil, newProjectionError(ProjectionErrorNotExtent, k.bkey.Type)
		}
		diskSector := binary.LittleEndian.Uint64(v[0:extentPtrValueSize])
		return &Extent{
			FileOffset: fileOffset,
			DiskOffset: int64(diskSector) * SectorSize,
			Size:       int64(k.bkey.Size) * SectorSize,
		}, nil

	case BkeyTypeInlineData:
		valueAddr := k.nodeOffset + k.bkey.KeyU64s*8
		diskOffset := int64(k.rootSector.Bytes()) + int64(valueAddr)
		size := int64(k.bkey.U64s)*8 - int64(k.bkey.KeyU64s*8)
		return &Extent{
			FileOffset: fileOffset,
			DiskOffset: diskOffset,
			Size:       size,
		}, nil

	default:
		return nil, newProjectionError(ProjectionErrorNotExtent, k.bkey.Type)
	}
}
