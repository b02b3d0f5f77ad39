// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDirectoryEntry(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 64)
	binary.LittleEndian.PutUint64(raw[40:48], 99)
	raw[48] = byte(DTReg)
	copy(raw[56:], []byte("hello\x00ab"))

	k := &Key{bkey: &Bkey{Type: BkeyTypeDirent, Inode: 10, KeyU64s: 5}, raw: raw}

	entry, err := decodeDirectoryEntry(k)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), entry.ParentInode)
	assert.Equal(t, uint64(99), entry.Inode)
	assert.Equal(t, DTReg, entry.Type)
	assert.Equal(t, "hello", entry.Name)
}

func TestDecodeDirectoryEntryWrongType(t *testing.T) {
	t.Parallel()
	k := &Key{bkey: &Bkey{Type: BkeyTypeExtent, KeyU64s: 5}, raw: make([]byte, 64)}

	_, err := decodeDirectoryEntry(k)
	require.Error(t, err)
	var projErr *ProjectionError
	require.ErrorAs(t, err, &projErr)
	assert.Equal(t, ProjectionErrorNotDirent, projErr.Kind)
}

func TestDecodeExtentPointer(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 48)
	binary.LittleEndian.PutUint64(raw[40:48], 5000) // disk sector

	k := &Key{bkey: &Bkey{Type: BkeyTypeExtent, Offset: 100, Size: 10, KeyU64s: 5}, raw: raw}

	ext, err := decodeExtent(k)
	require.NoError(t, err)
	assert.Equal(t, int64(90*512), ext.FileOffset)
	assert.Equal(t, int64(5000*512), ext.DiskOffset)
	assert.Equal(t, int64(10*512), ext.Size)
}

func TestDecodeExtentInlineData(t *testing.T) {
	t.Parallel()

	k := &Key{
		bkey:       &Bkey{Type: BkeyTypeInlineData, Offset: 100, Size: 10, KeyU64s: 5, U64s: 10},
		raw:        make([]byte, 40),
		nodeOffset: 200,
		rootSector: SectorOffset(16),
	}

	ext, err := decodeExtent(k)
	require.NoError(t, err)
	assert.Equal(t, int64(90*512), ext.FileOffset)
	assert.Equal(t, int64(16*512+240), ext.DiskOffset)
	assert.Equal(t, int64(40), ext.Size)
}

func TestDecodeExtentWrongType(t *testing.T) {
	t.Parallel()
	k := &Key{bkey: &Bkey{Type: BkeyTypeDirent, KeyU64s: 5}, raw: make([]byte, 48)}

	_, err := decodeExtent(k)
	require.Error(t, err)
	var projErr *ProjectionError
	require.ErrorAs(t, err, &projErr)
	assert.Equal(t, ProjectionErrorNotExtent, projErr.Kind)
}
