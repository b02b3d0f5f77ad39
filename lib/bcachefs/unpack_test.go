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

func buildCurrentBkey(format BkeyFormatTag, typ BkeyType, inode, offset uint64, snapshot, size, versionHi, versionLo uint32, value []byte) []byte {
	total := bkeyHeaderSize + 32 + len(value)
	rec := make([]byte, total)
	binary.LittleEndian.PutUint16(rec[0:2], uint16(total/8))
	rec[bkeyOffFormat] = byte(format)
	rec[bkeyOffType] = byte(typ)
	binary.LittleEndian.PutUint32(rec[curOffVersionLo:], versionLo)
	binary.LittleEndian.PutUint32(rec[curOffVersionHi:], versionHi)
	binary.LittleEndian.PutUint32(rec[curOffSize:], size)
	binary.LittleEndian.PutUint32(rec[curOffSnapshot:], snapshot)
	binary.LittleEndian.PutUint64(rec[curOffOffset:], offset)
	binary.LittleEndian.PutUint64(rec[curOffInode:], inode)
	copy(rec[bkeyHeaderSize+32:], value)
	return rec
}

func TestUnpackBkeyCurrent(t *testing.T) {
	t.Parallel()
	rec := buildCurrentBkey(KeyFormatCurrent, BkeyTypeExtent, 42, 16, 1, 16, 7, 9, nil)

	key, err := unpackBkey(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), key.Inode)
	assert.Equal(t, uint64(16), key.Offset)
	assert.Equal(t, uint32(1), key.Snapshot)
	assert.Equal(t, uint32(16), key.Size)
	assert.Equal(t, uint32(7), key.VersionHi)
	assert.Equal(t, uint32(9), key.VersionLo)
	assert.Equal(t, BkeyTypeExtent, key.Type)
	assert.Equal(t, BKeyU64s, key.KeyU64s)
}

func TestUnpackBkeyShortLocalFastPath(t *testing.T) {
	t.Parallel()
	// Byte-identical to the current layout but tagged LOCAL_BTREE.
	rec := buildCurrentBkey(KeyFormatLocalBtree, BkeyTypeDirent, 100, 200, 2, 300, 0, 0, nil)

	key, err := unpackBkey(rec, &shortBkeyFormat)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), key.Inode)
	assert.Equal(t, uint64(200), key.Offset)
	assert.Equal(t, uint32(2), key.Snapshot)
	assert.Equal(t, uint32(300), key.Size)
	assert.Equal(t, BKeyU64s, key.KeyU64s)
}

func TestUnpackBkeyGeneralBackwardsWalk(t *testing.T) {
	t.Parallel()
	// format.key_u64s = 3 (24 bytes); only inode and offset are
	// packed, 32 bits each, laid out backwards from byte 24:
	// offset lives at [16,20), inode at [20,24).
	format := BkeyFormat{
		KeyU64s:      3,
		BitsPerField: [numPackedFields]uint8{32, 32, 0, 0, 0, 0},
	}

	rec := make([]byte, 32)
	binary.LittleEndian.PutUint16(rec[0:2], 4)
	rec[bkeyOffFormat] = byte(KeyFormatLocalBtree)
	rec[bkeyOffType] = byte(BkeyTypeExtent)
	binary.LittleEndian.PutUint32(rec[20:24], 0xAAAABBBB) // inode
	binary.LittleEndian.PutUint32(rec[16:20], 0x11112222) // offset
	copy(rec[24:32], []byte{1, 2, 3, 4, 5, 6, 7, 8})

	key, err := unpackBkey(rec, &format)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xAAAABBBB), key.Inode)
	assert.Equal(t, uint64(0x11112222), key.Offset)
	assert.Equal(t, uint32(0), key.Snapshot)
	assert.Equal(t, 3, key.KeyU64s)
}

func TestUnpackBkeyNonZeroFieldOffsetFails(t *testing.T) {
	t.Parallel()
	format := BkeyFormat{
		KeyU64s:      3,
		BitsPerField: [numPackedFields]uint8{32, 0, 0, 0, 0, 0},
		FieldOffset:  [numPackedFields]uint64{1, 0, 0, 0, 0, 0},
	}
	rec := make([]byte, 24)
	binary.LittleEndian.PutUint16(rec[0:2], 3)
	rec[bkeyOffFormat] = byte(KeyFormatLocalBtree)

	_, err := unpackBkey(rec, &format)
	require.Error(t, err)
	var iterErr *IterError
	require.ErrorAs(t, err, &iterErr)
	assert.Equal(t, IterErrorUnsupportedBkeyFormat, iterErr.Kind)
}

func TestUnpackBkeyBadWidthFails(t *testing.T) {
	t.Parallel()
	format := BkeyFormat{
		KeyU64s:      3,
		BitsPerField: [numPackedFields]uint8{24, 0, 0, 0, 0, 0}, // not in {8,16,32,64}
	}
	rec := make([]byte, 24)
	binary.LittleEndian.PutUint16(rec[0:2], 3)
	rec[bkeyOffFormat] = byte(KeyFormatLocalBtree)

	_, err := unpackBkey(rec, &format)
	require.Error(t, err)
	var iterErr *IterError
	require.ErrorAs(t, err, &iterErr)
	assert.Equal(t, IterErrorUnsupportedBkeyWidth, iterErr.Kind)
}
