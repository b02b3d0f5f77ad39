// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benzina/bcachefs-ro/lib/util"
)

// memBlob is a fixed-size in-memory Blob fixture.
type memBlob []byte

func (m memBlob) Size() int64 { return int64(len(m)) }

func (m memBlob) ReadAt(offset int64, dst []byte) error {
	if offset < 0 || offset+int64(len(dst)) > int64(len(m)) {
		return io.ErrUnexpectedEOF
	}
	copy(dst, m[offset:offset+int64(len(dst))])
	return nil
}

func buildSuperblockImage(t *testing.T, setMagic bool, u64s uint32) []byte {
	t.Helper()
	fieldsLen := int(u64s) * 8
	img := make([]byte, SuperblockOffset+preludeSize+fieldsLen)
	p := img[SuperblockOffset:]

	if setMagic {
		copy(p[preludeMagicOff:preludeMagicOff+16], Magic[:])
	}
	binary.LittleEndian.PutUint16(p[preludeVersionOff:], 1)
	binary.LittleEndian.PutUint16(p[preludeBlockSizeOff:], 8) // 4096-byte blocks
	binary.LittleEndian.PutUint64(p[preludeSeqOff:], 77)
	binary.LittleEndian.PutUint32(p[preludeU64sOff:], u64s)
	binary.LittleEndian.PutUint64(p[preludeFlagsOff:], 16<<12) // btree_node_size = 16 sectors

	for i := 0; i < fieldsLen; i++ {
		p[preludeSize+i] = byte(i + 1)
	}
	return img
}

func TestReadSuperblockValid(t *testing.T) {
	t.Parallel()
	img := buildSuperblockImage(t, true, 2)

	sb, err := readSuperblock(memBlob(img))
	require.NoError(t, err)
	assert.Equal(t, uint16(1), sb.Version)
	assert.Equal(t, uint64(77), sb.Seq)
	assert.Equal(t, 4096, sb.BlockSizeBytes())
	assert.Equal(t, 16*SectorSize, sb.BtreeNodeSizeBytes())
	require.Len(t, sb.fields, 16)
	assert.Equal(t, byte(1), sb.fields[0])
}

func TestReadSuperblockBadMagic(t *testing.T) {
	t.Parallel()
	img := buildSuperblockImage(t, false, 0)

	_, err := readSuperblock(memBlob(img))
	require.Error(t, err)
	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, OpenErrorInvalidMagic, openErr.Kind)
}

func TestExtractBitfield(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(16), extractBitfield(16<<12, 12, 28))
	assert.Equal(t, uint64(0), extractBitfield(0, 12, 28))
}

func TestSuperblockStringRendersUUID(t *testing.T) {
	t.Parallel()
	img := buildSuperblockImage(t, true, 0)
	uuid := util.MustParseUUID("a0dd94ed-e60c-42e8-8632-64e8d4765a43")
	copy(img[SuperblockOffset+preludeExternalUUIDOff:], uuid[:])

	sb, err := readSuperblock(memBlob(img))
	require.NoError(t, err)
	assert.Equal(t, uuid, sb.ExternalUUID)
	assert.True(t, strings.Contains(sb.String(), uuid.String()))
}
