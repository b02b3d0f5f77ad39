// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildJSetEntry builds a 16-byte journal-set-entry header (spec.md
// §6) followed by u64s*8 zero bytes of payload.
func buildJSetEntry(u64s uint16, btreeID, level, typ uint8, seq uint64) []byte {
	buf := make([]byte, journalSetEntryHdr+int(u64s)*8)
	binary.LittleEndian.PutUint16(buf[0:2], u64s)
	buf[2] = btreeID
	buf[3] = level
	buf[4] = typ
	binary.LittleEndian.PutUint64(buf[8:16], seq)
	return buf
}

func TestFieldScannerSequence(t *testing.T) {
	t.Parallel()

	var stream []byte
	stream = append(stream, buildJSetEntry(1, 0, 0, 0, 1)...)
	stream = append(stream, buildJSetEntry(1, 1, 0, 1, 2)...)

	scanner := NewFieldScanner(stream, journalSetEntryBias, JournalSetEntryStride)

	rec1, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), rec1[2])

	rec2, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), rec2[2])

	_, err = scanner.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFieldScannerSentinelStopsEarly(t *testing.T) {
	t.Parallel()

	var stream []byte
	stream = append(stream, buildJSetEntry(1, 0, 0, 0, 1)...)
	stream = append(stream, make([]byte, journalSetEntryHdr)...) // u64s==0 sentinel
	stream = append(stream, buildJSetEntry(1, 1, 0, 1, 2)...)    // never reached

	scanner := NewFieldScanner(stream, journalSetEntryBias, JournalSetEntryStride)

	_, err := scanner.Next()
	require.NoError(t, err)

	_, err = scanner.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFieldScannerStrideViolationIsFatal(t *testing.T) {
	t.Parallel()

	buf := make([]byte, journalSetEntryHdr)
	binary.LittleEndian.PutUint16(buf[0:2], 100) // claims far more payload than exists

	scanner := NewFieldScanner(buf, journalSetEntryBias, JournalSetEntryStride)
	_, err := scanner.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}
