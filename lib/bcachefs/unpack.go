// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"fmt"
)

// unpackBkey converts a bkey's raw on-disk bytes into its canonical
// unpacked form, given the enclosing node's field-format descriptor
// (spec.md §4.H). format may be nil only when the caller already knows
// the record cannot be in local-packed form (e.g. a bkey embedded
// directly in the superblock's clean field, which is always stored
// unpacked).
func unpackBkey(rec []byte, format *BkeyFormat) (*Bkey, error) {
	if len(rec) < bkeyHeaderSize {
		return nil, newIterError(IterErrorNodeReadFailed, fmt.Errorf("bkey record shorter than header (%d bytes)", len(rec)))
	}

	key := &Bkey{
		U64s:   peekBkeyU64s(rec),
		Format: peekBkeyFormatTag(rec),
	}

	switch key.Format {
	case KeyFormatCurrent:
		// Step 1: copy the fixed unpacked layout verbatim.
		key.NeedsWhiteout = rec[bkeyOffNeedsWhiteout] != 0
		key.Type = peekBkeyType(rec)
		key.KeyU64s = BKeyU64s
		if len(rec) < key.KeyU64s*8 {
			return nil, newIterError(IterErrorNodeReadFailed, fmt.Errorf("bkey record shorter than current-format key region"))
		}
		key.VersionLo = binary.LittleEndian.Uint32(rec[curOffVersionLo:])
		key.VersionHi = binary.LittleEndian.Uint32(rec[curOffVersionHi:])
		key.Size = binary.LittleEndian.Uint32(rec[curOffSize:])
		key.Snapshot = binary.LittleEndian.Uint32(rec[curOffSnapshot:])
		key.Offset = binary.LittleEndian.Uint64(rec[curOffOffset:])
		key.Inode = binary.LittleEndian.Uint64(rec[curOffInode:])
		return key, nil

	case KeyFormatLocalBtree:
		if format == nil {
			return nil, newIterError(IterErrorUnsupportedBkeyFormat, fmt.Errorf("local-packed bkey with no node format descriptor"))
		}
		key.Type = BkeyType(rec[bkeyOffType])
		key.KeyU64s = int(format.KeyU64s)
		if key.KeyU64s*8 > len(rec) {
			return nil, newIterError(IterErrorNodeReadFailed, fmt.Errorf("format.key_u64s*8 (%d) exceeds key byte length (%d)", key.KeyU64s*8, len(rec)))
		}

		// Step 2: the well-known short format is struct-compatible
		// with the unpacked layout; cast instead of bit-walking.
		if format.isShort() {
			key.VersionLo = binary.LittleEndian.Uint32(rec[curOffVersionLo:])
			key.VersionHi = binary.LittleEndian.Uint32(rec[curOffVersionHi:])
			key.Size = binary.LittleEndian.Uint32(rec[curOffSize:])
			key.Snapshot = binary.LittleEndian.Uint32(rec[curOffSnapshot:])
			key.Offset = binary.LittleEndian.Uint64(rec[curOffOffset:])
			key.Inode = binary.LittleEndian.Uint64(rec[curOffInode:])
			return key, nil
		}

		// Step 4: non-zero field_offset is not supported.
		if !format.allFieldOffsetsZero() {
			return nil, newIterError(IterErrorUnsupportedBkeyFormat, errNonZeroField)
		}

		// Step 3: general backwards bitfield walk.
		cursor := key.KeyU64s * 8
		for i := packedFieldIndex(0); i < numPackedFields; i++ {
			width := format.BitsPerField[i]
			if width == 0 {
				continue
			}
			if width != 8 && width != 16 && width != 32 && width != 64 {
				return nil, newIterError(IterErrorUnsupportedBkeyWidth, fmt.Errorf("field %d has width %d bits", i, width))
			}
			widthBytes := int(width) / 8
			cursor -= widthBytes
			if cursor < 0 || cursor+widthBytes > len(rec) {
				return nil, newIterError(IterErrorNodeReadFailed, fmt.Errorf("packed field %d out of bounds", i))
			}
			val := readLEUint(rec[cursor : cursor+widthBytes])
			switch i {
			case fieldInode:
				key.Inode = val
			case fieldOffset:
				key.Offset = val
			case fieldSnapshot:
				key.Snapshot = uint32(val)
			case fieldSize:
				key.Size = uint32(val)
			case fieldVersionHi:
				key.VersionHi = uint32(val)
			case fieldVersionLo:
				key.VersionLo = uint32(val)
			}
		}
		return key, nil

	default:
		return nil, newIterError(IterErrorUnsupportedBkeyFormat, fmt.Errorf("unknown bkey format tag %d", key.Format))
	}
}

// readLEUint reads a little-endian unsigned integer of width 1, 2, 4,
// or 8 bytes.
func readLEUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		panic("readLEUint: unsupported width")
	}
}
