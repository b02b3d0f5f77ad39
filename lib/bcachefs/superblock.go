// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"fmt"

	"github.com/benzina/bcachefs-ro/lib/bcachefsio"
	"github.com/benzina/bcachefs-ro/lib/util"
)

// SuperblockSector is the sector at which the superblock's fixed
// prelude begins.
const SuperblockSector = 8

// SuperblockOffset is SuperblockSector expressed in bytes.
const SuperblockOffset = SuperblockSector * SectorSize

// preludeSize is the byte length of the superblock's fixed-layout
// prelude, before the variable-length field stream begins.
const preludeSize = 0x100

// Magic is the 16-byte constant every valid bcachefs superblock must
// carry at preludeMagicOff.
var Magic = [16]byte{
	0xc6, 0x85, 0x73, 0xf6, 0x4e, 0x1a, 0x45, 0xca,
	0x82, 0x65, 0xf5, 0x7f, 0x48, 0xba, 0x6d, 0x81,
}

const (
	preludeCsumOff         = 0x00
	preludeVersionOff      = 0x10
	preludeVersionMinOff   = 0x12
	preludeMagicOff        = 0x14
	preludeExternalUUIDOff = 0x24
	preludeInternalUUIDOff = 0x34
	preludeLabelOff        = 0x44
	preludeSeqOff          = 0x64
	preludeBlockSizeOff    = 0x6c
	preludeDevIdxOff       = 0x6e
	preludeNrDevicesOff    = 0x6f
	preludeU64sOff         = 0x70
	preludeFlagsOff        = 0x78
	preludeFlagsLen        = 8 // [8]uint64
)

// Superblock is the decoded fixed prelude plus the raw bytes of the
// trailing variable-length field stream (§3, §4.B).
type Superblock struct {
	Version    uint16
	VersionMin uint16
	// ExternalUUID/InternalUUID format via util.UUID's Format method
	// (fmtutil.FormatByteArrayStringer), used by String() and the CLI's
	// "inspect superblock" dump.
	ExternalUUID util.UUID
	InternalUUID util.UUID
	Label        [32]byte
	Seq          uint64
	BlockSizeSec uint16 // sb.block_size, in sectors
	DevIdx       uint8
	NrDevices    uint8
	U64s         uint32   // sb.u64s
	Flags        [8]uint64

	// fields is the raw byte payload following the prelude, spanning
	// U64s*8 bytes. Offsets into it are relative to its own start.
	fields []byte
}

// BlockSizeBytes is sb.block_size scaled to bytes (§4.B).
func (sb *Superblock) BlockSizeBytes() int {
	return int(sb.BlockSizeSec) * SectorSize
}

// BtreeNodeSizeBytes extracts bits [12,28) of flags[0] and scales to
// bytes (§3, §6).
func (sb *Superblock) BtreeNodeSizeBytes() int {
	return int(extractBitfield(sb.Flags[0], 12, 28)) * SectorSize
}

// extractBitfield returns bits [first,last) of bitfield, shifted down
// to start at bit 0, mirroring original_source's extract_bitflag.
func extractBitfield(bitfield uint64, first, last int) uint64 {
	width := last - first
	mask := uint64(1)<<width - 1
	return (bitfield >> first) & mask
}

func (sb *Superblock) String() string {
	return fmt.Sprintf(
		"bcachefs superblock: uuid=%v block_size=%d btree_node_size=%d seq=%d",
		sb.ExternalUUID, sb.BlockSizeBytes(), sb.BtreeNodeSizeBytes(), sb.Seq,
	)
}

// readSuperblock performs the two-phase read described in spec §4.B:
// read the fixed prelude, validate the magic, then reread the full
// prelude+fields extent into a correctly-sized buffer.
func readSuperblock(blob bcachefsio.Blob) (*Superblock, error) {
	prelude := make([]byte, preludeSize)
	if err := blob.ReadAt(int64(SuperblockOffset), prelude); err != nil {
		return nil, newOpenError(OpenErrorIo, err)
	}

	var gotMagic [16]byte
	copy(gotMagic[:], prelude[preludeMagicOff:preludeMagicOff+16])
	if gotMagic != Magic {
		return nil, newOpenError(OpenErrorInvalidMagic, fmt.Errorf("got %x, want %x", gotMagic, Magic))
	}

	sb := &Superblock{}
	sb.Version = binary.LittleEndian.Uint16(prelude[preludeVersionOff:])
	sb.VersionMin = binary.LittleEndian.Uint16(prelude[preludeVersionMinOff:])
	copy(sb.ExternalUUID[:], prelude[preludeExternalUUIDOff:preludeExternalUUIDOff+16])
	copy(sb.InternalUUID[:], prelude[preludeInternalUUIDOff:preludeInternalUUIDOff+16])
	copy(sb.Label[:], prelude[preludeLabelOff:preludeLabelOff+32])
	sb.Seq = binary.LittleEndian.Uint64(prelude[preludeSeqOff:])
	sb.BlockSizeSec = binary.LittleEndian.Uint16(prelude[preludeBlockSizeOff:])
	sb.DevIdx = prelude[preludeDevIdxOff]
	sb.NrDevices = prelude[preludeNrDevicesOff]
	sb.U64s = binary.LittleEndian.Uint32(prelude[preludeU64sOff:])
	for i := 0; i < preludeFlagsLen; i++ {
		sb.Flags[i] = binary.LittleEndian.Uint64(prelude[preludeFlagsOff+i*8:])
	}

	totalLen := preludeSize + int(sb.U64s)*8
	if totalLen < preludeSize {
		return nil, newOpenError(OpenErrorShortSuperblock, fmt.Errorf("u64s overflow: %d", sb.U64s))
	}
	full := make([]byte, totalLen)
	if err := blob.ReadAt(int64(SuperblockOffset), full); err != nil {
		return nil, newOpenError(OpenErrorShortSuperblock, err)
	}
	sb.fields = full[preludeSize:]
	return sb, nil
}
