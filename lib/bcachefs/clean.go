// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/datawire/dlib/derror"
)

// JournalSetEntry is one record inside the clean superblock field
// (spec.md §3, §6).
type JournalSetEntry struct {
	BtreeID BtreeID
	Level   uint8
	Type    JournalSetEntryType
	Seq     uint64
	payload []byte
}

const journalSetEntryHdr = 16

func decodeJournalSetEntry(rec []byte) JournalSetEntry {
	return JournalSetEntry{
		BtreeID: BtreeID(rec[2]),
		Level:   rec[3],
		Type:    JournalSetEntryType(rec[4]),
		Seq:     binary.LittleEndian.Uint64(rec[8:16]),
		payload: rec[journalSetEntryHdr:],
	}
}

// RootPointer is the decoded btree_ptr_v2 recovered from a
// btree_root journal-set entry: the sector offset of the referenced
// btree's root node.
type RootPointer struct {
	Entry  JournalSetEntry
	Offset SectorOffset
	Unused bool
}

// rootTable maps a btree-id to its recovered root pointer, populated
// by the clean-snapshot decoder (spec.md §4.D).
type rootTable [btreeIDCount]*RootPointer

// decodeClean scans the superblock's field stream for the `clean`
// field, then scans its journal-set entries for ones of type
// btree_root, populating roots[btree_id] for each (spec.md §4.D).
// btree_root entries with no usable btree pointer are soft-skipped and
// aggregated into the returned error rather than aborting the whole
// scan, mirroring btrfstree.NodeExpectations.Check's derror.MultiError
// aggregation; a stride violation in the entry stream ends the scan
// and is aggregated the same way. Only a missing clean field itself is
// fatal to Open.
func decodeClean(sb *Superblock) (rootTable, error) {
	var roots rootTable

	cleanPayload, err := findSuperblockField(sb, SBFieldClean)
	if err != nil {
		return roots, newOpenError(OpenErrorNoCleanField, err)
	}

	var errs derror.MultiError
	scanner := NewFieldScanner(cleanPayload, journalSetEntryBias, JournalSetEntryStride)
	for {
		rec, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("clean field: %w", err))
			break
		}
		entry := decodeJournalSetEntry(rec)
		if entry.Type != JSetEntryBtreeRoot {
			continue
		}
		ptr, err := findFirstUsableBtreePtr(entry.payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("journal-set entry for btree %v: %w", entry.BtreeID, err))
			continue
		}
		if int(entry.BtreeID) < len(roots) {
			roots[entry.BtreeID] = &RootPointer{Entry: entry, Offset: ptr.Offset, Unused: ptr.Unused}
		}
	}

	if len(errs) > 0 {
		return roots, errs
	}
	return roots, nil
}

// findSuperblockField scans sb's field stream for the first field of
// the given type and returns its payload.
func findSuperblockField(sb *Superblock, typ SuperblockFieldType) ([]byte, error) {
	scanner := NewFieldScanner(sb.fields, superblockFieldBias, SuperblockFieldStride)
	for {
		rec, err := scanner.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("no field of type %v found", typ)
		}
		if err != nil {
			return nil, err
		}
		if superblockFieldType(rec) == typ {
			return superblockFieldPayload(rec), nil
		}
	}
}

// findFirstUsableBtreePtr implements the canonical resolution of the
// find_btree_root ambiguity (spec.md §9): scan the bkeys embedded in a
// btree_root journal-set entry's payload, in order, and return the
// first one's btree_ptr_v2 value whose `unused` flag is false.
func findFirstUsableBtreePtr(payload []byte) (*btreePtrV2, error) {
	scanner := NewFieldScanner(payload, bkeyBias, BkeyStride)
	for {
		rec, err := scanner.Next()
		if err == io.EOF {
			return nil, errNoUsableBtreePtr
		}
		if err != nil {
			return nil, err
		}
		key, err := unpackBkey(rec, nil)
		if err != nil {
			continue
		}
		if BkeyType(key.Type) != BkeyTypeBtreePtrV2 {
			continue
		}
		value := rec[key.KeyU64s*8:]
		ptr, err := decodeBtreePtrV2(value)
		if err != nil {
			continue
		}
		if !ptr.Unused {
			return ptr, nil
		}
	}
}
