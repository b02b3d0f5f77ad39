// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import "fmt"

// BtreeID names one of the fixed set of well-known metadata btrees that
// a bcachefs filesystem keeps a root pointer for in the clean snapshot.
type BtreeID uint8

const (
	BtreeIDExtents BtreeID = iota
	BtreeIDInodes
	BtreeIDDirents
	BtreeIDXattrs
	BtreeIDAlloc
	BtreeIDQuotas
	BtreeIDStripes
	BtreeIDReflink
	BtreeIDSubvolumes
	BtreeIDSnapshots

	btreeIDCount
)

var btreeIDNames = [...]string{
	BtreeIDExtents:    "extents",
	BtreeIDInodes:     "inodes",
	BtreeIDDirents:    "dirents",
	BtreeIDXattrs:     "xattrs",
	BtreeIDAlloc:      "alloc",
	BtreeIDQuotas:     "quotas",
	BtreeIDStripes:    "stripes",
	BtreeIDReflink:    "reflink",
	BtreeIDSubvolumes: "subvolumes",
	BtreeIDSnapshots:  "snapshots",
}

func (id BtreeID) String() string {
	if int(id) < len(btreeIDNames) && btreeIDNames[id] != "" {
		return btreeIDNames[id]
	}
	return fmt.Sprintf("btree_id(%d)", uint8(id))
}

// BkeyType is the on-disk tag distinguishing what kind of value follows
// a bkey's canonical header.
type BkeyType uint8

const (
	BkeyTypeDeleted BkeyType = iota
	BkeyTypeDirent
	BkeyTypeExtent
	BkeyTypeInlineData
	BkeyTypeBtreePtrV2
	BkeyTypeInode
	BkeyTypeXattr

	// BCacheFSRootIno is the inode number of the filesystem's root
	// directory, matching BCACHEFS_ROOT_INO in the original reader.
)

// BCacheFSRootIno is the inode number of a bcachefs filesystem's root
// directory.
const BCacheFSRootIno = 4096

func (t BkeyType) String() string {
	switch t {
	case BkeyTypeDeleted:
		return "deleted"
	case BkeyTypeDirent:
		return "dirent"
	case BkeyTypeExtent:
		return "extent"
	case BkeyTypeInlineData:
		return "inline_data"
	case BkeyTypeBtreePtrV2:
		return "btree_ptr_v2"
	case BkeyTypeInode:
		return "inode"
	case BkeyTypeXattr:
		return "xattr"
	default:
		return fmt.Sprintf("bkey_type(%d)", uint8(t))
	}
}

// BkeyFormatTag is the on-disk discriminant of a bkey's physical layout.
type BkeyFormatTag uint8

const (
	KeyFormatCurrent    BkeyFormatTag = 0
	KeyFormatLocalBtree BkeyFormatTag = 1
)

func (f BkeyFormatTag) String() string {
	switch f {
	case KeyFormatCurrent:
		return "current"
	case KeyFormatLocalBtree:
		return "local_btree"
	default:
		return fmt.Sprintf("bkey_format(%d)", uint8(f))
	}
}

// SuperblockFieldType is the on-disk discriminant of a superblock
// field record.
type SuperblockFieldType uint32

const (
	SBFieldJournal SuperblockFieldType = iota
	SBFieldMembersV1
	SBFieldCrypt
	SBFieldReplicasV0
	SBFieldQuota
	SBFieldDiskGroups
	SBFieldClean
	SBFieldReplicasV1
	SBFieldJournalSeqBlacklist
	SBFieldJournalV2
	SBFieldCounters
	SBFieldMembersV2
	SBFieldErrors
	SBFieldExtTimestamp
)

func (t SuperblockFieldType) String() string {
	switch t {
	case SBFieldJournal:
		return "journal"
	case SBFieldMembersV1:
		return "members_v1"
	case SBFieldCrypt:
		return "crypt"
	case SBFieldReplicasV0:
		return "replicas_v0"
	case SBFieldQuota:
		return "quota"
	case SBFieldDiskGroups:
		return "disk_groups"
	case SBFieldClean:
		return "clean"
	case SBFieldReplicasV1:
		return "replicas_v1"
	case SBFieldJournalSeqBlacklist:
		return "journal_seq_blacklist"
	case SBFieldJournalV2:
		return "journal_v2"
	case SBFieldCounters:
		return "counters"
	case SBFieldMembersV2:
		return "members_v2"
	case SBFieldErrors:
		return "errors"
	case SBFieldExtTimestamp:
		return "ext_timestamp"
	default:
		return fmt.Sprintf("sb_field(%d)", uint32(t))
	}
}

// JournalSetEntryType is the on-disk discriminant of a journal-set
// entry record inside the clean superblock field.
type JournalSetEntryType uint8

const (
	JSetEntryBtreeKeys JournalSetEntryType = iota
	JSetEntryBtreeRoot
	JSetEntryPrio
	JSetEntryBlacklist
	JSetEntryBlacklistV2
	JSetEntryUsage
	JSetEntryDataUsage
	JSetEntryClock
	JSetEntryDevUsage
)

func (t JournalSetEntryType) String() string {
	switch t {
	case JSetEntryBtreeKeys:
		return "btree_keys"
	case JSetEntryBtreeRoot:
		return "btree_root"
	case JSetEntryPrio:
		return "prio"
	case JSetEntryBlacklist:
		return "blacklist"
	case JSetEntryBlacklistV2:
		return "blacklist_v2"
	case JSetEntryUsage:
		return "usage"
	case JSetEntryDataUsage:
		return "data_usage"
	case JSetEntryClock:
		return "clock"
	case JSetEntryDevUsage:
		return "dev_usage"
	default:
		return fmt.Sprintf("jset_entry(%d)", uint8(t))
	}
}
