// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"fmt"
)

// btreePtrV2 is the decoded value of a btree_ptr_v2 bkey: a sector
// offset designating the referenced node, plus an unused flag that
// find_btree_root's canonical resolution (spec.md §9) inspects to
// skip unusable root candidates.
type btreePtrV2 struct {
	Flags  uint64
	Offset SectorOffset
	Unused bool
}

const btreePtrV2Size = 16

func decodeBtreePtrV2(value []byte) (*btreePtrV2, error) {
	if len(value) < btreePtrV2Size {
		return nil, fmt.Errorf("btree_ptr_v2 value truncated: %d bytes", len(value))
	}
	flags := binary.LittleEndian.Uint64(value[0:8])
	return &btreePtrV2{
		Flags:  flags,
		Offset: SectorOffset(binary.LittleEndian.Uint64(value[8:16])),
		Unused: flags&1 != 0,
	}, nil
}
