// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package bcachefs is a read-only decoder and B-tree traversal engine
// for a cleanly-unmounted bcachefs disk image: superblock parsing,
// clean-shutdown root-pointer recovery, and lazy depth-first iteration
// over btree nodes, bsets, and bkeys, with typed projections for
// directory entries and file extents.
package bcachefs

import (
	"errors"
	"io"

	"github.com/benzina/bcachefs-ro/lib/bcachefsio"
)

// Reader is the public entry point (spec.md §4.K): it owns the Blob,
// the parsed Superblock, and the root journal-set-entry table indexed
// by btree-id.
type Reader struct {
	blob      bcachefsio.Blob
	sb        *Superblock
	roots     rootTable
	nodeSize  int
	blockSize int
	pool      *nodeBufPool
}

// Open performs steps B through D eagerly (superblock load, then
// clean-snapshot root recovery) and caches the result.
func Open(blob bcachefsio.Blob) (*Reader, error) {
	sb, err := readSuperblock(blob)
	if err != nil {
		return nil, err
	}

	roots, err := decodeClean(sb)
	var openErr *OpenError
	if errors.As(err, &openErr) {
		return nil, openErr
	}
	// Any other error from decodeClean is a soft, per-entry parse
	// failure aggregated via derror.MultiError; affected roots simply
	// remain unset (spec.md §4.D), so it is not propagated here.

	return &Reader{
		blob:      blob,
		sb:        sb,
		roots:     roots,
		nodeSize:  sb.BtreeNodeSizeBytes(),
		blockSize: sb.BlockSizeBytes(),
		pool:      &nodeBufPool{},
	}, nil
}

// cachedBlockCount is the number of btree_node_size-aligned blocks
// OpenPath's CachedBlob keeps hot; sized to cover a root node plus a
// handful of its immediate children across repeat iterator() calls.
const cachedBlockCount = 64

// OpenPath opens the image at path and constructs a Reader over it.
// The underlying OSBlob is wrapped in a CachedBlob (Module A) once the
// node size is known, so repeat node reads across iterator() calls
// (e.g. the root, revisited by every Iterator call) hit cache instead
// of the disk.
func OpenPath(path string) (*Reader, error) {
	blob, err := bcachefsio.OpenOSBlob(path)
	if err != nil {
		return nil, newOpenError(OpenErrorIo, err)
	}
	r, err := Open(blob)
	if err != nil {
		blob.Close()
		return nil, err
	}
	cached, err := bcachefsio.NewCachedBlob(blob, int64(r.nodeSize), cachedBlockCount)
	if err != nil {
		blob.Close()
		return nil, newOpenError(OpenErrorIo, err)
	}
	r.blob = cached
	return r, nil
}

// Superblock returns the decoded superblock.
func (r *Reader) Superblock() *Superblock { return r.sb }

// BtreeIDs returns the btree-ids that have a recorded root in the
// clean snapshot, in ascending BtreeID order.
func (r *Reader) BtreeIDs() []BtreeID {
	var ids []BtreeID
	for i, root := range r.roots {
		if root != nil {
			ids = append(ids, BtreeID(i))
		}
	}
	return ids
}

// Roots returns the recovered root pointer for every btree-id present
// in the clean snapshot (spec.md §4.D), keyed by BtreeID, so a caller
// can report which btree-ids are present/absent without needing a
// successful Iterator call per id.
func (r *Reader) Roots() map[BtreeID]RootPointer {
	ret := make(map[BtreeID]RootPointer, len(r.BtreeIDs()))
	for i, root := range r.roots {
		if root != nil {
			ret[BtreeID(i)] = *root
		}
	}
	return ret
}

// Iterator loads the designated root node and returns a fresh Tree
// iterator (spec.md §4.K). Multiple iterators from one Reader are
// independent: each owns its own node buffers and cursor stack.
func (r *Reader) Iterator(id BtreeID) (*TreeIterator, error) {
	if int(id) >= len(r.roots) || r.roots[id] == nil {
		return nil, newLookupError(id)
	}
	root := r.roots[id]
	return newTreeIterator(r.blob, r.nodeSize, r.blockSize, r.pool, root.Offset, root.Offset)
}

// Close releases the underlying Blob if it implements io.Closer; a
// no-op otherwise.
func (r *Reader) Close() error {
	if c, ok := r.blob.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
