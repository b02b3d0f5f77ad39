// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"io"

	"git.lukeshu.com/go/typedsync"

	"github.com/benzina/bcachefs-ro/lib/bcachefsio"
)

// nodeBufPool recycles node-sized byte buffers across sibling
// subtrees during a depth-first walk, grounded on the teacher's use of
// typedsync.Pool for per-node buffers: since a child iterator fully
// consumes its subtree before being popped (spec.md §5), only one
// buffer per depth level is ever live, so pool reuse turns per-node
// allocation into an O(tree height) steady-state footprint instead of
// O(node count).
type nodeBufPool struct {
	inner typedsync.Pool[[]byte]
}

func (p *nodeBufPool) get(size int) []byte {
	buf, ok := p.inner.Get()
	if ok && cap(buf) >= size {
		return buf[:size]
	}
	return make([]byte, size)
}

func (p *nodeBufPool) put(buf []byte) {
	if buf != nil {
		p.inner.Put(buf)
	}
}

// Key is a borrowed view of one returned bkey: the canonical unpacked
// form plus enough context (the raw record, its node-relative byte
// offset, and the owning tree's root sector) to drive the value
// projections in spec.md §4.J. Key is invalidated once the owning
// Tree iterator advances past the node that produced it (spec.md §3).
type Key struct {
	bkey       *Bkey
	raw        []byte
	nodeOffset int
	rootSector SectorOffset
}

func (k *Key) value() []byte { return k.raw[k.bkey.KeyU64s*8:] }

// Unpacked returns a copy of the key's canonical unpacked fields.
func (k *Key) Unpacked() Bkey { return *k.bkey }

// Type returns the bkey's on-disk type tag.
func (k *Key) Type() BkeyType { return k.bkey.Type }

// Directory projects a dirent key (spec.md §4.J).
func (k *Key) Directory() (*DirectoryEntry, error) { return decodeDirectoryEntry(k) }

// Extend projects an extent or inline_data key (spec.md §4.J).
func (k *Key) Extend() (*Extent, error) { return decodeExtent(k) }

// TreeIterator is a per-btree, depth-first, stateful cursor (spec.md
// §4.I): the current node buffer, a bset iterator and bkey iterator
// positioned within it, and a stack of child iterators.
type TreeIterator struct {
	blob       bcachefsio.Blob
	nodeSize   int
	blockSize  int
	pool       *nodeBufPool
	rootSector SectorOffset

	node       *Node
	bsets      *bsetIterator
	bkeys      *FieldScanner
	bkeysStart int // absolute offset of the current bset's bkey stream within node.buf

	children []*TreeIterator
}

func newTreeIterator(blob bcachefsio.Blob, nodeSize, blockSize int, pool *nodeBufPool, ptr, rootSector SectorOffset) (*TreeIterator, error) {
	node, err := loadNode(blob, ptr, nodeSize, pool.get(nodeSize))
	if err != nil {
		return nil, err
	}
	it := &TreeIterator{
		blob: blob, nodeSize: nodeSize, blockSize: blockSize, pool: pool,
		rootSector: rootSector, node: node,
	}
	it.bsets = newBsetIterator(node, blockSize)
	if err := it.advanceBset(); err != nil && err != io.EOF {
		return nil, err
	}
	return it, nil
}

func (it *TreeIterator) advanceBset() error {
	payload, offset, err := it.bsets.Next()
	if err != nil {
		it.bkeys = nil
		return err
	}
	it.bkeysStart = offset
	it.bkeys = NewFieldScanner(payload, bkeyBias, BkeyStride)
	return nil
}

// NextKey implements the next_key() protocol from spec.md §4.I.
func (it *TreeIterator) NextKey() (*Key, error) {
	for {
		if len(it.children) > 0 {
			top := it.children[len(it.children)-1]
			key, err := top.NextKey()
			if err == io.EOF {
				it.pool.put(top.node.buf)
				it.children = it.children[:len(it.children)-1]
				continue
			}
			if err != nil {
				return nil, err
			}
			return key, nil
		}

		if it.bkeys == nil {
			return nil, io.EOF
		}

		startPos := it.bkeys.Pos()
		rec, err := it.bkeys.Next()
		if err == io.EOF {
			if err := it.advanceBset(); err != nil {
				return nil, err // io.EOF propagates: node (and this iterator) exhausted
			}
			continue
		}
		if err != nil {
			return nil, newIterError(IterErrorNodeReadFailed, err)
		}

		bkey, err := unpackBkey(rec, &it.node.Format)
		if err != nil {
			return nil, err
		}

		if bkey.Type == BkeyTypeBtreePtrV2 {
			value := rec[bkey.KeyU64s*8:]
			ptr, err := decodeBtreePtrV2(value)
			if err != nil {
				return nil, newIterError(IterErrorNodeReadFailed, err)
			}
			child, err := newTreeIterator(it.blob, it.nodeSize, it.blockSize, it.pool, ptr.Offset, it.rootSector)
			if err != nil {
				return nil, err
			}
			it.children = append(it.children, child)
			continue
		}

		return &Key{
			bkey:       bkey,
			raw:        rec,
			nodeOffset: it.bkeysStart + startPos,
			rootSector: it.rootSector,
		}, nil
	}
}

// Close releases the iterator's node buffer (and any still-live
// children's buffers) back to the pool. Abandoning an iterator without
// calling Close is safe — the buffers are simply reclaimed by the Go
// garbage collector instead of being reused — Close is purely an
// optimization (spec.md §5).
func (it *TreeIterator) Close() {
	for _, child := range it.children {
		child.Close()
	}
	it.children = nil
	if it.node != nil {
		it.pool.put(it.node.buf)
		it.node = nil
	}
}
