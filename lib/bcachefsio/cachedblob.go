// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefsio

import (
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedBlob wraps another Blob with a read-only LRU cache of fixed-
// size blocks, mirroring the role the teacher's diskio.bufferedFile
// plays for its block cache — but with no dirty/flush path, since the
// core never writes through a Blob. Sizing the cache in whole blocks
// (typically the image's btree-node size) means one cache hit covers
// one full node read.
type CachedBlob struct {
	inner     Blob
	blockSize int64
	cache     *lru.Cache[int64, []byte]
}

var _ Blob = (*CachedBlob)(nil)

// NewCachedBlob wraps inner with an LRU cache of numBlocks blocks of
// blockSize bytes each. blockSize should normally be the image's
// btree_node_size_bytes so that one cache slot holds exactly one node.
func NewCachedBlob(inner Blob, blockSize int64, numBlocks int) (*CachedBlob, error) {
	c, err := lru.New[int64, []byte](numBlocks)
	if err != nil {
		return nil, err
	}
	return &CachedBlob{inner: inner, blockSize: blockSize, cache: c}, nil
}

func (b *CachedBlob) Size() int64 { return b.inner.Size() }

// Close releases the underlying Blob if it implements io.Closer; a
// no-op otherwise. This lets a CachedBlob transparently wrap an
// OSBlob without losing the caller's ability to close the file.
func (b *CachedBlob) Close() error {
	if c, ok := b.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (b *CachedBlob) ReadAt(offset int64, dst []byte) error {
	if err := checkRange(b.inner.Size(), offset, len(dst)); err != nil {
		return err
	}
	for n := 0; n < len(dst); {
		blockIdx := (offset + int64(n)) / b.blockSize
		blockOff := blockIdx * b.blockSize
		block, err := b.block(blockIdx, blockOff)
		if err != nil {
			return err
		}
		within := int(offset+int64(n)) - int(blockOff)
		copied := copy(dst[n:], block[within:])
		n += copied
	}
	return nil
}

func (b *CachedBlob) block(idx, off int64) ([]byte, error) {
	if block, ok := b.cache.Get(idx); ok {
		return block, nil
	}
	length := b.blockSize
	if off+length > b.inner.Size() {
		length = b.inner.Size() - off
	}
	block := make([]byte, length)
	if err := b.inner.ReadAt(off, block); err != nil {
		return nil, err
	}
	b.cache.Add(idx, block)
	return block, nil
}
