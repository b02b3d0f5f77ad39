// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefsio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benzina/bcachefs-ro/lib/bcachefsio"
)

// countingBlob counts how many ReadAt calls reach the backing store,
// so a test can assert that a CachedBlob actually avoids repeat reads.
type countingBlob struct {
	memBlob
	reads int
}

func (b *countingBlob) ReadAt(offset int64, dst []byte) error {
	b.reads++
	return b.memBlob.ReadAt(offset, dst)
}

func TestCachedBlobHitsCache(t *testing.T) {
	t.Parallel()
	inner := &countingBlob{memBlob: memBlob(make([]byte, 16))}
	copy(inner.memBlob, "0123456789abcdef")

	cached, err := bcachefsio.NewCachedBlob(inner, 4, 2)
	require.NoError(t, err)

	dst := make([]byte, 4)
	require.NoError(t, cached.ReadAt(0, dst))
	assert.Equal(t, "0123", string(dst))
	assert.Equal(t, 1, inner.reads)

	require.NoError(t, cached.ReadAt(0, dst))
	assert.Equal(t, "0123", string(dst))
	assert.Equal(t, 1, inner.reads, "second read of the same block should be served from cache")

	require.NoError(t, cached.ReadAt(4, dst))
	assert.Equal(t, "4567", string(dst))
	assert.Equal(t, 2, inner.reads)
}

func TestCachedBlobReadAtOutOfRange(t *testing.T) {
	t.Parallel()
	inner := memBlob("short")
	cached, err := bcachefsio.NewCachedBlob(inner, 4, 2)
	require.NoError(t, err)

	err = cached.ReadAt(0, make([]byte, 100))
	assert.ErrorIs(t, err, bcachefsio.ErrOutOfRange)
}

func TestCachedBlobCloseForwardsToInner(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte("0123456789abcdef"))
	osBlob, err := bcachefsio.OpenOSBlob(path)
	require.NoError(t, err)

	cached, err := bcachefsio.NewCachedBlob(osBlob, 4, 2)
	require.NoError(t, err)
	assert.NoError(t, cached.Close())
}
