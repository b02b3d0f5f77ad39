// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benzina/bcachefs-ro/lib/containers"
)

func TestSyncPoolNew(t *testing.T) {
	t.Parallel()
	calls := 0
	pool := containers.SyncPool[[]byte]{
		New: func() []byte {
			calls++
			return make([]byte, 4)
		},
	}
	buf, ok := pool.Get()
	assert.True(t, ok)
	assert.Len(t, buf, 4)
	assert.Equal(t, 1, calls)
}

func TestSyncPoolReuse(t *testing.T) {
	t.Parallel()
	pool := containers.SyncPool[[]byte]{
		New: func() []byte { return make([]byte, 4) },
	}
	buf, _ := pool.Get()
	buf[0] = 0x42
	pool.Put(buf)

	got, ok := pool.Get()
	assert.True(t, ok)
	assert.Equal(t, byte(0x42), got[0])
}

func TestSyncPoolNoNew(t *testing.T) {
	t.Parallel()
	var pool containers.SyncPool[[]byte]
	buf, ok := pool.Get()
	assert.False(t, ok)
	assert.Nil(t, buf)
}
