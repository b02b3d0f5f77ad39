// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteOffsetFormat(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		format string
		exp    string
	}{
		"%v": {format: "%v", exp: "0x1000"},
		"%s": {format: "%s", exp: "0x1000"},
		"%d": {format: "%d", exp: "4096"},
	}
	for name, tc := range testcases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := fmt.Sprintf(tc.format, ByteOffset(4096))
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestSectorOffsetBytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ByteOffset(4096), SectorOffset(8).Bytes())
}
