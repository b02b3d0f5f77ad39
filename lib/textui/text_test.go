// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package textui_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benzina/bcachefs-ro/lib/bcachefs"
	"github.com/benzina/bcachefs-ro/lib/textui"
)

func TestFprintf(t *testing.T) {
	t.Parallel()
	var out strings.Builder
	textui.Fprintf(&out, "%d", 12345)
	assert.Equal(t, "12345", out.String())
}

func TestSprintf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ino=4096", textui.Sprintf("ino=%d", 4096))
}

func TestPortion(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "100% (0/0)", fmt.Sprint(textui.Portion[int]{}))
	assert.Equal(t, "0% (1/12345)", fmt.Sprint(textui.Portion[int]{N: 1, D: 12345}))
	assert.Equal(t, "100% (0/0)", fmt.Sprint(textui.Portion[bcachefs.SectorOffset]{}))
	assert.Equal(t, "0% (1/12345)", fmt.Sprint(textui.Portion[bcachefs.SectorOffset]{N: 1, D: 12345}))
}
