// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"time"

	"github.com/datawire/dlib/dlog"

	"github.com/benzina/bcachefs-ro/lib/textui"
)

// walkStats is the heartbeat Stats type for a plain btree walk: unlike
// the teacher's rebuild passes, a lazy depth-first walk never knows
// its total key count up front, so there is no textui.Portion
// denominator to report against — just running counts.
type walkStats struct {
	Btree   string
	Seen    int
	Matched int
}

func (s walkStats) String() string {
	return textui.Sprintf("walking %s: %d keys seen, %d matched", s.Btree, s.Seen, s.Matched)
}

// newWalkProgress returns a progress heartbeat for a btree walk when
// --progress was passed, or nil otherwise.
func newWalkProgress(ctx context.Context) *textui.Progress[walkStats] {
	if !progressFlag {
		return nil
	}
	return textui.NewProgress[walkStats](ctx, dlog.LogLevelInfo, textui.Tunable(1*time.Second))
}
