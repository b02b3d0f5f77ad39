// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"errors"
	"fmt"
)

// OpenErrorKind distinguishes the ways opening an image can fail.
type OpenErrorKind int

const (
	_ OpenErrorKind = iota
	OpenErrorIo
	OpenErrorInvalidMagic
	OpenErrorShortSuperblock
	OpenErrorNoCleanField
)

func (k OpenErrorKind) String() string {
	switch k {
	case OpenErrorIo:
		return "io"
	case OpenErrorInvalidMagic:
		return "invalid-magic"
	case OpenErrorShortSuperblock:
		return "short-superblock"
	case OpenErrorNoCleanField:
		return "no-clean-field"
	default:
		return fmt.Sprintf("OpenErrorKind(%d)", int(k))
	}
}

// OpenError is returned by Open when the image cannot be turned into a
// usable Reader.
type OpenError struct {
	Kind OpenErrorKind
	Err  error
}

func (e *OpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("open bcachefs image: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("open bcachefs image: %s", e.Kind)
}

func (e *OpenError) Unwrap() error { return e.Err }

func newOpenError(kind OpenErrorKind, err error) *OpenError {
	return &OpenError{Kind: kind, Err: err}
}

// LookupErrorKind distinguishes ways a btree-id lookup can fail.
type LookupErrorKind int

const (
	_ LookupErrorKind = iota
	LookupErrorUnknownBtree
)

func (k LookupErrorKind) String() string {
	switch k {
	case LookupErrorUnknownBtree:
		return "unknown-btree"
	default:
		return fmt.Sprintf("LookupErrorKind(%d)", int(k))
	}
}

// LookupError is returned by Reader.Iterator when a btree-id has no
// recorded root.
type LookupError struct {
	Kind    LookupErrorKind
	BtreeID BtreeID
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup btree %v: %s", e.BtreeID, e.Kind)
}

func newLookupError(id BtreeID) *LookupError {
	return &LookupError{Kind: LookupErrorUnknownBtree, BtreeID: id}
}

// IterErrorKind distinguishes ways a Tree iterator can fail mid-walk.
type IterErrorKind int

const (
	_ IterErrorKind = iota
	IterErrorNodeReadFailed
	IterErrorUnsupportedBkeyFormat
	IterErrorUnsupportedBkeyWidth
)

func (k IterErrorKind) String() string {
	switch k {
	case IterErrorNodeReadFailed:
		return "node-read-failed"
	case IterErrorUnsupportedBkeyFormat:
		return "unsupported-bkey-format"
	case IterErrorUnsupportedBkeyWidth:
		return "unsupported-bkey-width"
	default:
		return fmt.Sprintf("IterErrorKind(%d)", int(k))
	}
}

// IterError is returned by a Tree iterator's NextKey when the on-disk
// structure cannot be decoded.
type IterError struct {
	Kind IterErrorKind
	Err  error
}

func (e *IterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("btree iteration: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("btree iteration: %s", e.Kind)
}

func (e *IterError) Unwrap() error { return e.Err }

func newIterError(kind IterErrorKind, err error) *IterError {
	return &IterError{Kind: kind, Err: err}
}

// ProjectionErrorKind distinguishes ways a value projection can fail.
type ProjectionErrorKind int

const (
	_ ProjectionErrorKind = iota
	ProjectionErrorNotDirent
	ProjectionErrorNotExtent
)

func (k ProjectionErrorKind) String() string {
	switch k {
	case ProjectionErrorNotDirent:
		return "not-dirent"
	case ProjectionErrorNotExtent:
		return "not-extent"
	default:
		return fmt.Sprintf("ProjectionErrorKind(%d)", int(k))
	}
}

// ProjectionError is returned by DirectoryEntry/Extent projections when
// the key's type doesn't match the requested projection.
type ProjectionError struct {
	Kind    ProjectionErrorKind
	BkeyTyp BkeyType
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("project bkey (type=%v): %s", e.BkeyTyp, e.Kind)
}

func newProjectionError(kind ProjectionErrorKind, typ BkeyType) *ProjectionError {
	return &ProjectionError{Kind: kind, BkeyTyp: typ}
}

var (
	errShortField       = errors.New("record header truncated")
	errStrideOOB        = errors.New("record stride exceeds remaining range")
	errNonZeroField     = errors.New("non-zero field_offset is not supported")
	errNoUsableBtreePtr = errors.New("no usable (non-unused) btree pointer in journal-set entry")
)
