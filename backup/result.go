// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup

// Result is the outcome of one backup/restore step. FilesMissing means
// the step's expected input does not exist; the coordinator logs it and
// moves on. Failed always aborts the whole ROM operation.
type Result int

const (
	Succeeded Result = iota
	Failed
	FilesMissing
)

func (r Result) String() string {
	switch r {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case FilesMissing:
		return "files missing"
	default:
		return "unknown"
	}
}

// Fixed artifact names inside a backup bundle. They never derive from the
// ROM identity, so a bundle can be restored onto a different slot.
const (
	NameSystem    = "system.tar"
	NameCache     = "cache.tar"
	NameData      = "data.tar"
	NameBootImage = "boot.img"
	NameConfig    = "config.json"
	NameThumbnail = "thumbnail.webp"
)
