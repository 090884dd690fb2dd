// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

// Package backup is the backup/restore engine: the per-target step
// procedures and the per-ROM coordinator that sequences them.
package backup

import "strings"

// TargetSet is a bitmask of the backup/restore categories
type TargetSet uint

const (
	TargetSystem TargetSet = 1 << iota
	TargetCache
	TargetData
	TargetBoot
	TargetConfig
)

const (
	TargetNone TargetSet = 0
	TargetAll            = TargetSystem | TargetCache | TargetData | TargetBoot | TargetConfig
)

// ParseTargets resolves a comma-separated target list. Any unrecognized
// token rejects the whole input: the result is TargetNone, which callers
// must treat as invalid.
func ParseTargets(text string) TargetSet {
	result := TargetNone

	for _, token := range strings.Split(text, ",") {
		switch token {
		case "all":
			result |= TargetAll
		case "system":
			result |= TargetSystem
		case "cache":
			result |= TargetCache
		case "data":
			result |= TargetData
		case "boot":
			result |= TargetBoot
		case "config":
			result |= TargetConfig
		default:
			return TargetNone
		}
	}

	return result
}

// Has checks whether every category in x is selected
func (t TargetSet) Has(x TargetSet) bool {
	return t&x == x
}

func (t TargetSet) String() string {
	if t == TargetNone {
		return "none"
	}

	var names []string
	for _, entry := range []struct {
		target TargetSet
		name   string
	}{
		{TargetSystem, "system"},
		{TargetCache, "cache"},
		{TargetData, "data"},
		{TargetBoot, "boot"},
		{TargetConfig, "config"},
	} {
		if t.Has(entry.target) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, ",")
}
