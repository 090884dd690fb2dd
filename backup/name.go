// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup

import "strings"

// ValidName guards the bundle path against traversal outside the backup
// root: no empty names, hidden names, '..', or directory separators
func ValidName(name string) bool {
	return len(name) > 0 &&
		name[0] != '.' &&
		!strings.Contains(name, "..") &&
		!strings.Contains(name, "/")
}
