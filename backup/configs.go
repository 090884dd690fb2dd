// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup

import (
	"os"
	"path/filepath"

	"github.com/multiboot-tools/rombak/audit"
	"github.com/multiboot-tools/rombak/core"
	"github.com/multiboot-tools/rombak/roms"
)

// BackupConfigs copies the ROM's configuration file and thumbnail into
// the bundle. Either source may be missing independently; an I/O failure
// on either copy fails the step immediately.
func BackupConfigs(rom *roms.Rom, backupDir string) Result {
	return copyConfigs(
		rom.ConfigPath(), filepath.Join(backupDir, NameConfig),
		rom.ThumbnailPath(), filepath.Join(backupDir, NameThumbnail),
		"Backing up")
}

// RestoreConfigs copies the saved configuration file and thumbnail back
// to the ROM's paths
func RestoreConfigs(rom *roms.Rom, backupDir string) Result {
	return copyConfigs(
		filepath.Join(backupDir, NameConfig), rom.ConfigPath(),
		filepath.Join(backupDir, NameThumbnail), rom.ThumbnailPath(),
		"Restoring")
}

func copyConfigs(configSrc, configDst, thumbSrc, thumbDst, verb string) Result {
	ret := Succeeded

	if _, err := os.Stat(configSrc); err == nil {
		audit.Printf("=== %s %s ===", verb, configSrc)
		if err := core.CopyFile(configSrc, configDst); err != nil {
			audit.Errorf("Failed to copy %s to %s: %v", configSrc, configDst, err)
			return Failed
		}
	} else {
		audit.Printf("=== %s does not exist ===", configSrc)
		ret = FilesMissing
	}

	if _, err := os.Stat(thumbSrc); err == nil {
		audit.Printf("=== %s %s ===", verb, thumbSrc)
		if err := core.CopyFile(thumbSrc, thumbDst); err != nil {
			audit.Errorf("Failed to copy %s to %s: %v", thumbSrc, thumbDst, err)
			return Failed
		}
	} else {
		audit.Printf("=== %s does not exist ===", thumbSrc)
		ret = FilesMissing
	}

	return ret
}
