// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup

import (
	"os"
	"path/filepath"

	"github.com/multiboot-tools/rombak/audit"
	"github.com/multiboot-tools/rombak/bootimg"
	"github.com/multiboot-tools/rombak/config"
	"github.com/multiboot-tools/rombak/core"
	"github.com/multiboot-tools/rombak/cpio"
	"github.com/multiboot-tools/rombak/roms"
)

// the ramdisk entry the booted system reads to learn its ROM slot
const romIDEntry = "romid"

// BackupBootImage copies the ROM's live boot image into the bundle
func BackupBootImage(rom *roms.Rom, backupDir string) Result {
	bootImagePath := rom.BootImagePath()
	bootImageBackup := filepath.Join(backupDir, NameBootImage)

	if _, err := os.Stat(bootImagePath); err != nil {
		audit.Printf("=== %s does not exist ===", bootImagePath)
		return FilesMissing
	}

	audit.Printf("=== Backing up %s ===", bootImagePath)
	if err := core.CopyFile(bootImagePath, bootImageBackup); err != nil {
		audit.Errorf("Failed to copy %s to %s: %v", bootImagePath, bootImageBackup, err)
		return Failed
	}
	return Succeeded
}

// RestoreBootImage rewrites the saved boot image's ramdisk to carry the
// target ROM's identity, re-applies the signature bypass when the saved
// image carried one, and writes the result to the ROM's live boot image
// path
func RestoreBootImage(rom *roms.Rom, backupDir string) Result {
	bootImagePath := rom.BootImagePath()
	bootImageBackup := filepath.Join(backupDir, NameBootImage)

	if _, err := os.Stat(bootImageBackup); err != nil {
		audit.Printf("=== %s does not exist ===", bootImageBackup)
		return FilesMissing
	}

	audit.Printf("=== Restoring to %s ===", bootImagePath)

	img, err := bootimg.Load(bootImageBackup)
	if err != nil {
		audit.Errorf("Failed to load boot image %s: %v", bootImageBackup, err)
		return Failed
	}

	ramdisk, err := cpio.Load(img.RamdiskImage())
	if err != nil {
		audit.Errorf("Failed to load ramdisk image: %v", err)
		return Failed
	}

	// Stamp the target ROM identity, replacing whatever was there
	ramdisk.Remove(romIDEntry)
	ramdisk.AddFile(romIDEntry, []byte(rom.ID), 0664)

	newRamdisk, err := ramdisk.Serialize()
	if err != nil {
		audit.Errorf("Failed to create new ramdisk: %v", err)
		return Failed
	}
	img.SetRamdiskImage(newRamdisk)

	// Re-apply the bypass patch if the saved image carried one
	if img.WasType() == bootimg.TypeLoki {
		aboot, err := core.ReadBlockDevice(config.Store.Partitions.Aboot)
		if err != nil {
			audit.Errorf("Failed to read aboot partition %s: %v", config.Store.Partitions.Aboot, err)
			return Failed
		}
		img.SetAbootImage(aboot)
		img.SetTargetType(bootimg.TypeLoki)
	}

	if err := img.WriteFile(bootImagePath); err != nil {
		audit.Errorf("Failed to create new boot image %s: %v", bootImagePath, err)
		return Failed
	}

	// The checksums are explicitly not updated. The operator needs to
	// know the risk of restoring a backup that can be modified by any app.

	return Succeeded
}
