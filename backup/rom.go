// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup

import (
	"fmt"
	"os"

	"github.com/multiboot-tools/rombak/audit"
	"github.com/multiboot-tools/rombak/config"
	"github.com/multiboot-tools/rombak/core"
	"github.com/multiboot-tools/rombak/roms"
)

// BackupRom backs up the selected targets of one ROM into the bundle
// directory. Steps run in a fixed order; the first Failed step aborts,
// while FilesMissing steps are logged and skipped.
func BackupRom(rom *roms.Rom, outputDir string, targets TargetSet) bool {
	if targets == TargetNone {
		audit.Errorf("No backup targets specified")
		return false
	}

	logTargets("Backing up", rom, outputDir, targets)

	if targets.Has(TargetBoot) {
		if BackupBootImage(rom, outputDir) == Failed {
			return false
		}
	}

	if targets.Has(TargetConfig) {
		if BackupConfigs(rom, outputDir) == Failed {
			return false
		}
	}

	if targets.Has(TargetSystem) {
		ret := BackupPartition(rom.SystemPath, outputDir, NameSystem,
			rom.SystemIsImage, []string{roms.MultibootSubdir})
		if ret == Failed {
			return false
		}
	}

	if targets.Has(TargetCache) {
		ret := BackupPartition(rom.CachePath, outputDir, NameCache,
			rom.CacheIsImage, []string{roms.MultibootSubdir})
		if ret == Failed {
			return false
		}
	}

	if targets.Has(TargetData) {
		ret := BackupPartition(rom.DataPath, outputDir, NameData,
			rom.DataIsImage, []string{"media", roms.MultibootSubdir})
		if ret == Failed {
			return false
		}
	}

	return true
}

// RestoreRom restores the selected targets of one ROM from the bundle
// directory
func RestoreRom(rom *roms.Rom, inputDir string, targets TargetSet) bool {
	if targets == TargetNone {
		audit.Errorf("No restore targets specified")
		return false
	}

	logTargets("Restoring", rom, inputDir, targets)

	// The boot image and configs land in the ROM's multiboot directory,
	// which may not exist yet on a fresh slot
	if err := os.MkdirAll(rom.MultibootDir(), 0775); err != nil && !os.IsExist(err) {
		audit.Errorf("%s: Failed to create directory: %v", rom.MultibootDir(), err)
		return false
	}

	if targets.Has(TargetBoot) {
		if RestoreBootImage(rom, inputDir) == Failed {
			return false
		}
	}

	if targets.Has(TargetConfig) {
		if RestoreConfigs(rom, inputDir) == Failed {
			return false
		}
	}

	// A corrupted prior state must not block the partition restores below
	if err := roms.FixPermissions(); err != nil {
		audit.Errorf("Failed to fix multiboot permissions: %v", err)
	}

	if targets.Has(TargetSystem) {
		// A recreated system image gets the size of the real system
		// partition as it is mounted right now
		imageSize, err := core.MountedTotalSize(roms.SystemPartition())
		if err != nil || imageSize == 0 {
			audit.Errorf("Failed to get the size of the system partition: %v", err)
			return false
		}

		ret := RestorePartition(rom.SystemPath, inputDir, NameSystem,
			rom.SystemIsImage, imageSize, nil)
		if ret == Failed {
			return false
		}
	}

	if targets.Has(TargetCache) {
		ret := RestorePartition(rom.CachePath, inputDir, NameCache,
			rom.CacheIsImage, config.Store.ImageSizeBytes(), nil)
		if ret == Failed {
			return false
		}
	}

	if targets.Has(TargetData) {
		ret := RestorePartition(rom.DataPath, inputDir, NameData,
			rom.DataIsImage, config.Store.ImageSizeBytes(), []string{"media"})
		if ret == Failed {
			return false
		}
	}

	return true
}

// EnsurePartitionsMounted verifies the precondition that the real
// system/cache/data partitions are mounted, reporting each one separately
func EnsurePartitionsMounted() bool {
	ok := true

	for _, p := range []struct {
		name       string
		mountpoint string
	}{
		{"System", roms.SystemPartition()},
		{"Cache", roms.CachePartition()},
		{"Data", roms.DataPartition()},
	} {
		if len(p.mountpoint) == 0 || !core.IsMounted(p.mountpoint) {
			fmt.Fprintf(os.Stderr, "%s partition is not mounted\n", p.name)
			ok = false
		}
	}

	return ok
}

func logTargets(verb string, rom *roms.Rom, dir string, targets TargetSet) {
	audit.Printf("%s:", verb)
	audit.Printf("- ROM ID: %s", rom.ID)
	audit.Println("- Targets:")
	if targets.Has(TargetSystem) {
		audit.Printf("  - System: %s", rom.SystemPath)
	}
	if targets.Has(TargetCache) {
		audit.Printf("  - Cache: %s", rom.CachePath)
	}
	if targets.Has(TargetData) {
		audit.Printf("  - Data: %s", rom.DataPath)
	}
	if targets.Has(TargetBoot) {
		audit.Printf("  - Boot image: %s", rom.BootImagePath())
	}
	if targets.Has(TargetConfig) {
		audit.Printf("  - Configs: %s", rom.ConfigPath())
		audit.Printf("             %s", rom.ThumbnailPath())
	}
	audit.Printf("- Backup directory: %s", dir)
}
