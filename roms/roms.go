// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

// Package roms enumerates the ROM slots a multi-boot device can carry and
// resolves the filesystem locations backing each one.
package roms

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/multiboot-tools/rombak/config"
)

const (
	// names of the fixed artifacts kept in each ROM's multiboot directory
	BootImageName = "boot.img"
	ConfigName    = "config.json"
	ThumbnailName = "thumbnail.webp"

	// subdirectory of each partition that holds non-primary ROM content;
	// always excluded from partition archives
	MultibootSubdir = "multiboot"

	// owner of the multiboot tree on Android (media_rw)
	mediaRwID = 1023

	dataSlotPrefix = "data-slot-"
)

// Rom describes one installed or installable OS instance
type Rom struct {
	ID string

	SystemPath string
	CachePath  string
	DataPath   string

	SystemIsImage bool
	CacheIsImage  bool
	DataIsImage   bool
}

// Create builds the ROM descriptor for an id, whether or not the slot is
// populated yet
func Create(id string) (*Rom, error) {
	system := SystemPartition()
	cache := CachePartition()
	data := DataPartition()

	rom := &Rom{ID: id}

	switch {
	case id == "primary":
		rom.SystemPath = system
		rom.CachePath = cache
		rom.DataPath = data

	case id == "dual":
		rom.SystemPath = filepath.Join(system, MultibootSubdir, id, "system")
		rom.CachePath = filepath.Join(cache, MultibootSubdir, id, "cache")
		rom.DataPath = filepath.Join(data, MultibootSubdir, id, "data")

	case strings.HasPrefix(id, "multi-slot-"):
		// multi-slot ROMs keep their system tree on the cache partition
		// and their cache tree on the system partition
		rom.SystemPath = filepath.Join(cache, MultibootSubdir, id, "system")
		rom.CachePath = filepath.Join(system, MultibootSubdir, id, "cache")
		rom.DataPath = filepath.Join(data, MultibootSubdir, id, "data")

	case strings.HasPrefix(id, dataSlotPrefix):
		// data-slot ROMs live entirely on the data partition, with an
		// image-backed system tree
		rom.SystemPath = filepath.Join(data, MultibootSubdir, id, "system.img")
		rom.CachePath = filepath.Join(data, MultibootSubdir, id, "cache")
		rom.DataPath = filepath.Join(data, MultibootSubdir, id, "data")
		rom.SystemIsImage = true

	default:
		return nil, fmt.Errorf("invalid ROM ID: %q", id)
	}

	return rom, nil
}

// FindByID returns the descriptor for an installed ROM
func FindByID(id string) (*Rom, error) {
	rom, err := Create(id)
	if err != nil {
		return nil, err
	}
	if !rom.IsInstalled() {
		return nil, fmt.Errorf("ROM %q is not installed", id)
	}
	return rom, nil
}

// Installed enumerates the ROM slots that are populated on this device
func Installed() []*Rom {
	ids := []string{"primary", "dual", "multi-slot-1", "multi-slot-2", "multi-slot-3"}

	// data slots are discovered by listing the data partition
	entries, err := os.ReadDir(filepath.Join(DataPartition(), MultibootSubdir))
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && strings.HasPrefix(entry.Name(), dataSlotPrefix) {
				ids = append(ids, entry.Name())
			}
		}
	}

	var installed []*Rom
	for _, id := range ids {
		rom, err := Create(id)
		if err != nil {
			continue
		}
		if rom.IsInstalled() {
			installed = append(installed, rom)
		}
	}
	return installed
}

// IsInstalled reports whether the slot's system tree is populated
func (r *Rom) IsInstalled() bool {
	_, err := os.Stat(r.SystemPath)
	return err == nil
}

// MultibootDir is the ROM's private housekeeping directory
func (r *Rom) MultibootDir() string {
	return filepath.Join(config.Store.MultibootDir, r.ID)
}

// BootImagePath is the ROM's live firmware boot image
func (r *Rom) BootImagePath() string {
	return filepath.Join(r.MultibootDir(), BootImageName)
}

// ConfigPath is the ROM's configuration file
func (r *Rom) ConfigPath() string {
	return filepath.Join(r.MultibootDir(), ConfigName)
}

// ThumbnailPath is the ROM's thumbnail image
func (r *Rom) ThumbnailPath() string {
	return filepath.Join(r.MultibootDir(), ThumbnailName)
}

// SystemPartition is the mount point of the real system partition
func SystemPartition() string {
	return config.Store.Partitions.System
}

// CachePartition is the mount point of the real cache partition
func CachePartition() string {
	return config.Store.Partitions.Cache
}

// DataPartition is the mount point of the real data partition
func DataPartition() string {
	return config.Store.Partitions.Data
}

// FixPermissions repairs ownership and modes over the whole multiboot
// tree, so a corrupted prior state cannot block later restores
func FixPermissions() error {
	return filepath.Walk(config.Store.MultibootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if err := os.Chown(path, mediaRwID, mediaRwID); err != nil {
			return err
		}
		if info.IsDir() {
			return os.Chmod(path, 0775)
		}
		return nil
	})
}
