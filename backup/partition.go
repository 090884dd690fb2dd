// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/multiboot-tools/rombak/archive"
	"github.com/multiboot-tools/rombak/audit"
	"github.com/multiboot-tools/rombak/config"
	"github.com/multiboot-tools/rombak/core"
)

// BackupPartition archives one partition category into the bundle.
// path is the live directory, or the filesystem image when isImage is set.
func BackupPartition(path, backupDir, archiveName string, isImage bool, exclusions []string) Result {
	archivePath := filepath.Join(backupDir, archiveName)

	if _, err := os.Stat(path); err != nil {
		audit.Printf("=== %s does not exist ===", path)
		return FilesMissing
	}

	audit.Printf("=== Backing up %s ===", path)

	var err error
	if isImage {
		err = backupImage(archivePath, path, exclusions)
	} else {
		err = backupDirectory(archivePath, path, exclusions)
	}
	if err != nil {
		audit.Errorf("Failed to back up %s: %v", path, err)
		return Failed
	}
	return Succeeded
}

// RestorePartition restores one partition category from the bundle.
// Restoring is destructive: the live contents are wiped (minus exclusions)
// before the archive is extracted.
func RestorePartition(path, backupDir, archiveName string, isImage bool, imageSize uint64, exclusions []string) Result {
	archivePath := filepath.Join(backupDir, archiveName)

	if _, err := os.Stat(archivePath); err != nil {
		audit.Printf("=== %s does not exist ===", archivePath)
		return FilesMissing
	}

	audit.Printf("=== Restoring to %s ===", path)

	var err error
	if isImage {
		err = restoreImage(archivePath, path, imageSize, exclusions)
	} else {
		err = restoreDirectory(archivePath, path, exclusions)
	}
	if err != nil {
		audit.Errorf("Failed to restore to %s: %v", path, err)
		return Failed
	}
	return Succeeded
}

func backupDirectory(outputFile, dir string, exclusions []string) error {
	contents, err := core.ListDirectory(dir, exclusions)
	if err != nil {
		return err
	}
	return archive.Create(outputFile, dir, contents)
}

func restoreDirectory(inputFile, dir string, exclusions []string) error {
	if err := core.WipeDirectory(dir, exclusions); err != nil {
		return err
	}
	return archive.Extract(inputFile, dir)
}

func backupImage(outputFile, image string, exclusions []string) error {
	mnt := config.Store.MountPoint

	// A fixable filesystem inconsistency should not block the backup
	if err := core.FsckExt4(image); err != nil {
		audit.Errorf("Filesystem check failed on %s: %v", image, err)
	}

	if err := core.MountImage(image, mnt, true); err != nil {
		audit.Errorf("Failed to mount %s at %s: %v", image, mnt, err)
		_ = os.Remove(mnt)
		return err
	}
	defer releaseMountScope(mnt)

	return backupDirectory(outputFile, mnt, exclusions)
}

func restoreImage(inputFile, image string, size uint64, exclusions []string) error {
	if err := os.MkdirAll(filepath.Dir(image), 0700); err != nil && !os.IsExist(err) {
		audit.Errorf("Failed to create parent directory of %s: %v", image, err)
		return err
	}

	if _, err := os.Stat(image); err != nil {
		if !os.IsNotExist(err) {
			audit.Errorf("Failed to stat %s: %v", image, err)
			return err
		}
		audit.Printf("Creating %s image at %s", humanize.IBytes(size), image)
		if err := core.CreateExt4Image(image, size); err != nil {
			audit.Errorf("Failed to create image %s: %v", image, err)
			return err
		}
	}

	mnt := config.Store.MountPoint

	if err := core.FsckExt4(image); err != nil {
		audit.Errorf("Filesystem check failed on %s: %v", image, err)
	}

	if err := core.MountImage(image, mnt, false); err != nil {
		audit.Errorf("Failed to mount %s at %s: %v", image, mnt, err)
		_ = os.Remove(mnt)
		return err
	}
	defer releaseMountScope(mnt)

	return restoreDirectory(inputFile, mnt, exclusions)
}

// releaseMountScope runs on every exit path of an image-mode pass. A
// failed unmount is logged and leaves the mount point directory behind;
// it does not change the step's already-decided result.
func releaseMountScope(mnt string) {
	if err := core.Unmount(mnt); err != nil {
		audit.Errorf("Failed to unmount %s: %v", mnt, err)
		return
	}
	_ = os.Remove(mnt)
}
