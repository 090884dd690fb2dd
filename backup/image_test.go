// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup_test

import (
	"os"
	"path/filepath"

	"github.com/multiboot-tools/rombak/archive"
	"github.com/multiboot-tools/rombak/backup"
	"github.com/multiboot-tools/rombak/config"
	"github.com/multiboot-tools/rombak/core"
	check "gopkg.in/check.v1"
)

// stubMounts replaces the mount layer for one test
func stubMounts(mount func(string, string, bool) error, unmount func(string) error) (restore func()) {
	origMount, origUnmount := core.MountImage, core.Unmount
	core.MountImage = mount
	core.Unmount = unmount
	return func() {
		core.MountImage = origMount
		core.Unmount = origUnmount
	}
}

func (s *backupSuite) TestBackupImagePartition(c *check.C) {
	image := filepath.Join(c.MkDir(), "data.img")
	writeFile(c, image, "ext4 image")

	restore := stubMounts(
		func(image, target string, readonly bool) error {
			c.Assert(readonly, check.Equals, true)
			writeFile(c, filepath.Join(target, "app", "base.apk"), "apk")
			writeFile(c, filepath.Join(target, "multiboot", "state"), "x")
			return nil
		},
		func(target string) error { return nil })
	defer restore()

	bundle := c.MkDir()
	ret := backup.BackupPartition(image, bundle, backup.NameData, true,
		[]string{"multiboot"})
	c.Assert(ret, check.Equals, backup.Succeeded)

	out := c.MkDir()
	c.Assert(archive.Extract(filepath.Join(bundle, backup.NameData), out), check.IsNil)
	names, err := core.ListDirectory(out, nil)
	c.Assert(err, check.IsNil)
	c.Assert(names, check.DeepEquals, []string{"app"})
}

func (s *backupSuite) TestRestoreImagePartition(c *check.C) {
	live := c.MkDir()
	writeFile(c, filepath.Join(live, "app", "base.apk"), "apk")
	bundle := c.MkDir()
	c.Assert(archive.Create(filepath.Join(bundle, backup.NameData), live,
		[]string{"app"}), check.IsNil)

	image := filepath.Join(c.MkDir(), "data.img")
	writeFile(c, image, "ext4 image")

	var mounted []string
	restore := stubMounts(
		func(image, target string, readonly bool) error {
			c.Assert(readonly, check.Equals, false)
			// pre-existing content must be wiped before the extract
			writeFile(c, filepath.Join(target, "stale"), "old")
			return nil
		},
		func(target string) error {
			names, err := core.ListDirectory(target, nil)
			c.Assert(err, check.IsNil)
			mounted = names
			return nil
		})
	defer restore()

	ret := backup.RestorePartition(image, bundle, backup.NameData, true, 0, nil)
	c.Assert(ret, check.Equals, backup.Succeeded)
	c.Assert(mounted, check.DeepEquals, []string{"app"})
}

func (s *backupSuite) TestRestoreImageCleansUpMountScope(c *check.C) {
	// an artifact that is not a tar archive fails the extract after the mount
	bundle := c.MkDir()
	writeFile(c, filepath.Join(bundle, backup.NameSystem), "not a tar archive")

	image := filepath.Join(c.MkDir(), "system.img")
	writeFile(c, image, "ext4 image")

	unmounted := false
	restore := stubMounts(
		func(image, target string, readonly bool) error {
			return os.MkdirAll(target, 0755)
		},
		func(target string) error {
			unmounted = true
			return nil
		})
	defer restore()

	ret := backup.RestorePartition(image, bundle, backup.NameSystem, true, 0, nil)
	c.Assert(ret, check.Equals, backup.Failed)

	// the mount scope is released and its directory removed even so
	c.Assert(unmounted, check.Equals, true)
	_, err := os.Stat(config.Store.MountPoint)
	c.Assert(os.IsNotExist(err), check.Equals, true)
}

func (s *backupSuite) TestUnmountFailureKeepsResult(c *check.C) {
	live := c.MkDir()
	writeFile(c, filepath.Join(live, "entry"), "x")
	bundle := c.MkDir()
	c.Assert(archive.Create(filepath.Join(bundle, backup.NameCache), live,
		[]string{"entry"}), check.IsNil)

	image := filepath.Join(c.MkDir(), "cache.img")
	writeFile(c, image, "ext4 image")

	restore := stubMounts(
		func(image, target string, readonly bool) error {
			return os.MkdirAll(target, 0755)
		},
		func(target string) error {
			return os.ErrInvalid
		})
	defer restore()

	// a failed unmount is logged but does not downgrade the step result
	ret := backup.RestorePartition(image, bundle, backup.NameCache, true, 0, nil)
	c.Assert(ret, check.Equals, backup.Succeeded)

	// the mount point is left in place for inspection
	_, err := os.Stat(config.Store.MountPoint)
	c.Assert(err, check.IsNil)
}
