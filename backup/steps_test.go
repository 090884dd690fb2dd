// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup_test

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/multiboot-tools/rombak/backup"
	"github.com/multiboot-tools/rombak/core"
	"github.com/multiboot-tools/rombak/roms"
	check "gopkg.in/check.v1"
)

// testRom builds a descriptor whose partition paths live under temp dirs
func testRom(c *check.C, id string) *roms.Rom {
	return &roms.Rom{
		ID:         id,
		SystemPath: filepath.Join(c.MkDir(), "system"),
		CachePath:  filepath.Join(c.MkDir(), "cache"),
		DataPath:   filepath.Join(c.MkDir(), "data"),
	}
}

func writeFile(c *check.C, path, content string) {
	c.Assert(os.MkdirAll(filepath.Dir(path), 0755), check.IsNil)
	c.Assert(ioutil.WriteFile(path, []byte(content), 0644), check.IsNil)
}

func (s *backupSuite) TestConfigsBothPresent(c *check.C) {
	rom := testRom(c, "dual")
	writeFile(c, rom.ConfigPath(), `{"id":"dual"}`)
	writeFile(c, rom.ThumbnailPath(), "webp")

	bundle := c.MkDir()
	c.Assert(backup.BackupConfigs(rom, bundle), check.Equals, backup.Succeeded)

	data, err := ioutil.ReadFile(filepath.Join(bundle, backup.NameConfig))
	c.Assert(err, check.IsNil)
	c.Assert(string(data), check.Equals, `{"id":"dual"}`)
}

func (s *backupSuite) TestConfigsThumbnailMissing(c *check.C) {
	rom := testRom(c, "dual")
	writeFile(c, rom.ConfigPath(), `{"id":"dual"}`)

	bundle := c.MkDir()
	c.Assert(backup.BackupConfigs(rom, bundle), check.Equals, backup.FilesMissing)

	// the present file is still copied
	_, err := os.Stat(filepath.Join(bundle, backup.NameConfig))
	c.Assert(err, check.IsNil)
	_, err = os.Stat(filepath.Join(bundle, backup.NameThumbnail))
	c.Assert(os.IsNotExist(err), check.Equals, true)
}

func (s *backupSuite) TestRestoreConfigs(c *check.C) {
	rom := testRom(c, "dual")
	bundle := c.MkDir()
	writeFile(c, filepath.Join(bundle, backup.NameConfig), `{"id":"old"}`)
	writeFile(c, filepath.Join(bundle, backup.NameThumbnail), "webp")

	c.Assert(backup.RestoreConfigs(rom, bundle), check.Equals, backup.Succeeded)

	data, err := ioutil.ReadFile(rom.ConfigPath())
	c.Assert(err, check.IsNil)
	c.Assert(string(data), check.Equals, `{"id":"old"}`)
}

func (s *backupSuite) TestPartitionRoundTrip(c *check.C) {
	live := c.MkDir()
	writeFile(c, filepath.Join(live, "app", "base.apk"), "apk")
	writeFile(c, filepath.Join(live, "build.prop"), "ro.build=1\n")
	writeFile(c, filepath.Join(live, "media", "movie.mp4"), "big")
	writeFile(c, filepath.Join(live, "multiboot", "state"), "x")

	bundle := c.MkDir()
	ret := backup.BackupPartition(live, bundle, backup.NameData, false,
		[]string{"media", "multiboot"})
	c.Assert(ret, check.Equals, backup.Succeeded)

	// restore over a slot that has junk and a media tree to keep
	target := c.MkDir()
	writeFile(c, filepath.Join(target, "junk", "old"), "old")
	writeFile(c, filepath.Join(target, "media", "keep.mp4"), "keep")

	ret = backup.RestorePartition(target, bundle, backup.NameData, false, 0,
		[]string{"media"})
	c.Assert(ret, check.Equals, backup.Succeeded)

	names, err := core.ListDirectory(target, nil)
	c.Assert(err, check.IsNil)
	c.Assert(names, check.DeepEquals, []string{"app", "build.prop", "media"})

	data, err := ioutil.ReadFile(filepath.Join(target, "media", "keep.mp4"))
	c.Assert(err, check.IsNil)
	c.Assert(string(data), check.Equals, "keep")
}

func (s *backupSuite) TestPartitionMissingLivePath(c *check.C) {
	bundle := c.MkDir()
	ret := backup.BackupPartition(filepath.Join(c.MkDir(), "gone"), bundle,
		backup.NameCache, false, nil)
	c.Assert(ret, check.Equals, backup.FilesMissing)

	_, err := os.Stat(filepath.Join(bundle, backup.NameCache))
	c.Assert(os.IsNotExist(err), check.Equals, true)
}

func (s *backupSuite) TestPartitionMissingArtifact(c *check.C) {
	target := c.MkDir()
	writeFile(c, filepath.Join(target, "untouched"), "still here")

	ret := backup.RestorePartition(target, c.MkDir(), backup.NameCache, false, 0, nil)
	c.Assert(ret, check.Equals, backup.FilesMissing)

	// a missing artifact must leave the target alone
	_, err := os.Stat(filepath.Join(target, "untouched"))
	c.Assert(err, check.IsNil)
}

func (s *backupSuite) TestBackupRomAbortsOnFailure(c *check.C) {
	rom := testRom(c, "dual")

	// a system "directory" that is actually a file makes the system step fail
	writeFile(c, rom.SystemPath, "not a directory")
	writeFile(c, filepath.Join(rom.CachePath, "entry"), "cache")
	writeFile(c, filepath.Join(rom.DataPath, "entry"), "data")

	bundle := c.MkDir()
	targets := backup.TargetSystem | backup.TargetCache | backup.TargetData
	c.Assert(backup.BackupRom(rom, bundle, targets), check.Equals, false)

	// the cache and data steps never ran
	_, err := os.Stat(filepath.Join(bundle, backup.NameCache))
	c.Assert(os.IsNotExist(err), check.Equals, true)
	_, err = os.Stat(filepath.Join(bundle, backup.NameData))
	c.Assert(os.IsNotExist(err), check.Equals, true)
}

func (s *backupSuite) TestBackupRomToleratesMissingFiles(c *check.C) {
	rom := testRom(c, "dual")
	writeFile(c, rom.ConfigPath(), `{"id":"dual"}`)
	// no thumbnail, no boot image

	bundle := c.MkDir()
	targets := backup.TargetBoot | backup.TargetConfig
	c.Assert(backup.BackupRom(rom, bundle, targets), check.Equals, true)
}

func (s *backupSuite) TestBackupRomRejectsEmptyTargets(c *check.C) {
	rom := testRom(c, "dual")
	c.Assert(backup.BackupRom(rom, c.MkDir(), backup.TargetNone), check.Equals, false)
}

func (s *backupSuite) TestRestoreRomCreatesMultibootDir(c *check.C) {
	rom := testRom(c, "dual")
	bundle := c.MkDir()
	writeFile(c, filepath.Join(bundle, backup.NameConfig), `{"id":"dual"}`)

	c.Assert(backup.RestoreRom(rom, bundle, backup.TargetConfig), check.Equals, true)

	info, err := os.Stat(rom.MultibootDir())
	c.Assert(err, check.IsNil)
	c.Assert(info.IsDir(), check.Equals, true)

	_, err = os.Stat(rom.ConfigPath())
	c.Assert(err, check.IsNil)
}
