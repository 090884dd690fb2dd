// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package backup_test

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/multiboot-tools/rombak/backup"
	"github.com/multiboot-tools/rombak/bootimg"
	"github.com/multiboot-tools/rombak/cpio"
	check "gopkg.in/check.v1"
)

const bootPageSize = 2048

// fabricateBootImage builds a minimal v0 boot image around the given
// ramdisk payload
func fabricateBootImage(c *check.C, ramdisk []byte) []byte {
	kernel := []byte("kernel payload")

	var buf bytes.Buffer
	buf.WriteString("ANDROID!")
	for _, v := range []uint32{
		uint32(len(kernel)), 0x80208000,
		uint32(len(ramdisk)), 0x82200000,
		0, 0x81100000,
		0x80200100,
		bootPageSize,
		0, 0,
	} {
		c.Assert(binary.Write(&buf, binary.LittleEndian, v), check.IsNil)
	}
	// name, cmdline, id, extra cmdline
	buf.Write(make([]byte, 16+512+32+1024))

	pad := func() {
		for buf.Len()%bootPageSize != 0 {
			buf.WriteByte(0)
		}
	}
	pad()
	buf.Write(kernel)
	pad()
	buf.Write(ramdisk)
	pad()

	return buf.Bytes()
}

func (s *backupSuite) TestRestoreBootImageStampsRomID(c *check.C) {
	ramdisk := cpio.New()
	ramdisk.AddFile("init", []byte("#!/init\n"), 0750)
	ramdisk.AddFile("romid", []byte("primary"), 0664)
	payload, err := ramdisk.Serialize()
	c.Assert(err, check.IsNil)

	bundle := c.MkDir()
	err = ioutil.WriteFile(filepath.Join(bundle, backup.NameBootImage),
		fabricateBootImage(c, payload), 0644)
	c.Assert(err, check.IsNil)

	rom := testRom(c, "dual")
	c.Assert(os.MkdirAll(rom.MultibootDir(), 0775), check.IsNil)

	// restore twice: the identity entry must not accumulate
	c.Assert(backup.RestoreBootImage(rom, bundle), check.Equals, backup.Succeeded)
	c.Assert(backup.RestoreBootImage(rom, bundle), check.Equals, backup.Succeeded)

	img, err := bootimg.Load(rom.BootImagePath())
	c.Assert(err, check.IsNil)

	restored, err := cpio.Load(img.RamdiskImage())
	c.Assert(err, check.IsNil)

	count := 0
	for _, name := range restored.Names() {
		if name == "romid" {
			count++
		}
	}
	c.Assert(count, check.Equals, 1)

	entry, ok := restored.Entry("romid")
	c.Assert(ok, check.Equals, true)
	c.Assert(string(entry.Data), check.Equals, "dual")
	c.Assert(entry.Mode, check.Equals, uint32(cpio.ModeReg|0664))

	// the rest of the ramdisk is untouched
	init, ok := restored.Entry("init")
	c.Assert(ok, check.Equals, true)
	c.Assert(string(init.Data), check.Equals, "#!/init\n")
}

func (s *backupSuite) TestRestoreBootImageMissingArtifact(c *check.C) {
	rom := testRom(c, "dual")
	c.Assert(backup.RestoreBootImage(rom, c.MkDir()), check.Equals, backup.FilesMissing)
}

func (s *backupSuite) TestBackupBootImage(c *check.C) {
	rom := testRom(c, "dual")
	c.Assert(backup.BackupBootImage(rom, c.MkDir()), check.Equals, backup.FilesMissing)

	writeFile(c, rom.BootImagePath(), "raw image bytes")
	bundle := c.MkDir()
	c.Assert(backup.BackupBootImage(rom, bundle), check.Equals, backup.Succeeded)

	data, err := ioutil.ReadFile(filepath.Join(bundle, backup.NameBootImage))
	c.Assert(err, check.IsNil)
	c.Assert(string(data), check.Equals, "raw image bytes")
}
