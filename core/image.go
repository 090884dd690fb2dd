// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package core

import (
	"os"
	"os/exec"
	"strconv"

	"github.com/multiboot-tools/rombak/audit"
)

// CreateExt4Image creates an empty ext4 filesystem image of the given byte size
func CreateExt4Image(path string, size uint64) error {
	// make_ext4fs is what the device ships; mke2fs covers everything else
	if _, err := exec.LookPath("make_ext4fs"); err == nil {
		out, err := exec.Command("make_ext4fs", "-l", strconv.FormatUint(size, 10), path).CombinedOutput()
		if len(out) > 0 {
			audit.Println(string(out))
		}
		return err
	}

	// mke2fs formats in place, so size the file first
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	if err = f.Truncate(int64(size)); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	out, err := exec.Command("mke2fs", "-F", "-q", "-t", "ext4", path).CombinedOutput()
	if len(out) > 0 {
		audit.Println(string(out))
	}
	return err
}

// FsckExt4 runs a preen-mode consistency check on an ext4 image
// An exit status of 1 means errors were corrected, which is fine
func FsckExt4(path string) error {
	err := exec.Command("e2fsck", "-fp", path).Run()
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() <= 1 {
		return nil
	}
	return err
}
