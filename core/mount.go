// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package core

import (
	"bufio"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/multiboot-tools/rombak/audit"
)

const procMounts = "/proc/mounts"

// MountImage and Unmount are variables so the image-mode passes can be
// exercised without real loop devices
var (
	// MountImage loop-mounts a filesystem image at the target mount point
	MountImage = mountImage

	// Unmount releases a mount point
	Unmount = unmount
)

func mountImage(image, target string, readonly bool) error {
	if err := os.MkdirAll(target, 0755); err != nil && !os.IsExist(err) {
		return err
	}

	options := "loop"
	if readonly {
		options = "loop,ro"
	}

	out, err := exec.Command("mount", "-o", options, "-t", "ext4", image, target).CombinedOutput()
	if len(out) > 0 {
		audit.Println(string(out))
	}
	return err
}

func unmount(target string) error {
	out, err := exec.Command("umount", target).CombinedOutput()
	if len(out) > 0 {
		audit.Println(string(out))
	}
	return err
}

// IsMounted checks whether something is mounted at the given mount point
func IsMounted(mountpoint string) bool {
	f, err := os.Open(procMounts)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == mountpoint {
			return true
		}
	}
	return false
}

// MountedTotalSize returns the total size in bytes of a mounted filesystem
func MountedTotalSize(mountpoint string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mountpoint, &st); err != nil {
		return 0, err
	}
	return st.Blocks * uint64(st.Bsize), nil
}
