// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package core

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
)

// CopyFile copies a single file, creating the destination directory if needed
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(dst), 0755); err != nil && !os.IsExist(err) {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ListDirectory returns the top-level entry names of a directory, minus the
// excluded names
func ListDirectory(dir string, except []string) ([]string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if containsName(except, entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// WipeDirectory removes the top-level contents of a directory, keeping the
// excluded names in place
func WipeDirectory(dir string, except []string) error {
	names, err := ListDirectory(dir, except)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// ReadBlockDevice reads a raw partition in full
func ReadBlockDevice(path string) ([]byte, error) {
	return ioutil.ReadFile(path)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
