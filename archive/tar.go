// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/multiboot-tools/rombak/audit"
)

// Create writes the named top-level entries of dir into a tar archive.
// Paths inside the archive are relative to dir, so extracting reproduces
// the entries without their parent.
func Create(tarPath, dir string, entries []string) error {
	tarfile, err := os.Create(tarPath)
	if err != nil {
		return err
	}
	defer tarfile.Close()

	tw := tar.NewWriter(tarfile)

	for _, entry := range entries {
		err = filepath.Walk(filepath.Join(dir, entry), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			return addEntry(tw, dir, path, info)
		})
		if err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return err
	}
	return tarfile.Close()
}

func addEntry(tw *tar.Writer, dir, path string, info os.FileInfo) error {
	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		l, err := os.Readlink(path)
		if err != nil {
			return err
		}
		link = l
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}

	name, err := filepath.Rel(dir, path)
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}

	if err = tw.WriteHeader(header); err != nil {
		return err
	}

	if header.Typeflag != tar.TypeReg {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Extract unpacks a tar archive into the given directory
func Extract(tarPath, dir string) error {
	tarfile, err := os.Open(tarPath)
	if err != nil {
		return err
	}
	defer tarfile.Close()

	tr := tar.NewReader(tarfile)

	for {
		header, err := tr.Next()
		switch {
		// if no more files are found we are done
		case err == io.EOF:
			return nil
		// return any other error
		case err != nil:
			return err
		// if the header is nil, just skip it (not sure how this happens)
		case header == nil:
			continue
		}

		// Target location where the dir/file should be created
		target := filepath.Join(dir, header.Name)

		switch header.Typeflag {
		// if it's a dir and it doesn't exist create it
		case tar.TypeDir:
			if _, err := os.Stat(target); err != nil {
				if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
					return err
				}
			}

		// if it's a file create it
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil && !os.IsExist(err) {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return err
			}

			// copy over contents
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

		// recreate symlinks as they were
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}

		// hardlinks, fifos and device nodes are not recreated
		default:
			audit.Printf("Skipping unsupported archive entry %s (type %c)", header.Name, header.Typeflag)
		}
	}
}
