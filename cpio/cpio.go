// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

// Package cpio reads and writes the newc (070701) archives used as boot
// image ramdisks. Archives are held fully in memory as an entry map with
// insertion-ordered keys, so entries can be removed and re-added without
// disturbing the rest of the ramdisk.
package cpio

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	newcMagic = "070701"
	trailer   = "TRAILER!!!"

	headerSize = 110

	// S_IFMT subset needed to type entries
	ModeFmt  = 0170000
	ModeReg  = 0100000
	ModeDir  = 0040000
	ModeLink = 0120000
)

// Entry is a single file within the archive
type Entry struct {
	Mode      uint32
	UID       uint32
	GID       uint32
	RDevMajor uint32
	RDevMinor uint32
	Data      []byte
}

// Archive is an in-memory cpio archive plus the compression format the
// source bytes carried, so Serialize can reproduce it
type Archive struct {
	entries     map[string]*Entry
	keys        []string
	compression Compression
}

// New returns an empty, uncompressed archive
func New() *Archive {
	return &Archive{
		entries: make(map[string]*Entry),
	}
}

// Load parses a (possibly compressed) newc archive
func Load(data []byte) (*Archive, error) {
	compression := DetectCompression(data)

	raw, err := decompress(compression, data)
	if err != nil {
		return nil, err
	}

	a := New()
	a.compression = compression
	if err := a.parse(raw); err != nil {
		return nil, err
	}
	return a, nil
}

// Compression reports the format the source bytes carried
func (a *Archive) Compression() Compression {
	return a.compression
}

// Names returns the entry names in archive order
func (a *Archive) Names() []string {
	names := make([]string, len(a.keys))
	copy(names, a.keys)
	return names
}

// Entry looks up an entry by name
func (a *Archive) Entry(name string) (*Entry, bool) {
	e, ok := a.entries[normPath(name)]
	return e, ok
}

// Remove drops an entry; removing a missing entry is a no-op
func (a *Archive) Remove(name string) {
	name = normPath(name)
	if _, ok := a.entries[name]; !ok {
		return
	}
	delete(a.entries, name)
	for i, k := range a.keys {
		if k == name {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// AddFile appends a regular file entry, replacing any existing entry of
// the same name
func (a *Archive) AddFile(name string, data []byte, perm uint32) {
	name = normPath(name)
	a.Remove(name)
	a.entries[name] = &Entry{
		Mode: ModeReg | (perm & 0777),
		Data: data,
	}
	a.keys = append(a.keys, name)
}

// Serialize recreates the archive bytes, recompressed in the format the
// source used
func (a *Archive) Serialize() ([]byte, error) {
	raw := a.dump()
	return compress(a.compression, raw)
}

func (a *Archive) parse(data []byte) error {
	if len(data) < headerSize || string(data[:6]) != newcMagic {
		return errors.New("invalid cpio magic")
	}

	pos := 0

	for pos+headerSize <= len(data) {
		hdr := data[pos : pos+headerSize]
		if string(hdr[:6]) != newcMagic {
			return errors.New("invalid cpio magic")
		}
		pos += headerSize

		mode, err := x8u(hdr[14:22])
		if err != nil {
			return err
		}
		uid, err := x8u(hdr[22:30])
		if err != nil {
			return err
		}
		gid, err := x8u(hdr[30:38])
		if err != nil {
			return err
		}
		fileSize, err := x8u(hdr[54:62])
		if err != nil {
			return err
		}
		rdevMajor, err := x8u(hdr[78:86])
		if err != nil {
			return err
		}
		rdevMinor, err := x8u(hdr[86:94])
		if err != nil {
			return err
		}
		nameSize, err := x8u(hdr[94:102])
		if err != nil {
			return err
		}

		if pos+int(nameSize) > len(data) {
			return errors.New("truncated cpio entry name")
		}
		name := strings.TrimRight(string(data[pos:pos+int(nameSize)]), "\x00")
		pos = align4(pos + int(nameSize))

		if name == "." || name == ".." {
			continue
		}
		if name == trailer {
			// Concatenated archives continue after the trailer
			next := bytes.Index(data[pos:], []byte(newcMagic))
			if next < 0 {
				break
			}
			pos += next
			continue
		}

		if pos+int(fileSize) > len(data) {
			return fmt.Errorf("truncated cpio entry data for %q", name)
		}
		fileData := make([]byte, fileSize)
		copy(fileData, data[pos:pos+int(fileSize)])
		pos = align4(pos + int(fileSize))

		if _, ok := a.entries[name]; !ok {
			a.keys = append(a.keys, name)
		}
		a.entries[name] = &Entry{
			Mode:      mode,
			UID:       uid,
			GID:       gid,
			RDevMajor: rdevMajor,
			RDevMinor: rdevMinor,
			Data:      fileData,
		}
	}
	return nil
}

func (a *Archive) dump() []byte {
	var buf bytes.Buffer
	inode := 300000

	for _, name := range a.keys {
		entry := a.entries[name]
		writeEntry(&buf, inode, name, entry)
		inode++
	}
	writeEntry(&buf, inode, trailer, &Entry{Mode: 0755})

	return buf.Bytes()
}

func writeEntry(buf *bytes.Buffer, inode int, name string, entry *Entry) {
	fmt.Fprintf(buf,
		"070701%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x",
		inode,
		entry.Mode,
		entry.UID,
		entry.GID,
		1, // nlink
		0, // mtime
		len(entry.Data),
		0, // major
		0, // minor
		entry.RDevMajor,
		entry.RDevMinor,
		len(name)+1, // namesize includes the null terminator
		0,           // chksum
	)
	buf.WriteString(name)
	buf.WriteByte(0)
	pad4(buf)
	buf.Write(entry.Data)
	pad4(buf)
}

func x8u(x []byte) (uint32, error) {
	if len(x) != 8 {
		return 0, errors.New("bad cpio header")
	}
	ret, err := strconv.ParseUint(string(x), 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(ret), nil
}

func align4(x int) int {
	return (x + 3) &^ 3
}

func pad4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

func normPath(p string) string {
	return strings.TrimLeft(p, "/")
}
