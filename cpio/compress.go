// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

package cpio

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	lz4 "github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies the wrapper format around the newc bytes
type Compression int

const (
	None Compression = iota
	Gzip
	Lz4
	Lz4Legacy
	Xz
)

var (
	gzipMagic      = []byte{0x1f, 0x8b}
	xzMagic        = []byte{0xfd, '7', 'z', 'X', 'Z'}
	lz4FrameMagic  = []byte{0x04, 0x22, 0x4d, 0x18}
	lz4LegacyMagic = []byte{0x02, 0x21, 0x4c, 0x18}
)

// DetectCompression sniffs the wrapper format from the leading magic bytes
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	case bytes.HasPrefix(data, xzMagic):
		return Xz
	case bytes.HasPrefix(data, lz4FrameMagic):
		return Lz4
	case bytes.HasPrefix(data, lz4LegacyMagic):
		return Lz4Legacy
	default:
		return None
	}
}

func decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case None:
		return data, nil
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return ioutil.ReadAll(r)
	case Xz:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return ioutil.ReadAll(r)
	case Lz4:
		return ioutil.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	case Lz4Legacy:
		return decompressLz4Legacy(data)
	default:
		return nil, fmt.Errorf("unsupported ramdisk compression format %d", c)
	}
}

func compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case None:
		return data, nil
	case Gzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if err := writeAll(w, data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Xz:
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if err := writeAll(w, data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Lz4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := writeAll(w, data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Lz4Legacy:
		return compressLz4Legacy(data)
	default:
		return nil, fmt.Errorf("unsupported ramdisk compression format %d", c)
	}
}

// the legacy frame format caps each decompressed block at 8 MiB
const lz4LegacyBlockSize = 8 << 20

// decompressLz4Legacy decodes the pre-frame lz4 format used by kernel
// ramdisks: the magic word followed by size-prefixed raw blocks. A
// repeated magic word starts a concatenated frame.
func decompressLz4Legacy(data []byte) ([]byte, error) {
	var out []byte
	block := make([]byte, lz4LegacyBlockSize)

	pos := len(lz4LegacyMagic)
	for pos+4 <= len(data) {
		word := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		if word == binary.LittleEndian.Uint32(lz4LegacyMagic) {
			continue
		}

		size := int(word)
		if size <= 0 || pos+size > len(data) {
			return nil, errors.New("truncated lz4-legacy block")
		}
		n, err := lz4.UncompressBlock(data[pos:pos+size], block)
		if err != nil {
			return nil, err
		}
		out = append(out, block[:n]...)
		pos += size
	}
	return out, nil
}

func compressLz4Legacy(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(lz4LegacyMagic)

	var compressor lz4.Compressor
	block := make([]byte, lz4.CompressBlockBound(lz4LegacyBlockSize))

	for off := 0; off < len(data); off += lz4LegacyBlockSize {
		end := off + lz4LegacyBlockSize
		if end > len(data) {
			end = len(data)
		}
		n, err := compressor.CompressBlock(data[off:end], block)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errors.New("lz4-legacy block compression failed")
		}

		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(n))
		buf.Write(size[:])
		buf.Write(block[:n])
	}
	return buf.Bytes(), nil
}

func writeAll(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}
