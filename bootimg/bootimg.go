// -*- Mode: Go; indent-tabs-mode: t -*-
// Rombak
// Copyright 2026 Multiboot Tools.  All rights reserved.

// Package bootimg reads and writes Android boot images (header v0, the
// format used by the devices this tool supports), including the loki
// signature-bypass variant. The checksum/id field of a loaded image is
// carried through verbatim and never recomputed.
package bootimg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Type identifies the container variant an image was loaded as, or should
// be written as
type Type int

const (
	TypeAndroid Type = iota
	TypeLoki
)

const (
	bootMagic     = "ANDROID!"
	bootMagicSize = 8
	bootNameSize  = 16
	bootArgsSize  = 512
	bootIDSize    = 32
	extraArgsSize = 1024

	lokiMagic  = "LOKI"
	lokiOffset = 0x400
)

// hdrV0 is the classic boot image header. On images of this era the two
// words after PageSize hold the device tree size, not a header version.
type hdrV0 struct {
	Magic        [bootMagicSize]byte
	KernelSize   uint32
	KernelAddr   uint32
	RamdiskSize  uint32
	RamdiskAddr  uint32
	SecondSize   uint32
	SecondAddr   uint32
	TagsAddr     uint32
	PageSize     uint32
	DtSize       uint32
	Unused       uint32
	Name         [bootNameSize]byte
	Cmdline      [bootArgsSize]byte
	ID           [bootIDSize]byte
	ExtraCmdline [extraArgsSize]byte
}

// lokiHdr sits in the spare area of the header page on bypass-patched
// images and records the pre-patch payload sizes
type lokiHdr struct {
	Magic           [4]byte
	Recovery        uint32
	Build           [128]byte
	OrigKernelSize  uint32
	OrigRamdiskSize uint32
	RamdiskAddr     uint32
}

// Image is a fully loaded boot image container
type Image struct {
	hdr        hdrV0
	loki       lokiHdr
	wasType    Type
	targetType Type

	kernel     []byte
	ramdisk    []byte
	second     []byte
	deviceTree []byte
	aboot      []byte
}

// Load reads and parses a boot image file
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	return parse(m)
}

func parse(data []byte) (*Image, error) {
	hdrSize := binary.Size(hdrV0{})
	if len(data) < hdrSize {
		return nil, errors.New("boot image too short for header")
	}

	img := &Image{}
	if err := binary.Read(bytes.NewReader(data[:hdrSize]), binary.LittleEndian, &img.hdr); err != nil {
		return nil, err
	}
	if string(img.hdr.Magic[:]) != bootMagic {
		return nil, errors.New("invalid boot image magic")
	}
	pageSize := int(img.hdr.PageSize)
	if pageSize == 0 || pageSize%512 != 0 {
		return nil, fmt.Errorf("invalid boot image page size %d", pageSize)
	}

	kernelSize := int(img.hdr.KernelSize)
	ramdiskSize := int(img.hdr.RamdiskSize)

	// A bypass-patched image keeps its loki header in the spare area of
	// the header page; the original payload sizes live there
	if len(data) >= lokiOffset+binary.Size(lokiHdr{}) &&
		bytes.Equal(data[lokiOffset:lokiOffset+4], []byte(lokiMagic)) {
		if err := binary.Read(bytes.NewReader(data[lokiOffset:]), binary.LittleEndian, &img.loki); err != nil {
			return nil, err
		}
		img.wasType = TypeLoki
		img.targetType = TypeLoki
		if img.loki.OrigKernelSize != 0 {
			kernelSize = int(img.loki.OrigKernelSize)
		}
		if img.loki.OrigRamdiskSize != 0 {
			ramdiskSize = int(img.loki.OrigRamdiskSize)
		}
	}

	pos := pageSize
	var err error
	if img.kernel, pos, err = segment(data, pos, kernelSize, pageSize, "kernel"); err != nil {
		return nil, err
	}
	if img.ramdisk, pos, err = segment(data, pos, ramdiskSize, pageSize, "ramdisk"); err != nil {
		return nil, err
	}
	if img.second, pos, err = segment(data, pos, int(img.hdr.SecondSize), pageSize, "second"); err != nil {
		return nil, err
	}
	if img.deviceTree, _, err = segment(data, pos, int(img.hdr.DtSize), pageSize, "device tree"); err != nil {
		return nil, err
	}

	return img, nil
}

func segment(data []byte, pos, size, pageSize int, what string) ([]byte, int, error) {
	if size == 0 {
		return nil, pos, nil
	}
	if pos+size > len(data) {
		return nil, 0, fmt.Errorf("boot image truncated in %s segment", what)
	}
	seg := make([]byte, size)
	copy(seg, data[pos:pos+size])
	return seg, pageAlign(pos+size, pageSize), nil
}

// WasType reports the variant the image was loaded as
func (b *Image) WasType() Type {
	return b.wasType
}

// SetTargetType selects the variant WriteFile produces
func (b *Image) SetTargetType(t Type) {
	b.targetType = t
}

// RamdiskImage returns the (still compressed) ramdisk payload
func (b *Image) RamdiskImage() []byte {
	return b.ramdisk
}

// SetRamdiskImage replaces the ramdisk payload
func (b *Image) SetRamdiskImage(data []byte) {
	b.ramdisk = data
}

// SetAbootImage installs the bypass-reference image used when writing the
// loki variant
func (b *Image) SetAbootImage(data []byte) {
	b.aboot = data
}

// Serialize produces the container bytes for the selected target type
func (b *Image) Serialize() ([]byte, error) {
	pageSize := int(b.hdr.PageSize)

	hdr := b.hdr
	hdr.KernelSize = uint32(len(b.kernel))
	hdr.RamdiskSize = uint32(len(b.ramdisk))
	hdr.SecondSize = uint32(len(b.second))
	hdr.DtSize = uint32(len(b.deviceTree))

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if buf.Len() > pageSize {
		return nil, fmt.Errorf("page size %d smaller than header", pageSize)
	}

	if b.targetType == TypeLoki {
		if len(b.aboot) == 0 {
			return nil, errors.New("loki target requires an aboot image")
		}
		loki := b.loki
		copy(loki.Magic[:], lokiMagic)
		loki.OrigKernelSize = uint32(len(b.kernel))
		loki.OrigRamdiskSize = uint32(len(b.ramdisk))
		loki.RamdiskAddr = hdr.RamdiskAddr

		padTo(&buf, lokiOffset)
		if err := binary.Write(&buf, binary.LittleEndian, &loki); err != nil {
			return nil, err
		}
	}
	padTo(&buf, pageSize)

	for _, seg := range [][]byte{b.kernel, b.ramdisk, b.second, b.deviceTree} {
		buf.Write(seg)
		padTo(&buf, pageAlign(buf.Len(), pageSize))
	}

	// The bypass variant carries the reference image after the payload
	if b.targetType == TypeLoki {
		buf.Write(b.aboot)
		padTo(&buf, pageAlign(buf.Len(), pageSize))
	}

	return buf.Bytes(), nil
}

// WriteFile serializes the container to a file
func (b *Image) WriteFile(path string) error {
	data, err := b.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func pageAlign(n, pageSize int) int {
	return (n + pageSize - 1) / pageSize * pageSize
}

func padTo(buf *bytes.Buffer, n int) {
	for buf.Len() < n {
		buf.WriteByte(0)
	}
}
