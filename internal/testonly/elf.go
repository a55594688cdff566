// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testonly

import (
	"debug/elf"
	"encoding/binary"
)

// Segment is a program header entry of an Image.
type Segment struct {
	Type  elf.ProgType
	Flags elf.ProgFlag
	Paddr uint64
	// Data is the file-backed content; its length is the segment's filesz.
	Data  []byte
	Memsz uint64
}

// Image describes an ELF executable to be built by Bytes.
type Image struct {
	// Class defaults to ELFCLASS64.
	Class elf.Class
	// Order defaults to little endian.
	Order binary.ByteOrder
	// Type defaults to ET_EXEC.
	Type     elf.Type
	Machine  elf.Machine
	Entry    uint64
	Segments []Segment
}

// Bytes returns the serialised image: the ELF header, directly followed by
// the program header table, followed by the segment contents in order.
func (im Image) Bytes() []byte {
	class := im.Class
	if class == elf.ELFCLASSNONE {
		class = elf.ELFCLASS64
	}
	bo := im.Order
	if bo == nil {
		bo = binary.LittleEndian
	}
	typ := im.Type
	if typ == elf.ET_NONE {
		typ = elf.ET_EXEC
	}

	ehsize, phentsize := 64, 56
	if class == elf.ELFCLASS32 {
		ehsize, phentsize = 52, 32
	}
	phoff := ehsize
	dataOff := phoff + phentsize*len(im.Segments)
	size := dataOff
	for _, s := range im.Segments {
		size += len(s.Data)
	}
	b := make([]byte, size)

	copy(b, elf.ELFMAG)
	b[elf.EI_CLASS] = byte(class)
	b[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if bo == binary.BigEndian {
		b[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	b[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	bo.PutUint16(b[16:], uint16(typ))
	bo.PutUint16(b[18:], uint16(im.Machine))
	bo.PutUint32(b[20:], uint32(elf.EV_CURRENT))
	if class == elf.ELFCLASS32 {
		bo.PutUint32(b[24:], uint32(im.Entry))
		bo.PutUint32(b[28:], uint32(phoff))
		bo.PutUint16(b[40:], uint16(ehsize))
		bo.PutUint16(b[42:], uint16(phentsize))
		bo.PutUint16(b[44:], uint16(len(im.Segments)))
	} else {
		bo.PutUint64(b[24:], im.Entry)
		bo.PutUint64(b[32:], uint64(phoff))
		bo.PutUint16(b[52:], uint16(ehsize))
		bo.PutUint16(b[54:], uint16(phentsize))
		bo.PutUint16(b[56:], uint16(len(im.Segments)))
	}

	off := dataOff
	for i, s := range im.Segments {
		p := b[phoff+i*phentsize:]
		if class == elf.ELFCLASS32 {
			bo.PutUint32(p[0:], uint32(s.Type))
			bo.PutUint32(p[4:], uint32(off))
			bo.PutUint32(p[8:], uint32(s.Paddr))
			bo.PutUint32(p[12:], uint32(s.Paddr))
			bo.PutUint32(p[16:], uint32(len(s.Data)))
			bo.PutUint32(p[20:], uint32(s.Memsz))
			bo.PutUint32(p[24:], uint32(s.Flags))
		} else {
			bo.PutUint32(p[0:], uint32(s.Type))
			bo.PutUint32(p[4:], uint32(s.Flags))
			bo.PutUint64(p[8:], uint64(off))
			bo.PutUint64(p[16:], s.Paddr)
			bo.PutUint64(p[24:], s.Paddr)
			bo.PutUint64(p[32:], uint64(len(s.Data)))
			bo.PutUint64(p[40:], s.Memsz)
		}
		off += copy(b[off:], s.Data)
	}
	return b
}

// Embed returns img placed at offset off of a zero-filled buffer of the
// given size.
func Embed(img []byte, off, size int) []byte {
	if size < off+len(img) {
		size = off + len(img)
	}
	b := make([]byte, size)
	copy(b[off:], img)
	return b
}

// Seq returns n bytes counting up from first.
func Seq(first byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = first + byte(i)
	}
	return b
}
