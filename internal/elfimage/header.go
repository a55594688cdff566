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

// Package elfimage finds and decodes ELF executable headers embedded in a
// raw firmware buffer.
//
// Decoding reads fixed-width fields at their documented offsets into plain
// values; nothing is ever overlaid on the buffer and nothing is allocated.
package elfimage

import (
	"debug/elf"
	"errors"
	"fmt"
)

// Sizes of the on-disk structures.
const (
	ehdr32Size = 52
	phdr32Size = 32
	ehdr64Size = 64
	phdr64Size = 56
)

var (
	// ErrImageNotFound is returned when the search window holds no header.
	ErrImageNotFound = errors.New("no ELF header found")
	// ErrShortHeader is returned when there are too few bytes to decode a header.
	ErrShortHeader = errors.New("buffer too short for ELF header")
	// ErrProgramTable is returned when the program header table cannot be
	// decoded from the buffer.
	ErrProgramTable = errors.New("invalid program header table")
)

// Header is a decoded ELF file header.
type Header struct {
	Ident     [elf.EI_NIDENT]byte
	Type      elf.Type
	Machine   elf.Machine
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
}

// HasMagic returns true if b starts with the ELF magic.
func HasMagic(b []byte) bool {
	return len(b) >= len(elf.ELFMAG) && string(b[:len(elf.ELFMAG)]) == elf.ELFMAG
}

// DecodeHeader decodes the ELF header at the start of b using the word size
// and byte order of cfg.
func DecodeHeader(b []byte, cfg Config) (Header, error) {
	var h Header
	ehdr, _ := cfg.headerSize()
	if len(b) < ehdr {
		return h, fmt.Errorf("%w: have %d bytes, need %d", ErrShortHeader, len(b), ehdr)
	}
	bo := cfg.byteOrder()

	copy(h.Ident[:], b[:elf.EI_NIDENT])
	h.Type = elf.Type(bo.Uint16(b[16:]))
	h.Machine = elf.Machine(bo.Uint16(b[18:]))
	h.Version = bo.Uint32(b[20:])
	if cfg.Class == elf.ELFCLASS32 {
		h.Entry = uint64(bo.Uint32(b[24:]))
		h.Phoff = uint64(bo.Uint32(b[28:]))
		h.Flags = bo.Uint32(b[36:])
		h.Ehsize = bo.Uint16(b[40:])
		h.Phentsize = bo.Uint16(b[42:])
		h.Phnum = bo.Uint16(b[44:])
		return h, nil
	}
	h.Entry = bo.Uint64(b[24:])
	h.Phoff = bo.Uint64(b[32:])
	h.Flags = bo.Uint32(b[48:])
	h.Ehsize = bo.Uint16(b[52:])
	h.Phentsize = bo.Uint16(b[54:])
	h.Phnum = bo.Uint16(b[56:])
	return h, nil
}

// Check performs the structural checks on h: executable type, machine,
// class, byte order and version matching cfg, header sizes matching the
// class, and the program header table fitting in the avail bytes which
// follow the start of the header.
func (h Header) Check(cfg Config, avail int) error {
	ehdr, phdr := cfg.headerSize()
	switch {
	case !HasMagic(h.Ident[:]):
		return errors.New("bad magic")
	case h.Type != elf.ET_EXEC:
		return fmt.Errorf("type %v is not %v", h.Type, elf.ET_EXEC)
	case h.Machine != cfg.Machine:
		return fmt.Errorf("machine %v is not %v", h.Machine, cfg.Machine)
	case elf.Class(h.Ident[elf.EI_CLASS]) != cfg.Class:
		return fmt.Errorf("class %v is not %v", elf.Class(h.Ident[elf.EI_CLASS]), cfg.Class)
	case elf.Data(h.Ident[elf.EI_DATA]) != cfg.Data:
		return fmt.Errorf("data encoding %v is not %v", elf.Data(h.Ident[elf.EI_DATA]), cfg.Data)
	case elf.Version(h.Ident[elf.EI_VERSION]) != elf.EV_CURRENT || elf.Version(h.Version) != elf.EV_CURRENT:
		return fmt.Errorf("version %d/%d is not %v", h.Ident[elf.EI_VERSION], h.Version, elf.EV_CURRENT)
	case int(h.Ehsize) != ehdr:
		return fmt.Errorf("header size %d, want %d", h.Ehsize, ehdr)
	case int(h.Phentsize) != phdr:
		return fmt.Errorf("program header size %d, want %d", h.Phentsize, phdr)
	case h.Phoff >= uint64(avail):
		return fmt.Errorf("program headers at 0x%x outside %d byte window", h.Phoff, avail)
	case h.Phoff+uint64(h.Phentsize)*uint64(h.Phnum) > uint64(avail):
		return fmt.Errorf("program header table end 0x%x outside %d byte window", h.Phoff+uint64(h.Phentsize)*uint64(h.Phnum), avail)
	}
	return nil
}
