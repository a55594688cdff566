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

package elfimage

import (
	"debug/elf"
	"fmt"
)

// MaxProgs is the capacity of a Table.
const MaxProgs = 64

// Prog is a decoded program header.
type Prog struct {
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Table is a fixed capacity program header table.
//
// The zero value is an empty table ready for DecodeProgs.
type Table struct {
	progs [MaxProgs]Prog
	n     int
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return t.n
}

// Progs returns the entries of the table. The returned slice aliases t.
func (t *Table) Progs() []Prog {
	return t.progs[:t.n]
}

// DecodeProgs decodes the program header table described by h from img into
// t. img must start at the ELF header, as h.Phoff is relative to it.
//
// The table must lie entirely inside img.
func DecodeProgs(img []byte, h Header, cfg Config, t *Table) error {
	t.n = 0
	if h.Phnum == 0 {
		return nil
	}
	_, phdr := cfg.headerSize()
	if int(h.Phnum) > MaxProgs {
		return fmt.Errorf("%w: %d entries, capacity is %d", ErrProgramTable, h.Phnum, MaxProgs)
	}
	if int(h.Phentsize) < phdr {
		return fmt.Errorf("%w: entry size %d, need at least %d", ErrProgramTable, h.Phentsize, phdr)
	}
	end := h.Phoff + uint64(h.Phnum)*uint64(h.Phentsize)
	if end < h.Phoff || end > uint64(len(img)) {
		return fmt.Errorf("%w: table [0x%x, 0x%x) outside %d byte image", ErrProgramTable, h.Phoff, end, len(img))
	}

	bo := cfg.byteOrder()
	for i := 0; i < int(h.Phnum); i++ {
		b := img[h.Phoff+uint64(i)*uint64(h.Phentsize):]
		p := &t.progs[i]
		p.Type = elf.ProgType(bo.Uint32(b[0:]))
		if cfg.Class == elf.ELFCLASS32 {
			p.Off = uint64(bo.Uint32(b[4:]))
			p.Vaddr = uint64(bo.Uint32(b[8:]))
			p.Paddr = uint64(bo.Uint32(b[12:]))
			p.Filesz = uint64(bo.Uint32(b[16:]))
			p.Memsz = uint64(bo.Uint32(b[20:]))
			p.Flags = elf.ProgFlag(bo.Uint32(b[24:]))
			p.Align = uint64(bo.Uint32(b[28:]))
			continue
		}
		p.Flags = elf.ProgFlag(bo.Uint32(b[4:]))
		p.Off = bo.Uint64(b[8:])
		p.Vaddr = bo.Uint64(b[16:])
		p.Paddr = bo.Uint64(b[24:])
		p.Filesz = bo.Uint64(b[32:])
		p.Memsz = bo.Uint64(b[40:])
		p.Align = bo.Uint64(b[48:])
	}
	t.n = int(h.Phnum)
	return nil
}
