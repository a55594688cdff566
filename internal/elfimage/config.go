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
	"encoding/binary"
	"fmt"
	"runtime"
)

// DefaultSearchWindow bounds how far into an image buffer the scanner looks
// for a header.
const DefaultSearchWindow = 8 * 1024

// Config is the build configuration of the boot stage: the word size, byte
// order and machine of the images it accepts.
type Config struct {
	Class   elf.Class
	Data    elf.Data
	Machine elf.Machine
	// SearchWindow is the number of bytes from the start of the buffer the
	// scanner may look at. Zero means DefaultSearchWindow.
	SearchWindow int
}

// Native returns the Config matching the architecture the binary was built for.
func Native() Config {
	c := Config{Class: elf.ELFCLASS64, Data: elf.ELFDATA2LSB, SearchWindow: DefaultSearchWindow}
	switch runtime.GOARCH {
	case "amd64":
		c.Machine = elf.EM_X86_64
	case "386":
		c.Class, c.Machine = elf.ELFCLASS32, elf.EM_386
	case "arm64":
		c.Machine = elf.EM_AARCH64
	case "arm":
		c.Class, c.Machine = elf.ELFCLASS32, elf.EM_ARM
	case "riscv64":
		c.Machine = elf.EM_RISCV
	case "ppc64":
		c.Data, c.Machine = elf.ELFDATA2MSB, elf.EM_PPC64
	case "ppc64le":
		c.Machine = elf.EM_PPC64
	}
	return c
}

// ParseMachine maps a GOARCH style name onto an ELF machine.
func ParseMachine(s string) (elf.Machine, elf.Class, error) {
	switch s {
	case "amd64", "x86_64":
		return elf.EM_X86_64, elf.ELFCLASS64, nil
	case "386", "i386":
		return elf.EM_386, elf.ELFCLASS32, nil
	case "arm64", "aarch64":
		return elf.EM_AARCH64, elf.ELFCLASS64, nil
	case "arm":
		return elf.EM_ARM, elf.ELFCLASS32, nil
	case "riscv64":
		return elf.EM_RISCV, elf.ELFCLASS64, nil
	}
	return elf.EM_NONE, elf.ELFCLASSNONE, fmt.Errorf("unknown machine %q", s)
}

func (c Config) window() int {
	if c.SearchWindow <= 0 {
		return DefaultSearchWindow
	}
	return c.SearchWindow
}

func (c Config) byteOrder() binary.ByteOrder {
	if c.Data == elf.ELFDATA2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// headerSize returns the sizes of the ELF header and of one program header
// for the configured class.
func (c Config) headerSize() (ehdr, phdr int) {
	if c.Class == elf.ELFCLASS32 {
		return ehdr32Size, phdr32Size
	}
	return ehdr64Size, phdr64Size
}

// MinHeaderSize is the smallest number of bytes that can hold an image
// header and a single program header.
func (c Config) MinHeaderSize() int {
	e, p := c.headerSize()
	return e + p
}
