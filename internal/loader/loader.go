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

// Package loader copies the loadable segments of an image into physical
// memory.
package loader

import (
	"debug/elf"
	"errors"
	"fmt"

	"github.com/google/elfboot/internal/diag"
	"github.com/google/elfboot/internal/elfimage"
	"github.com/google/elfboot/internal/memmap"
	"github.com/google/elfboot/internal/physmem"
)

var (
	// ErrSegmentRejected is returned when a segment's destination is not RAM.
	ErrSegmentRejected = errors.New("segment destination rejected by memory map")
	// ErrSegmentTruncated is returned when a segment's file data lies
	// outside the image buffer.
	ErrSegmentTruncated = errors.New("segment data outside image")
)

// RejectedError describes the segment whose destination failed validation.
type RejectedError struct {
	// Index of the segment in the program header table.
	Index  int
	Start  uint64
	Length uint64
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("segment %d: %v: [0x%x, 0x%x)", e.Index, ErrSegmentRejected, e.Start, e.Start+e.Length)
}

// Unwrap allows errors.Is(err, ErrSegmentRejected).
func (e *RejectedError) Unwrap() error {
	return ErrSegmentRejected
}

// Load copies every PT_LOAD segment of tbl from img to mem, zero-filling the
// in-memory tail beyond the file-backed part.
//
// img must start at the ELF header. Segment file offsets index img, not the
// firmware buffer the header was found in: an image at offset N of that
// buffer has its segment data read from N+offset.
//
// Each destination is checked against m before anything is written to it.
// The first failure stops the load; segments already written stay written.
func Load(m memmap.Map, img []byte, tbl *elfimage.Table, mem physmem.Memory, sink diag.Sink) error {
	sink.Printf(diag.Debug, "load segments: image %d bytes, #headers %d", len(img), tbl.Len())
	for i, p := range tbl.Progs() {
		if p.Type != elf.PT_LOAD {
			sink.Printf(diag.Debug, "Dropping non PT_LOAD segment")
			continue
		}
		if p.Memsz == 0 {
			sink.Printf(diag.Debug, "Dropping empty segment")
			continue
		}
		sink.Printf(diag.Debug, "New segment addr 0x%x size 0x%x offset 0x%x filesize 0x%x", p.Paddr, p.Memsz, p.Off, p.Filesz)

		size := p.Filesz
		if size > p.Memsz {
			size = p.Memsz
			sink.Printf(diag.Debug, "(cleaned up) New segment addr 0x%x size 0x%x offset 0x%x", p.Paddr, size, p.Off)
		}

		if !memmap.Check(m, p.Paddr, size, sink) {
			return &RejectedError{Index: i, Start: p.Paddr, Length: size}
		}

		if p.Off > uint64(len(img)) || size > uint64(len(img))-p.Off {
			return fmt.Errorf("segment %d: %w: [0x%x, 0x%x) of %d bytes", i, ErrSegmentTruncated, p.Off, p.Off+size, len(img))
		}
		sink.Printf(diag.Info, "Copy to 0x%x from offset 0x%x for %d bytes", p.Paddr, p.Off, size)
		if err := mem.Write(p.Paddr, img[p.Off:p.Off+size]); err != nil {
			return fmt.Errorf("segment %d: copy failed: %w", i, err)
		}
		if size < p.Memsz {
			sink.Printf(diag.Info, "Set 0x%x to 0 for %d bytes", p.Paddr+size, p.Memsz-size)
			if err := mem.Zero(p.Paddr+size, p.Memsz-size); err != nil {
				return fmt.Errorf("segment %d: zero-fill failed: %w", i, err)
			}
		}
	}
	return nil
}
