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
	"fmt"

	"github.com/google/elfboot/internal/diag"
)

// Stride is the alignment of candidate header offsets.
const Stride = 16

// Candidate is an image header located inside a buffer.
type Candidate struct {
	// Offset of the header from the start of the scanned buffer.
	Offset int
	Header Header
	Progs  Table
	// Sanity holds the result of Header.Check. It is informational only:
	// a header with matching magic is used even when Sanity is non-nil.
	Sanity error
}

// Image returns the part of buf starting at the candidate header. Program
// header and segment file offsets are relative to it.
func (c *Candidate) Image(buf []byte) []byte {
	return buf[c.Offset:]
}

// Scan returns the offset of the first Stride-aligned ELF magic within the
// configured search window of buf.
//
// Only offsets leaving room for a header and one program header inside the
// window are inspected. The first magic match wins; no further validation
// gates it.
func Scan(buf []byte, cfg Config, sink diag.Sink) (int, error) {
	window := cfg.window()
	if len(buf) < window {
		window = len(buf)
	}
	need := cfg.MinHeaderSize()
	for off := 0; off+need <= window; off += Stride {
		if !HasMagic(buf[off:]) {
			sink.Printf(diag.Spew, "No header at %d", off)
			continue
		}
		sink.Printf(diag.Debug, "Found ELF candidate at offset %d", off)
		return off, nil
	}
	return -1, ErrImageNotFound
}

// FindInto scans buf for an image header and decodes it, with its program
// header table, into c.
func FindInto(buf []byte, cfg Config, sink diag.Sink, c *Candidate) error {
	off, err := Scan(buf, cfg, sink)
	sink.Printf(diag.Spew, "header_offset is %d", off)
	if err != nil {
		return err
	}
	c.Offset = off
	img := buf[off:]
	if c.Header, err = DecodeHeader(img, cfg); err != nil {
		return fmt.Errorf("candidate at offset %d: %w", off, err)
	}

	window := cfg.window()
	if len(buf) < window {
		window = len(buf)
	}
	c.Sanity = c.Header.Check(cfg, window-off)
	if c.Sanity != nil {
		sink.Printf(diag.Warning, "ELF candidate at offset %d fails sanity check: %v", off, c.Sanity)
	}

	if err := DecodeProgs(img, c.Header, cfg, &c.Progs); err != nil {
		return fmt.Errorf("candidate at offset %d: %w", off, err)
	}
	sink.Printf(diag.Spew, "Try to load at offset 0x%x %d phdr", off, c.Header.Phnum)
	return nil
}

// Find is FindInto returning a new Candidate.
func Find(buf []byte, cfg Config, sink diag.Sink) (*Candidate, error) {
	c := &Candidate{}
	if err := FindInto(buf, cfg, sink, c); err != nil {
		return nil, err
	}
	return c, nil
}
