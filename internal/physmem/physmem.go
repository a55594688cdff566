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

// Package physmem abstracts the physical memory the boot stage writes
// segments into.
package physmem

import (
	"errors"
	"fmt"

	"github.com/google/elfboot/internal/memmap"
)

// ErrBusFault is returned for accesses to addresses no bank backs.
var ErrBusFault = errors.New("access to unbacked physical memory")

// Memory is writable physical memory.
type Memory interface {
	// Write copies b to physical address addr.
	Write(addr uint64, b []byte) error
	// Zero clears n bytes starting at physical address addr.
	Zero(addr, n uint64) error
}

// bank is a contiguous run of simulated memory.
type bank struct {
	start uint64
	data  []byte
}

func (b bank) slice(addr, n uint64) ([]byte, bool) {
	if addr < b.start || n > uint64(len(b.data)) || addr-b.start > uint64(len(b.data))-n {
		return nil, false
	}
	off := addr - b.start
	return b.data[off : off+n], true
}

// RAM is host memory simulating a set of physical memory banks.
type RAM struct {
	banks []bank
}

var _ Memory = &RAM{}

// NewRAM returns RAM with one bank per RAM region of m. Banks larger than
// limit bytes are truncated to limit, so that large maps can be simulated;
// a zero limit means no truncation.
func NewRAM(m memmap.Map, limit uint64) *RAM {
	r := &RAM{}
	for _, reg := range m.RAM() {
		n := reg.Length
		if limit > 0 && n > limit {
			n = limit
		}
		r.AddBank(reg.Start, n)
	}
	return r
}

// Mapped returns RAM with a single bank aliasing buf at physical address
// start. Writes land in buf, which is usually a reserved window onto real
// memory.
func Mapped(start uint64, buf []byte) *RAM {
	return &RAM{banks: []bank{{start: start, data: buf}}}
}

// AddBank adds a zero-filled bank of n bytes at physical address start.
func (r *RAM) AddBank(start, n uint64) {
	r.banks = append(r.banks, bank{start: start, data: make([]byte, n)})
}

func (r *RAM) find(addr, n uint64) ([]byte, error) {
	for _, b := range r.banks {
		if s, ok := b.slice(addr, n); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: [0x%x, 0x%x)", ErrBusFault, addr, addr+n)
}

// Write implements Memory.
func (r *RAM) Write(addr uint64, b []byte) error {
	d, err := r.find(addr, uint64(len(b)))
	if err != nil {
		return err
	}
	copy(d, b)
	return nil
}

// Zero implements Memory.
func (r *RAM) Zero(addr, n uint64) error {
	d, err := r.find(addr, n)
	if err != nil {
		return err
	}
	for i := range d {
		d[i] = 0
	}
	return nil
}

// Read returns a copy of n bytes at physical address addr.
func (r *RAM) Read(addr, n uint64) ([]byte, error) {
	d, err := r.find(addr, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), d...), nil
}

// Fill sets every byte of every bank to v.
func (r *RAM) Fill(v byte) {
	for _, b := range r.banks {
		for i := range b.data {
			b.data[i] = v
		}
	}
}
