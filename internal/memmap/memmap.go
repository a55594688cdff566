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

// Package memmap describes the platform memory map and answers whether a
// physical address range may be written by the boot stage.
//
// The map is produced by an earlier boot stage; this package only decodes
// the forms it arrives in (coreboot table, device tree, YAML) and validates
// ranges against it.
package memmap

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/elfboot/internal/diag"
)

// Kind is the usability of a memory region.
type Kind uint32

const (
	// RAM is usable memory.
	RAM Kind = iota + 1
	// Reserved memory must not be touched.
	Reserved
	// Other covers every remaining kind (ACPI tables, NVS, MMIO...).
	Other
)

func (k Kind) String() string {
	switch k {
	case RAM:
		return "RAM"
	case Reserved:
		return "Reserved"
	}
	return "Other"
}

// Region is a single entry of the memory map.
type Region struct {
	Start  uint64
	Length uint64
	Kind   Kind
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return end(r.Start, r.Length)
}

// end returns start+length, saturated at the top of the address space.
func end(start, length uint64) uint64 {
	if e := start + length; e >= start {
		return e
	}
	return math.MaxUint64
}

// Overlaps returns true if [start, start+length) shares at least one byte
// with the region. Ranges running past the top of the address space end
// there.
func (r Region) Overlaps(start, length uint64) bool {
	return start < r.End() && end(start, length) > r.Start
}

func (r Region) String() string {
	return fmt.Sprintf("[0x%016x, 0x%016x) %s", r.Start, r.End(), r.Kind)
}

// Map is the platform memory map, in the order supplied by the platform.
//
// No ordering, merging or non-overlap guarantees are assumed.
type Map []Region

func (m Map) String() string {
	var b strings.Builder
	for i, r := range m {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// RAM returns the RAM regions of the map.
func (m Map) RAM() Map {
	var ram Map
	for _, r := range m {
		if r.Kind == RAM {
			ram = append(ram, r)
		}
	}
	return ram
}

// Valid returns true if some RAM region of m overlaps [start, start+length).
//
// Note that this is an overlap test: a range straddling the end of a RAM
// region is accepted, as is one spanning a hole between two RAM regions.
func Valid(m Map, start, length uint64) bool {
	for _, r := range m {
		if r.Kind == RAM && r.Overlaps(start, length) {
			return true
		}
	}
	return false
}

// Check is Valid which, on rejection, reports the rejected range and the
// full region table to sink at Error severity.
func Check(m Map, start, length uint64, sink diag.Sink) bool {
	if Valid(m, start, length) {
		return true
	}
	sink.Printf(diag.Error, "No matching RAM area found for range:")
	sink.Printf(diag.Error, "  [0x%016x, 0x%016x)", start, end(start, length))
	sink.Printf(diag.Error, "RAM areas")
	for _, r := range m {
		sink.Printf(diag.Error, "  %s", r)
	}
	return false
}
