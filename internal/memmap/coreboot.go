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

package memmap

import (
	"encoding/binary"
	"fmt"
)

// Coreboot table record layout.
//
//	lb_record:       tag u32, size u32 (size includes the record header)
//	lb_memory_range: start {lo u32, hi u32}, size {lo u32, hi u32}, type u32
const (
	CorebootTagMemory = 0x0001

	corebootRecordSize = 8
	corebootRangeSize  = 20
)

// Coreboot memory range types.
const (
	CorebootMemRAM      = 1
	CorebootMemReserved = 2
)

// ParseCoreboot decodes a coreboot LB_TAG_MEMORY record into a Map.
//
// Types other than RAM and reserved are mapped to Other.
func ParseCoreboot(b []byte) (Map, error) {
	if len(b) < corebootRecordSize {
		return nil, fmt.Errorf("coreboot record too short (%d bytes)", len(b))
	}
	tag := binary.LittleEndian.Uint32(b[0:])
	size := binary.LittleEndian.Uint32(b[4:])
	if tag != CorebootTagMemory {
		return nil, fmt.Errorf("coreboot record has tag 0x%x, want 0x%x", tag, CorebootTagMemory)
	}
	if size < corebootRecordSize || uint64(size) > uint64(len(b)) {
		return nil, fmt.Errorf("coreboot record size %d invalid for %d byte buffer", size, len(b))
	}

	n := (size - corebootRecordSize) / corebootRangeSize
	m := make(Map, 0, n)
	for i := uint32(0); i < n; i++ {
		e := b[corebootRecordSize+i*corebootRangeSize:]
		r := Region{
			Start:  unpackLB64(e[0:]),
			Length: unpackLB64(e[8:]),
		}
		switch binary.LittleEndian.Uint32(e[16:]) {
		case CorebootMemRAM:
			r.Kind = RAM
		case CorebootMemReserved:
			r.Kind = Reserved
		default:
			r.Kind = Other
		}
		m = append(m, r)
	}
	return m, nil
}

// MarshalCoreboot encodes m as a coreboot LB_TAG_MEMORY record.
func MarshalCoreboot(m Map) []byte {
	size := corebootRecordSize + len(m)*corebootRangeSize
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b[0:], CorebootTagMemory)
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	for i, r := range m {
		e := b[corebootRecordSize+i*corebootRangeSize:]
		packLB64(e[0:], r.Start)
		packLB64(e[8:], r.Length)
		t := uint32(CorebootMemRAM)
		switch r.Kind {
		case Reserved:
			t = CorebootMemReserved
		case Other:
			// LB_MEM_UNUSABLE
			t = 5
		}
		binary.LittleEndian.PutUint32(e[16:], t)
	}
	return b
}

// unpackLB64 reads a coreboot lb_uint64, which is stored as two 32 bit
// halves to avoid 64 bit alignment requirements.
func unpackLB64(b []byte) uint64 {
	return uint64(binary.LittleEndian.Uint32(b[4:]))<<32 | uint64(binary.LittleEndian.Uint32(b[0:]))
}

func packLB64(b []byte, v uint64) {
	binary.LittleEndian.PutUint32(b[0:], uint32(v))
	binary.LittleEndian.PutUint32(b[4:], uint32(v>>32))
}
