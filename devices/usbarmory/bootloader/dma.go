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

//go:build armory

package main

import (
	"fmt"

	"github.com/google/elfboot/internal/physmem"
	"github.com/usbarmory/tamago/dma"
)

// newDMAMemory reserves the whole of the DMA region [start, start+size) and
// returns memory writing straight into it.
func newDMAMemory(start uint, size int) (*physmem.RAM, error) {
	r, err := dma.NewRegion(start, size, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create DMA region at 0x%x: %w", start, err)
	}
	addr, buf := r.Reserve(size, 0)
	if addr != start || len(buf) != size {
		return nil, fmt.Errorf("reserved [0x%x, +0x%x), want [0x%x, +0x%x)", addr, len(buf), start, size)
	}
	return physmem.Mapped(uint64(addr), buf), nil
}
