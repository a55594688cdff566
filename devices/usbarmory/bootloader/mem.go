// https://github.com/usbarmory/armory-boot
//
// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build armory

package main

import (
	_ "unsafe"

	"github.com/google/elfboot/internal/memmap"
)

// Override imx6ul.ramStart and usbarmory.ramSize, so that the boot stage
// runs from the upper half of DRAM and images load into the lower half.

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = 0x90000000

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = 0x10000000

const (
	loadStart = 0x80000000
	loadSize  = 0x10000000
)

// platformMap is the memory map handed to the boot stage. The region the
// Go runtime runs from is reserved.
var platformMap = memmap.Map{
	{Start: loadStart, Length: loadSize, Kind: memmap.RAM},
	{Start: uint64(ramStart), Length: uint64(ramSize), Kind: memmap.Reserved},
	// OCRAM
	{Start: 0x00900000, Length: 0x00020000, Kind: memmap.Reserved},
}
