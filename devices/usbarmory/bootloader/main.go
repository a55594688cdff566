// https://github.com/usbarmory/armory-boot
//
// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build armory

// bootloader is the ELF boot stage for the USB armory Mk II.
//
// It reads an ELF image from the ext4 partition at StartKernel of the boot
// media, loads it into the lower half of DRAM and jumps into it.
package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/google/elfboot/internal/boot"
	"github.com/google/elfboot/internal/diag"
	"github.com/google/elfboot/internal/elfimage"
	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/usdhc"
)

// Set with -ldflags -X at build time.
var (
	Build    string
	Revision string

	Boot        string
	StartKernel string
	ImagePath   = "/boot/image.elf"
	// Verbose enables DEBUG level diagnostics.
	Verbose string
)

var (
	media     *usdhc.USDHC
	imgOffset int64
)

func init() {
	usbarmory.LED("blue", false)
	usbarmory.LED("white", false)

	log.SetFlags(0)

	var err error
	imgOffset, err = strconv.ParseInt(StartKernel, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("invalid start kernel offset, %v\n", err))
	}

	switch Boot {
	case "eMMC":
		media = usbarmory.MMC
	case "uSD":
		media = usbarmory.SD
	default:
		panic("invalid boot parameter")
	}
}

func main() {
	log.Printf("elfboot: %s %s", Revision, Build)

	if err := media.Detect(); err != nil {
		panic(fmt.Sprintf("boot media error, %v\n", err))
	}

	p, err := partition(media, imgOffset)
	if err != nil {
		panic(fmt.Sprintf("boot media error, %v\n", err))
	}
	buf, err := p.ReadAll(ImagePath)
	if err != nil {
		panic(fmt.Sprintf("failed to read %s, %v\n", ImagePath, err))
	}

	mem, err := newDMAMemory(loadStart, loadSize)
	if err != nil {
		panic(err)
	}

	sink := consoleSink{verbosity: diag.Info}
	if Verbose != "" {
		sink.verbosity = diag.Debug
	}
	cfg := elfimage.Native()

	err = boot.Run(platformMap, buf, cfg, mem, jump, sink)
	panic(fmt.Sprintf("elfboot: %v", err))
}
