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

// Package impl is the implementation of the boot stage emulator.
package impl

import (
	"debug/elf"
	"errors"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/google/elfboot/internal/boot"
	"github.com/google/elfboot/internal/diag"
	"github.com/google/elfboot/internal/elfimage"
	"github.com/google/elfboot/internal/flash"
	"github.com/google/elfboot/internal/memmap"
	"github.com/google/elfboot/internal/physmem"
)

// DefaultBankLimit caps the host memory allocated for each simulated RAM bank.
const DefaultBankLimit = 64 << 20

// EmulatorOpts encapsulates the parameters for running the emulator.
type EmulatorOpts struct {
	// Image is the path of a raw flash image to map.
	Image string
	// Ext4Image is the path of a disk image holding an ext4 partition at
	// Ext4Offset; the boot image is read from ImagePath within it.
	Ext4Image  string
	Ext4Offset int64
	ImagePath  string

	// Exactly one of the memory map sources must be set.
	MemMap        string
	DTB           string
	CorebootTable string

	SearchWindow int
	// Class is "32", "64", or empty for the machine's default.
	Class string
	// Machine is a GOARCH style name, or empty for the host's.
	Machine string
	// BankLimit is passed to physmem.NewRAM; zero means DefaultBankLimit.
	BankLimit uint64

	// Hook is called with the entry point of the loaded image. Defaults to
	// ExitHook.
	Hook boot.Hook
}

// ExitHook ends the emulation once control would have been transferred.
func ExitHook(entry uint64) {
	glog.Infof("Reached boot code entry 0x%x, emulation complete", entry)
	glog.Flush()
	os.Exit(0)
}

// Main is the entry point for the emulator. It only returns on failure.
func Main(opts EmulatorOpts) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}
	m, err := memoryMap(opts)
	if err != nil {
		return fmt.Errorf("memory map: %w", err)
	}
	glog.V(1).Infof("Memory map:\n%s", m)

	buf, release, err := image(opts)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	defer func() {
		if err := release(); err != nil {
			glog.Warningf("release image: %v", err)
		}
	}()

	limit := opts.BankLimit
	if limit == 0 {
		limit = DefaultBankLimit
	}
	hook := opts.Hook
	if hook == nil {
		hook = ExitHook
	}
	return boot.Run(m, buf, cfg, physmem.NewRAM(m, limit), hook, diag.Glog{})
}

func buildConfig(opts EmulatorOpts) (elfimage.Config, error) {
	cfg := elfimage.Native()
	if opts.Machine != "" {
		mach, class, err := elfimage.ParseMachine(opts.Machine)
		if err != nil {
			return cfg, err
		}
		cfg.Machine, cfg.Class = mach, class
	}
	switch opts.Class {
	case "":
	case "32":
		cfg.Class = elf.ELFCLASS32
	case "64":
		cfg.Class = elf.ELFCLASS64
	default:
		return cfg, fmt.Errorf("invalid class %q, want 32 or 64", opts.Class)
	}
	if opts.SearchWindow < 0 {
		return cfg, fmt.Errorf("invalid search window %d", opts.SearchWindow)
	}
	if opts.SearchWindow > 0 {
		cfg.SearchWindow = opts.SearchWindow
	}
	return cfg, nil
}

func memoryMap(opts EmulatorOpts) (memmap.Map, error) {
	var parse func([]byte) (memmap.Map, error)
	var path string
	n := 0
	if opts.MemMap != "" {
		path, parse = opts.MemMap, memmap.ParseYAML
		n++
	}
	if opts.DTB != "" {
		path, parse = opts.DTB, memmap.ReadDeviceTree
		n++
	}
	if opts.CorebootTable != "" {
		path, parse = opts.CorebootTable, memmap.ParseCoreboot
		n++
	}
	if n != 1 {
		return nil, errors.New("exactly one of --memmap, --dtb or --coreboot_table must be set")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return parse(b)
}

func image(opts EmulatorOpts) ([]byte, func() error, error) {
	switch {
	case opts.Image != "" && opts.Ext4Image != "":
		return nil, nil, errors.New("only one of --image and --ext4_image may be set")
	case opts.Image != "":
		return flash.Map(opts.Image)
	case opts.Ext4Image != "":
		if opts.ImagePath == "" {
			return nil, nil, errors.New("--ext4_image requires --image_path")
		}
		p, closer, err := flash.OpenPartition(opts.Ext4Image, opts.Ext4Offset)
		if err != nil {
			return nil, nil, err
		}
		defer closer()
		b, err := p.ReadAll(opts.ImagePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %q from %q: %w", opts.ImagePath, opts.Ext4Image, err)
		}
		return b, func() error { return nil }, nil
	}
	return nil, nil, errors.New("one of --image or --ext4_image must be set")
}
