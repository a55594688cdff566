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

// elfboot_emu runs the ELF boot stage on the host against simulated RAM.
//
// The firmware image is mapped from a file (or read from an ext4 disk image)
// and scanned for an ELF executable, whose segments are loaded into RAM
// banks laid out according to the platform memory map. Emulation ends when
// control would be transferred to the loaded image.
//
// Usage:
//   go run ./cmd/elfboot_emu --logtostderr --image=/tmp/coreboot.rom --memmap=/tmp/memmap.yaml
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/google/elfboot/cmd/elfboot_emu/impl"
)

var (
	image        = flag.String("image", "", "Path of a raw flash image to boot from")
	ext4Image    = flag.String("ext4_image", "", "Path of a disk image holding an ext4 partition to boot from")
	ext4Offset   = flag.Int64("ext4_offset", 0, "Byte offset of the ext4 partition within --ext4_image")
	imagePath    = flag.String("image_path", "/boot/image.elf", "Path of the boot image within the ext4 partition")
	memMap       = flag.String("memmap", "", "Path of a YAML memory map")
	dtb          = flag.String("dtb", "", "Path of a device tree blob describing memory")
	corebootTbl  = flag.String("coreboot_table", "", "Path of a coreboot lb_memory table")
	searchWindow = flag.Int("search_window", 0, "Bytes of the image scanned for an ELF header, 0 for the default")
	class        = flag.String("class", "", "ELF class to accept: 32 or 64; empty for the machine default")
	machine      = flag.String("machine", "", "Machine to accept, e.g. amd64 or arm64; empty for the host")
	bankLimit    = flag.Uint64("bank_limit", impl.DefaultBankLimit, "Maximum host memory allocated per simulated RAM bank")
)

func main() {
	flag.Parse()

	opts := impl.EmulatorOpts{
		Image:         *image,
		Ext4Image:     *ext4Image,
		Ext4Offset:    *ext4Offset,
		ImagePath:     *imagePath,
		MemMap:        *memMap,
		DTB:           *dtb,
		CorebootTable: *corebootTbl,
		SearchWindow:  *searchWindow,
		Class:         *class,
		Machine:       *machine,
		BankLimit:     *bankLimit,
	}
	if err := impl.Main(opts); err != nil {
		glog.Exitf("elfboot: %v", err)
	}
}
