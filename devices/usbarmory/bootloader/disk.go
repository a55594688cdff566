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
	"fmt"
	"io"

	"github.com/google/elfboot/internal/flash"
	"github.com/usbarmory/tamago/soc/nxp/usdhc"
)

// card exposes a uSD/eMMC card as an io.ReaderAt over whole blocks.
type card struct {
	*usdhc.USDHC
}

func (c card) size() int64 {
	info := c.Info()
	return int64(info.Blocks) * int64(info.BlockSize)
}

func (c card) ReadAt(p []byte, off int64) (int, error) {
	bs := int64(c.Info().BlockSize)
	if off < 0 || off >= c.size() {
		return 0, io.EOF
	}
	first := off / bs
	end := off + int64(len(p))
	if end > c.size() {
		end = c.size()
	}
	last := (end + bs - 1) / bs
	buf := make([]byte, (last-first)*bs)
	if err := c.ReadBlocks(int(first), buf); err != nil {
		return 0, fmt.Errorf("failed to read blocks %d-%d: %w", first, last, err)
	}
	n := copy(p, buf[off-first*bs:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// partition returns the ext4 filesystem at offset of the card.
func partition(c *usdhc.USDHC, offset int64) (*flash.Partition, error) {
	d := card{c}
	if offset < 0 || offset >= d.size() {
		return nil, fmt.Errorf("partition offset %d outside card", offset)
	}
	return &flash.Partition{Dev: d, Offset: offset, Size: d.size() - offset}, nil
}
