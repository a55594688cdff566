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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/u-root/u-root/pkg/dt"
)

// Defaults from the devicetree specification when a parent node does not
// carry #address-cells / #size-cells.
const (
	defaultAddressCells = 2
	defaultSizeCells    = 1
)

// ReadDeviceTree parses a flattened device tree blob and returns its memory map.
func ReadDeviceTree(dtb []byte) (Map, error) {
	fdt, err := dt.ReadFDT(bytes.NewReader(dtb))
	if err != nil {
		return nil, fmt.Errorf("failed to read FDT: %w", err)
	}
	return FromDeviceTree(fdt)
}

// FromDeviceTree builds a Map from the /memory and /reserved-memory nodes of
// a device tree.
//
// Every reg entry of a memory node becomes a RAM region, every reg entry
// below /reserved-memory becomes a Reserved region. Reserved regions are
// listed after the RAM they carve from, they do not shrink it.
func FromDeviceTree(fdt *dt.FDT) (Map, error) {
	if fdt == nil || fdt.RootNode == nil {
		return nil, errors.New("device tree has no root node")
	}
	root := fdt.RootNode
	ac, sc, err := cells(root, defaultAddressCells, defaultSizeCells)
	if err != nil {
		return nil, fmt.Errorf("root node: %w", err)
	}

	var m Map
	for _, node := range root.Children {
		switch {
		case isMemoryNode(node):
			rs, err := regions(node, ac, sc, RAM)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", node.Name, err)
			}
			m = append(m, rs...)
		case node.Name == "reserved-memory":
			rac, rsc, err := cells(node, ac, sc)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", node.Name, err)
			}
			for _, child := range node.Children {
				rs, err := regions(child, rac, rsc, Reserved)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", child.Name, err)
				}
				m = append(m, rs...)
			}
		}
	}
	if len(m) == 0 {
		return nil, errors.New("device tree describes no memory")
	}
	return m, nil
}

func isMemoryNode(n *dt.Node) bool {
	if n.Name == "memory" || strings.HasPrefix(n.Name, "memory@") {
		return true
	}
	p, ok := property(n, "device_type")
	return ok && string(bytes.TrimRight(p, "\x00")) == "memory"
}

func property(n *dt.Node, name string) ([]byte, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// cells returns the #address-cells and #size-cells n declares for its
// children, falling back to the given values.
func cells(n *dt.Node, ac, sc uint32) (uint32, uint32, error) {
	for _, c := range []struct {
		name string
		v    *uint32
	}{
		{"#address-cells", &ac},
		{"#size-cells", &sc},
	} {
		p, ok := property(n, c.name)
		if !ok {
			continue
		}
		if len(p) != 4 {
			return 0, 0, fmt.Errorf("%s has %d bytes, want 4", c.name, len(p))
		}
		*c.v = binary.BigEndian.Uint32(p)
	}
	if ac == 0 || ac > 2 || sc > 2 {
		return 0, 0, fmt.Errorf("unsupported cell sizes address=%d size=%d", ac, sc)
	}
	return ac, sc, nil
}

func regions(n *dt.Node, ac, sc uint32, kind Kind) ([]Region, error) {
	reg, ok := property(n, "reg")
	if !ok {
		return nil, nil
	}
	entry := int(ac+sc) * 4
	if len(reg)%entry != 0 {
		return nil, fmt.Errorf("reg has %d bytes, not a multiple of %d", len(reg), entry)
	}
	var rs []Region
	for ; len(reg) > 0; reg = reg[entry:] {
		rs = append(rs, Region{
			Start:  readCells(reg, ac),
			Length: readCells(reg[ac*4:], sc),
			Kind:   kind,
		})
	}
	return rs, nil
}

func readCells(b []byte, n uint32) uint64 {
	var v uint64
	for i := uint32(0); i < n; i++ {
		v = v<<32 | uint64(binary.BigEndian.Uint32(b[i*4:]))
	}
	return v
}
