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

package loader_test

import (
	"bytes"
	"debug/elf"
	"errors"
	"testing"

	"github.com/google/elfboot/internal/diag"
	"github.com/google/elfboot/internal/elfimage"
	"github.com/google/elfboot/internal/loader"
	"github.com/google/elfboot/internal/memmap"
	"github.com/google/elfboot/internal/physmem"
	"github.com/google/elfboot/internal/testonly"
	"github.com/google/go-cmp/cmp"
)

var (
	cfg = elfimage.Config{
		Class:   elf.ELFCLASS64,
		Data:    elf.ELFDATA2LSB,
		Machine: elf.EM_X86_64,
	}
	ramMap = memmap.Map{
		{Start: 0x1000, Length: 0x1000, Kind: memmap.RAM},
		{Start: 0x4000, Length: 0x1000, Kind: memmap.Reserved},
	}
)

// countingMemory wraps physmem.RAM, counting the calls made to it.
type countingMemory struct {
	*physmem.RAM
	writes, zeros int
}

func (c *countingMemory) Write(addr uint64, b []byte) error {
	c.writes++
	return c.RAM.Write(addr, b)
}

func (c *countingMemory) Zero(addr, n uint64) error {
	c.zeros++
	return c.RAM.Zero(addr, n)
}

func newMemory(t *testing.T) *countingMemory {
	t.Helper()
	r := physmem.NewRAM(ramMap, 0)
	// Poison memory so that zero-fill is observable.
	r.Fill(0xff)
	return &countingMemory{RAM: r}
}

func mustRead(t *testing.T, m *countingMemory, addr, n uint64) []byte {
	t.Helper()
	b, err := m.Read(addr, n)
	if err != nil {
		t.Fatalf("Read(0x%x, %d): %v", addr, n, err)
	}
	return b
}

func table(t *testing.T, img []byte) *elfimage.Table {
	t.Helper()
	h, err := elfimage.DecodeHeader(img, cfg)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	tbl := &elfimage.Table{}
	if err := elfimage.DecodeProgs(img, h, cfg, tbl); err != nil {
		t.Fatalf("DecodeProgs: %v", err)
	}
	return tbl
}

func TestLoadCopiesAndZeroFills(t *testing.T) {
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1000, Data: testonly.Seq(1, 10), Memsz: 20},
		},
	}.Bytes()
	mem := newMemory(t)

	if err := loader.Load(ramMap, img, table(t, img), mem, &testonly.Sink{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := mustRead(t, mem, 0x1000, 21)
	want := append(append(testonly.Seq(1, 10), make([]byte, 10)...), 0xff)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("memory diff (-want +got):\n%s", diff)
	}
}

func TestLoadNoBSS(t *testing.T) {
	data := testonly.Seq(0x40, 32)
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1800, Data: data, Memsz: 32},
		},
	}.Bytes()
	mem := newMemory(t)

	if err := loader.Load(ramMap, img, table(t, img), mem, &testonly.Sink{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := mustRead(t, mem, 0x1800, 32); !bytes.Equal(got, data) {
		t.Errorf("memory = %x, want %x", got, data)
	}
	if mem.zeros != 0 {
		t.Errorf("Zero called %d times, want 0", mem.zeros)
	}
	if got := mustRead(t, mem, 0x1820, 1); got[0] != 0xff {
		t.Errorf("byte after segment = 0x%x, want untouched 0xff", got[0])
	}
}

func TestLoadPartialApply(t *testing.T) {
	first := testonly.Seq(1, 16)
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1000, Data: first, Memsz: 16},
			{Type: elf.PT_LOAD, Paddr: 0x4000, Data: testonly.Seq(1, 16), Memsz: 16},
			{Type: elf.PT_LOAD, Paddr: 0x1100, Data: testonly.Seq(1, 16), Memsz: 16},
		},
	}.Bytes()
	mem := newMemory(t)
	s := &testonly.Sink{}

	err := loader.Load(ramMap, img, table(t, img), mem, s)
	if !errors.Is(err, loader.ErrSegmentRejected) {
		t.Fatalf("Load: %v, want %v", err, loader.ErrSegmentRejected)
	}
	var re *loader.RejectedError
	if !errors.As(err, &re) {
		t.Fatalf("Load: %v is not a *RejectedError", err)
	}
	if diff := cmp.Diff(&loader.RejectedError{Index: 1, Start: 0x4000, Length: 16}, re); diff != "" {
		t.Errorf("RejectedError diff (-want +got):\n%s", diff)
	}

	if got := mustRead(t, mem, 0x1000, 16); !bytes.Equal(got, first) {
		t.Errorf("first segment = %x, want %x (no rollback)", got, first)
	}
	if got := mustRead(t, mem, 0x1100, 16); !bytes.Equal(got, bytes.Repeat([]byte{0xff}, 16)) {
		t.Errorf("third segment = %x, want untouched memory", got)
	}
	if mem.writes != 1 {
		t.Errorf("Write called %d times, want 1", mem.writes)
	}
	if !s.Contains("No matching RAM area found") {
		t.Error("rejection did not dump the region table")
	}
}

func TestLoadSkipsSegments(t *testing.T) {
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			// Would be rejected if it were not skipped.
			{Type: elf.PT_NOTE, Paddr: 0x4000, Data: []byte("note"), Memsz: 4},
			{Type: elf.PT_LOAD, Paddr: 0x4000, Memsz: 0},
			{Type: elf.PT_LOAD, Paddr: 0x1000, Data: []byte{7}, Memsz: 1},
		},
	}.Bytes()
	mem := newMemory(t)
	s := &testonly.Sink{}

	if err := loader.Load(ramMap, img, table(t, img), mem, s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mem.writes != 1 {
		t.Errorf("Write called %d times, want 1", mem.writes)
	}
	for _, want := range []string{"Dropping non PT_LOAD segment", "Dropping empty segment"} {
		if !s.Contains(want) {
			t.Errorf("missing %q diagnostic", want)
		}
	}
}

func TestLoadClampsFileSize(t *testing.T) {
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1000, Data: testonly.Seq(1, 20), Memsz: 8},
		},
	}.Bytes()
	mem := newMemory(t)

	if err := loader.Load(ramMap, img, table(t, img), mem, &testonly.Sink{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := append(testonly.Seq(1, 8), 0xff)
	if diff := cmp.Diff(want, mustRead(t, mem, 0x1000, 9)); diff != "" {
		t.Errorf("memory diff (-want +got):\n%s", diff)
	}
	if mem.zeros != 0 {
		t.Errorf("Zero called %d times, want 0", mem.zeros)
	}
}

func TestLoadTruncatedSegment(t *testing.T) {
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1000, Data: testonly.Seq(1, 8), Memsz: 8},
		},
	}.Bytes()
	tbl := table(t, img)
	tbl.Progs()[0].Off = uint64(len(img)) - 4

	err := loader.Load(ramMap, img, tbl, newMemory(t), &testonly.Sink{})
	if !errors.Is(err, loader.ErrSegmentTruncated) {
		t.Errorf("Load: %v, want %v", err, loader.ErrSegmentTruncated)
	}
}

func TestLoadStraddlingSegmentFaults(t *testing.T) {
	// The memory map accepts a range which merely overlaps RAM, so the
	// write past the end of the bank is caught by the memory itself.
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1ff0, Data: testonly.Seq(1, 32), Memsz: 32},
		},
	}.Bytes()
	s := &testonly.Sink{}

	err := loader.Load(ramMap, img, table(t, img), newMemory(t), s)
	if !errors.Is(err, physmem.ErrBusFault) {
		t.Errorf("Load: %v, want %v", err, physmem.ErrBusFault)
	}
	if len(s.At(diag.Error)) != 0 {
		t.Errorf("straddling range was reported as rejected: %v", s.At(diag.Error))
	}
}

func TestLoadLandsInMappedMemory(t *testing.T) {
	buf := make([]byte, 0x1000)
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1010, Data: testonly.Seq(1, 8), Memsz: 8},
		},
	}.Bytes()

	if err := loader.Load(ramMap, img, table(t, img), physmem.Mapped(0x1000, buf), &testonly.Sink{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(testonly.Seq(1, 8), buf[0x10:0x18]); diff != "" {
		t.Errorf("mapped memory diff (-want +got):\n%s", diff)
	}
}

func TestLoadOffsetsRelativeToHeader(t *testing.T) {
	data := testonly.Seq(0x21, 8)
	img := testonly.Image{
		Machine: elf.EM_X86_64,
		Segments: []testonly.Segment{
			{Type: elf.PT_LOAD, Paddr: 0x1000, Data: data, Memsz: 8},
		},
	}.Bytes()
	buf := testonly.Embed(img, 48, 1024)
	c, err := elfimage.Find(buf, cfg, &testonly.Sink{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	mem := newMemory(t)

	if err := loader.Load(ramMap, c.Image(buf), &c.Progs, mem, &testonly.Sink{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(data, mustRead(t, mem, 0x1000, 8)); diff != "" {
		t.Errorf("memory diff (-want +got):\n%s", diff)
	}
}
