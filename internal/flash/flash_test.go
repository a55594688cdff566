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

package flash_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/elfboot/internal/flash"
	"github.com/google/elfboot/internal/testonly"
	"github.com/google/go-cmp/cmp"
)

func TestMap(t *testing.T) {
	for _, test := range []struct {
		desc string
		data []byte
	}{
		{desc: "image", data: testonly.Seq(0, 200)},
		{desc: "empty", data: []byte{}},
	} {
		t.Run(test.desc, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "flash.bin")
			if err := os.WriteFile(path, test.data, 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			b, unmap, err := flash.Map(path)
			if err != nil {
				t.Fatalf("Map: %v", err)
			}
			if diff := cmp.Diff(test.data, b); diff != "" {
				t.Errorf("mapped contents diff (-want +got):\n%s", diff)
			}
			if err := unmap(); err != nil {
				t.Errorf("unmap: %v", err)
			}
		})
	}
}

func TestMapMissing(t *testing.T) {
	if _, _, err := flash.Map(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Map of missing file succeeded")
	}
}

func TestPartitionReadSeek(t *testing.T) {
	dev := bytes.NewReader(testonly.Seq(0, 64))
	p := &flash.Partition{Dev: dev, Offset: 16, Size: 32}

	b := make([]byte, 8)
	if n, err := p.Read(b); err != nil || n != 8 {
		t.Fatalf("Read: %d, %v", n, err)
	}
	if diff := cmp.Diff(testonly.Seq(16, 8), b); diff != "" {
		t.Errorf("first read diff (-want +got):\n%s", diff)
	}

	if pos, err := p.Seek(-4, io.SeekEnd); err != nil || pos != 28 {
		t.Fatalf("Seek(-4, SeekEnd) = %d, %v, want 28", pos, err)
	}
	n, err := p.Read(b)
	if err != nil || n != 4 {
		t.Fatalf("Read at end: %d, %v, want 4 bytes", n, err)
	}
	if diff := cmp.Diff(testonly.Seq(44, 4), b[:n]); diff != "" {
		t.Errorf("tail read diff (-want +got):\n%s", diff)
	}
	if _, err := p.Read(b); err != io.EOF {
		t.Errorf("Read past end: %v, want io.EOF", err)
	}

	for _, test := range []struct {
		off    int64
		whence int
	}{
		{off: -1, whence: io.SeekStart},
		{off: 33, whence: io.SeekStart},
		{off: 1, whence: io.SeekEnd},
		{off: 0, whence: 42},
	} {
		if _, err := p.Seek(test.off, test.whence); err == nil {
			t.Errorf("Seek(%d, %d) succeeded", test.off, test.whence)
		}
	}
}

func TestReadAll(t *testing.T) {
	p, closer, err := flash.OpenPartition(filepath.Join("testdata", "boot.ext4"), 0)
	if err != nil {
		t.Fatalf("OpenPartition: %v", err)
	}
	defer closer()

	for _, test := range []struct {
		path    string
		want    string
		wantErr error
	}{
		{path: "/boot/image.elf", want: "ELFBOOT-TEST-PAYLOAD\n"},
		{path: "boot/image.elf", want: "ELFBOOT-TEST-PAYLOAD\n"},
		{path: "/image.elf", want: "decoy\n"},
		{path: "/etc/motd", want: "other\n"},
		{path: "/boot/missing.elf", wantErr: flash.ErrNotFound},
		{path: "/missing/image.elf", wantErr: flash.ErrNotFound},
	} {
		t.Run(test.path, func(t *testing.T) {
			got, err := p.ReadAll(test.path)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("ReadAll: %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if diff := cmp.Diff(test.want, string(got)); diff != "" {
				t.Errorf("contents diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadAllAtPartitionOffset(t *testing.T) {
	fs, err := os.ReadFile(filepath.Join("testdata", "boot.ext4"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	const offset = 1 << 20
	disk := append(testonly.Seq(0, offset), fs...)
	p := &flash.Partition{Dev: bytes.NewReader(disk), Offset: offset, Size: int64(len(fs))}

	got, err := p.ReadAll("/boot/image.elf")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff("ELFBOOT-TEST-PAYLOAD\n", string(got)); diff != "" {
		t.Errorf("contents diff (-want +got):\n%s", diff)
	}
}

func TestReadAllNotExt4(t *testing.T) {
	p := &flash.Partition{Dev: bytes.NewReader(make([]byte, 64*1024)), Size: 64 * 1024}
	if _, err := p.ReadAll("/boot/image.elf"); err == nil {
		t.Error("ReadAll on a zeroed partition succeeded")
	}
}

func TestOpenPartition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, testonly.Seq(0, 100), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, closer, err := flash.OpenPartition(path, 40)
	if err != nil {
		t.Fatalf("OpenPartition: %v", err)
	}
	defer closer()
	if p.Size != 60 {
		t.Errorf("Size = %d, want 60", p.Size)
	}
	b, err := io.ReadAll(p)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff(testonly.Seq(40, 60), b); diff != "" {
		t.Errorf("partition contents diff (-want +got):\n%s", diff)
	}

	if _, _, err := flash.OpenPartition(path, 101); err == nil {
		t.Error("OpenPartition beyond end of file succeeded")
	}
}
