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

// Package flash reads boot images from the storage the boot stage is
// handed: a memory mapped flash dump, or a file on an ext4 partition.
package flash

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsoprea/go-ext4"
)

// ErrNotFound is returned by Partition.ReadAll when the path does not exist.
var ErrNotFound = errors.New("file not found")

// Partition is an ext4 filesystem stored at Offset of Dev, Size bytes long.
type Partition struct {
	Dev    io.ReaderAt
	Offset int64
	Size   int64

	pos int64
}

// OpenPartition opens the ext4 filesystem starting at offset of the disk
// image or block device at path. The partition extends to the end of it.
//
// The returned function closes the underlying file.
func OpenPartition(path string, offset int64) (*Partition, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to size %q: %w", path, err)
	}
	if offset < 0 || offset > size {
		f.Close()
		return nil, nil, fmt.Errorf("partition offset %d outside %q (%d bytes)", offset, path, size)
	}
	return &Partition{Dev: f, Offset: offset, Size: size - offset}, f.Close, nil
}

func (p *Partition) blockGroupDescriptor(inode int) (*ext4.BlockGroupDescriptor, error) {
	if _, err := p.Seek(ext4.Superblock0Offset, io.SeekStart); err != nil {
		return nil, err
	}
	sb, err := ext4.NewSuperblockWithReader(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read superblock: %w", err)
	}
	bgdl, err := ext4.NewBlockGroupDescriptorListWithReadSeeker(p, sb)
	if err != nil {
		return nil, fmt.Errorf("failed to read block group descriptors: %w", err)
	}
	return bgdl.GetWithAbsoluteInode(inode)
}

// Read implements io.Reader, never reading past the end of the partition.
func (p *Partition) Read(b []byte) (int, error) {
	if p.pos >= p.Size {
		return 0, io.EOF
	}
	if rem := p.Size - p.pos; int64(len(b)) > rem {
		b = b[:rem]
	}
	n, err := p.Dev.ReadAt(b, p.Offset+p.pos)
	p.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// Seek implements io.Seeker. Offsets are relative to the partition start.
func (p *Partition) Seek(offset int64, whence int) (int64, error) {
	pos := p.pos
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos += offset
	case io.SeekEnd:
		pos = p.Size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 || pos > p.Size {
		return 0, fmt.Errorf("invalid offset %d (%d)", pos, offset)
	}
	p.pos = pos
	return pos, nil
}

// ReadAll returns the contents of the file at fullPath.
func (p *Partition) ReadAll(fullPath string) ([]byte, error) {
	path := strings.Split(strings.TrimPrefix(fullPath, "/"), "/")

	bgd, err := p.blockGroupDescriptor(ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}
	dw, err := ext4.NewDirectoryWalk(p, bgd, ext4.InodeRootDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory: %w", err)
	}

	var i, inodeNumber int
	for {
		name, de, err := dw.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if name != path[i] {
			continue
		}

		deInode := int(de.Data().Inode)
		if bgd, err = p.blockGroupDescriptor(deInode); err != nil {
			return nil, err
		}
		if i == len(path)-1 {
			inodeNumber = deInode
			break
		}
		if dw, err = ext4.NewDirectoryWalk(p, bgd, deInode); err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", strings.Join(path[:i+1], "/"), err)
		}
		i++
	}
	if inodeNumber == 0 {
		return nil, fmt.Errorf("%q: %w", fullPath, ErrNotFound)
	}

	inode, err := ext4.NewInodeWithReadSeeker(bgd, p, inodeNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to read inode %d: %w", inodeNumber, err)
	}
	en := ext4.NewExtentNavigatorWithReadSeeker(p, inode)
	return io.ReadAll(ext4.NewInodeReader(en))
}
