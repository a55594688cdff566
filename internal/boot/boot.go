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

// Package boot is the last stage of the boot sequence: it locates an ELF
// image in a firmware buffer, loads it, and jumps into it.
package boot

import (
	"errors"

	"github.com/google/elfboot/internal/diag"
	"github.com/google/elfboot/internal/elfimage"
	"github.com/google/elfboot/internal/loader"
	"github.com/google/elfboot/internal/memmap"
	"github.com/google/elfboot/internal/physmem"
)

// ErrTransferReturned is returned if a Hook returns instead of diverging.
var ErrTransferReturned = errors.New("transfer hook returned")

// Hook performs the architecture specific transfer of control to entry.
//
// A Hook does not return on success: the running image is replaced, so
// everything which must happen before the jump has to be done before the
// Hook is called.
type Hook func(entry uint64)

// Transfer loads the segments of the located image c from buf into mem and,
// if that succeeds, calls hook with the image entry point.
//
// The entry point is not validated against m; only segment destinations are.
func Transfer(m memmap.Map, buf []byte, c *elfimage.Candidate, mem physmem.Memory, hook Hook, sink diag.Sink) error {
	entry := c.Header.Entry

	if err := loader.Load(m, c.Image(buf), &c.Progs, mem, sink); err != nil {
		return err
	}
	sink.Printf(diag.Spew, "Loaded segments")

	sink.Printf(diag.Debug, "Jumping to boot code at 0x%x", entry)
	sink.PostCode(diag.JumpingToBootCode)

	hook(entry)
	return ErrTransferReturned
}

// Run is the entry point of the boot stage. It scans buf for an image
// header, loads the image and transfers control to it.
//
// Run only returns on failure, after reporting it through sink. It never
// retries nor falls back to another image.
func Run(m memmap.Map, buf []byte, cfg elfimage.Config, mem physmem.Memory, hook Hook, sink diag.Sink) error {
	sink.Printf(diag.Info, "ELF loader started.")
	sink.PostCode(diag.LoaderStarted)

	var c elfimage.Candidate
	err := elfimage.FindInto(buf, cfg, sink, &c)
	if err == nil {
		err = Transfer(m, buf, &c, mem, hook, sink)
	}

	sink.Printf(diag.Error, "Cannot load ELF image: %v", err)
	sink.PostCode(diag.LoaderImageFailed)
	return err
}
