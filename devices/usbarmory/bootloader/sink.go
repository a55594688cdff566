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

//go:build armory

package main

import (
	"fmt"
	"log"

	"github.com/google/elfboot/internal/diag"
	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
)

// consoleSink writes diagnostics to the debug console and shows progress on
// the board LEDs.
type consoleSink struct {
	verbosity diag.Level
}

func (s consoleSink) Printf(level diag.Level, format string, args ...interface{}) {
	if level > s.verbosity {
		return
	}
	log.Printf("elfboot: %s: %s", level, fmt.Sprintf(format, args...))
}

func (s consoleSink) PostCode(code diag.PostCode) {
	log.Printf("elfboot: POST 0x%02x", uint8(code))
	switch code {
	case diag.LoaderStarted:
		usbarmory.LED("blue", true)
	case diag.JumpingToBootCode:
		usbarmory.LED("white", true)
	case diag.LoaderImageFailed:
		usbarmory.LED("white", false)
	}
}
