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

// Package diag provides the diagnostic sink used by the boot stage.
//
// The sink carries two things: severity-leveled operator messages, and the
// out-of-band POST (power-on self test) status code which platforms usually
// latch onto a debug port or an LED pattern.
package diag

import (
	"fmt"

	"github.com/golang/glog"
)

// Level is the severity of a diagnostic message.
type Level int

const (
	// Error is for failures the operator needs to see.
	Error Level = iota
	// Warning is for suspicious but non-fatal conditions.
	Warning
	// Info marks the major steps of the boot stage.
	Info
	// Debug describes individual segments and decisions.
	Debug
	// Spew is per-iteration noise, e.g. every scanned offset.
	Spew
)

func (l Level) String() string {
	switch l {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	case Spew:
		return "SPEW"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// PostCode is a boot status code posted out-of-band.
type PostCode uint8

// POST codes emitted by the ELF boot stage.
const (
	LoaderStarted     PostCode = 0xf8
	LoaderImageFailed PostCode = 0xf9
	JumpingToBootCode PostCode = 0xfe
)

// Sink receives diagnostics from the boot stage.
type Sink interface {
	// Printf emits a message at the given severity.
	Printf(level Level, format string, args ...interface{})
	// PostCode posts a boot status code.
	PostCode(code PostCode)
}

// Glog is a Sink which writes everything to glog.
//
// Debug and Spew messages are only emitted with --v=1 and --v=2 respectively.
type Glog struct{}

var _ Sink = Glog{}

// Printf implements Sink.
func (Glog) Printf(level Level, format string, args ...interface{}) {
	switch level {
	case Error:
		glog.ErrorDepth(1, fmt.Sprintf(format, args...))
	case Warning:
		glog.WarningDepth(1, fmt.Sprintf(format, args...))
	case Info:
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	case Debug:
		if glog.V(1) {
			glog.InfoDepth(1, fmt.Sprintf(format, args...))
		}
	default:
		if glog.V(2) {
			glog.InfoDepth(1, fmt.Sprintf(format, args...))
		}
	}
}

// PostCode implements Sink.
func (Glog) PostCode(code PostCode) {
	glog.Infof("POST 0x%02x", uint8(code))
}
