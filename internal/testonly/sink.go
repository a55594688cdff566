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

// Package testonly contains helpers for tests of the boot stage.
package testonly

import (
	"fmt"
	"strings"

	"github.com/google/elfboot/internal/diag"
)

// Message is a diagnostic captured by Sink.
type Message struct {
	Level diag.Level
	Text  string
}

// Sink is a diag.Sink which records everything it is given.
type Sink struct {
	Messages []Message
	Codes    []diag.PostCode
}

var _ diag.Sink = &Sink{}

// Printf implements diag.Sink.
func (s *Sink) Printf(level diag.Level, format string, args ...interface{}) {
	s.Messages = append(s.Messages, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

// PostCode implements diag.Sink.
func (s *Sink) PostCode(code diag.PostCode) {
	s.Codes = append(s.Codes, code)
}

// At returns the text of all messages recorded at the given level.
func (s *Sink) At(level diag.Level) []string {
	var r []string
	for _, m := range s.Messages {
		if m.Level == level {
			r = append(r, m.Text)
		}
	}
	return r
}

// Contains returns true if any recorded message contains substr.
func (s *Sink) Contains(substr string) bool {
	for _, m := range s.Messages {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}
