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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML description of a memory map, e.g.
//
//	regions:
//	  - start: 0x80000000
//	    length: 0x10000000
//	    kind: ram
type Config struct {
	Regions []RegionConfig `yaml:"regions"`
}

// RegionConfig is a single region of a Config.
type RegionConfig struct {
	Start  uint64 `yaml:"start"`
	Length uint64 `yaml:"length"`
	Kind   string `yaml:"kind"`
}

// ParseYAML decodes a YAML memory map description.
func ParseYAML(b []byte) (Map, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse memory map: %w", err)
	}
	if len(c.Regions) == 0 {
		return nil, fmt.Errorf("memory map has no regions")
	}
	m := make(Map, 0, len(c.Regions))
	for i, rc := range c.Regions {
		k, err := ParseKind(rc.Kind)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		m = append(m, Region{Start: rc.Start, Length: rc.Length, Kind: k})
	}
	return m, nil
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ram":
		return RAM, nil
	case "reserved":
		return Reserved, nil
	case "other":
		return Other, nil
	}
	return 0, fmt.Errorf("unknown region kind %q", s)
}
