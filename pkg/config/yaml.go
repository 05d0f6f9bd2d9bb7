// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

// fileConfig is the on-disk YAML shape for batch/reproducible runs (§3
// Ambient Stack, §6 initial_rows). It mirrors Config field-for-field but
// keeps the rule and symmetry in their human-readable textual forms, the
// same notation the interactive front end and readRule/readParams accept,
// rather than requiring a caller to know the internal bitmap/enum
// encoding.
type fileConfig struct {
	Rule             string     `yaml:"rule"`
	Period           int        `yaml:"period"`
	Symmetry         string     `yaml:"symmetry"`
	AllowRowSym      bool       `yaml:"allow_row_symmetry"`
	RotorWidth       int        `yaml:"rotor_width"`
	LeftStatorWidth  int        `yaml:"left_stator_width"`
	RightStatorWidth int        `yaml:"right_stator_width"`
	ZeroLotLine      bool       `yaml:"zero_lot_line"`
	MaxDeepen        int        `yaml:"max_deepen"`
	SparkLevel       int        `yaml:"spark_level"`
	InitialRows      [][]uint32 `yaml:"initial_rows"`
	Hashing          bool       `yaml:"hashing"`
	Seed             int64      `yaml:"seed"`

	QueueCapacity     int `yaml:"queue_capacity"`
	HashSize          int `yaml:"hash_size"`
	RowBufferCapacity int `yaml:"row_buffer_capacity"`
	CompatCapacity    int `yaml:"compat_capacity"`
}

// LoadFile reads a YAML batch-configuration file (§3/§6, the `--config`
// flag) into a fully-populated Config. The returned Config has not been
// passed through Validate; callers must still do that themselves.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	rule, err := ParseRuleText(fc.Rule)
	if err != nil {
		return Config{}, err
	}

	symmetry, err := automaton.ParseSymmetry(fc.Symmetry)
	if err != nil {
		return Config{}, err
	}

	initialRows := make([][]automaton.Row, len(fc.InitialRows))
	for i, phaseRows := range fc.InitialRows {
		rows := make([]automaton.Row, len(phaseRows))
		for j, r := range phaseRows {
			rows[j] = automaton.Row(r)
		}

		initialRows[i] = rows
	}

	return Config{
		Rule:              rule,
		Period:            fc.Period,
		Symmetry:          symmetry,
		AllowRowSym:       fc.AllowRowSym,
		RotorWidth:        fc.RotorWidth,
		LeftStatorWidth:   fc.LeftStatorWidth,
		RightStatorWidth:  fc.RightStatorWidth,
		ZeroLotLine:       fc.ZeroLotLine,
		MaxDeepen:         fc.MaxDeepen,
		SparkLevel:        fc.SparkLevel,
		InitialRows:       initialRows,
		Hashing:           fc.Hashing,
		Seed:              fc.Seed,
		QueueCapacity:     fc.QueueCapacity,
		HashSize:          fc.HashSize,
		RowBufferCapacity: fc.RowBufferCapacity,
		CompatCapacity:    fc.CompatCapacity,
	}, nil
}
