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

// Package config is the "parameter intake" front-end collaborator: it
// assembles and validates a fully-populated Config record, independent of
// how that record was sourced (cobra flags, a YAML file, or the interactive
// prompt in pkg/cmd).
package config

import (
	"fmt"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

// MaxPeriod is the largest period this engine supports.
const MaxPeriod = 19

// MaxWidth is the largest total pattern width (rotor + both stators).
const MaxWidth = 32

// Default resource budgets. The spec's memory budgets (queue capacity
// 2^31, dedup hash 2^21, row buffer 2^20, compat+reach 2^21 combined) size
// a production search; these defaults are scaled down for a usable
// out-of-the-box footprint and are independently overridable.
const (
	DefaultQueueCapacity     = 1 << 20
	DefaultHashSize          = 1 << 18
	DefaultRowBufferCapacity = 1 << 16
	DefaultCompatCapacity    = 1 << 18
)

// DefaultSeed is used for the dedup hash salts when Config.Seed is zero,
// resolving the open question over random()'s lack of seeding in favor of
// reproducible runs (see SPEC_FULL.md's "Hash salt reproducibility").
const DefaultSeed int64 = 0x6c69666573756d

// Config is the fully-populated configuration record the search engine
// consumes (§6 External Interfaces). It carries no behavior of its own
// beyond Validate.
type Config struct {
	// Rule is the 18-bit outer-totalistic rule bitmap: bits 9..17 are the
	// birth counts 0..8, bits 0..8 are the survival counts 0..8.
	Rule uint32
	// Period is the number of generations the sought pattern must repeat
	// after, 1..MaxPeriod.
	Period int
	// Symmetry constrains every row of the pattern to be palindromic (or
	// not).
	Symmetry automaton.Symmetry
	// AllowRowSym enables the early symmetric-completion shortcut in the
	// terminator.
	AllowRowSym bool
	// RotorWidth, LeftStatorWidth, RightStatorWidth partition the total
	// pattern width. When Symmetry != SymmetryNone, LeftStatorWidth must be
	// zero and RightStatorWidth is the per-side stator width.
	RotorWidth       int
	LeftStatorWidth  int
	RightStatorWidth int
	// ZeroLotLine disables the extra-stator-columns slack in termination.
	ZeroLotLine bool
	// MaxDeepen bounds how far iterative deepening will search before the
	// driver shrinks the rotor width; zero means unbounded.
	MaxDeepen int
	// SparkLevel is 0, 1, or 2: the number of "spark" rows above the
	// bounding box that may be present or absent without affecting
	// correctness.
	SparkLevel int
	// InitialRows supplies 0, 1, or 2 pre-specified parent rows per phase,
	// oldest (nearest the root) first. Each entry has exactly Period rows.
	InitialRows [][]automaton.Row
	// Hashing enables dedup-hash based duplicate state elimination.
	Hashing bool
	// Seed seeds the dedup hash salt tables. Zero selects DefaultSeed.
	Seed int64

	// QueueCapacity, HashSize, RowBufferCapacity and CompatCapacity are the
	// resource knobs of §5; zero selects the package defaults.
	QueueCapacity     int
	HashSize          int
	RowBufferCapacity int
	CompatCapacity    int
}

// TotalWidth is the sum of rotor and both stator widths.
func (c Config) TotalWidth() int {
	return c.RotorWidth + c.LeftStatorWidth + c.RightStatorWidth
}

// StatMask is the bitmask of columns considered stator: the left-stator
// bits (low bits) and the right-stator bits (high bits), matching ofind.c's
// STATMASK macro.
func (c Config) StatMask() uint32 {
	left := uint32(1)<<uint(c.LeftStatorWidth) - 1
	right := (uint32(1)<<uint(c.RightStatorWidth) - 1) << uint(c.RotorWidth+c.LeftStatorWidth)
	return left | right
}

// Default returns a Config with Conway's Life (B3/S23), period 5, a rotor
// width of 4, even symmetry, row-symmetry completion and hashing enabled,
// and the package's default resource
// budgets -- ofind.c's own compiled-in defaults.
func Default() Config {
	return Config{
		Rule:             4108, // 010014 octal: B3/S23, Conway's Life
		Period:           5,
		Symmetry:         automaton.SymmetryEven,
		AllowRowSym:      true,
		RotorWidth:       4,
		LeftStatorWidth:  0,
		RightStatorWidth: 0,
		Hashing:          true,
	}
}

// Validate checks the configuration for internal consistency, applying the
// symmetry-dependent forcing rules from §6 and §8 (left stator forced to
// zero whenever symmetry is not none, and whenever period is 1).
func (c *Config) Validate() error {
	if c.Period < 1 || c.Period > MaxPeriod {
		return fmt.Errorf("period must be an integer in the range 1..%d, got %d", MaxPeriod, c.Period)
	}

	if c.Symmetry != automaton.SymmetryNone || c.Period == 1 {
		c.LeftStatorWidth = 0
	}

	if c.RotorWidth < 0 || c.LeftStatorWidth < 0 || c.RightStatorWidth < 0 {
		return fmt.Errorf("widths must be non-negative")
	}

	if c.TotalWidth() > MaxWidth {
		return fmt.Errorf("total width must be in the range 0..%d, got %d", MaxWidth, c.TotalWidth())
	}

	if c.SparkLevel < 0 || c.SparkLevel > 2 {
		return fmt.Errorf("spark level must be 0, 1, or 2, got %d", c.SparkLevel)
	}

	if len(c.InitialRows) > 2 {
		return fmt.Errorf("at most 2 initial rows may be specified, got %d", len(c.InitialRows))
	}

	for i, rows := range c.InitialRows {
		if len(rows) != c.Period {
			return fmt.Errorf("initial row %d: expected %d phases, got %d", i, c.Period, len(rows))
		}
	}

	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}

	if c.HashSize <= 0 {
		c.HashSize = DefaultHashSize
	}

	if c.RowBufferCapacity <= 0 {
		c.RowBufferCapacity = DefaultRowBufferCapacity
	}

	if c.CompatCapacity <= 0 {
		c.CompatCapacity = DefaultCompatCapacity
	}

	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}

	return nil
}
