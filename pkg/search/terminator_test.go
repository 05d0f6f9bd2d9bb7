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
package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

// conwayLife is B3/S23 encoded per §6: rule>>9 is the birth mask, rule&0x1ff
// is the survival mask.
const conwayLife uint32 = 4108

func rowsOf(vals ...uint32) []automaton.Row {
	rows := make([]automaton.Row, len(vals))
	for i, v := range vals {
		rows[i] = automaton.Row(v)
	}

	return rows
}

// TestAperiodic_P1DegeneratesToNonempty covers the §8 boundary case: for
// period 1, "aperiodic" means simply "not the empty still life".
func TestAperiodic_P1DegeneratesToNonempty(t *testing.T) {
	assert.False(t, Aperiodic(rowsOf(0)))
	assert.True(t, Aperiodic(rowsOf(1)))
	assert.True(t, Aperiodic(rowsOf(0xf0f0)))
}

func TestAperiodic_FullPeriodSequenceIsAperiodic(t *testing.T) {
	// No row repeats, so the fundamental period is exactly len(rows).
	assert.True(t, Aperiodic(rowsOf(1, 2, 3, 4, 5)))
}

func TestAperiodic_RejectsProperSubPeriod(t *testing.T) {
	// Row sequence [1,2,1,2] has fundamental period 2, a proper divisor of 4.
	assert.False(t, Aperiodic(rowsOf(1, 2, 1, 2)))

	// Row sequence [1,1,1] has fundamental period 1, a proper divisor of 3.
	assert.False(t, Aperiodic(rowsOf(1, 1, 1)))
}

func TestAperiodic_NonDivisorSubPeriodIsStillAperiodic(t *testing.T) {
	// [1,2,1,2,1] has KMP-minimal period 2, which does not divide 5, so the
	// sequence is not a repetition of any shorter cycle and must be reported
	// aperiodic even though it looks periodic on its own.
	assert.True(t, Aperiodic(rowsOf(1, 2, 1, 2, 1)))
}

func TestNewTerminator_InitialTermStateIsFixedPoint(t *testing.T) {
	term := NewTerminator(conwayLife, automaton.SymmetryNone, true, false, 4)

	assert.Equal(t, term.initialTermState, term.nxTerm[term.initialTermState],
		"initInitialTermState must stop exactly at nxTerm's fixed point")
}

func TestNewTerminator_ZeroLotLineForcesNoAdditionalStatorColumns(t *testing.T) {
	term := NewTerminator(conwayLife, automaton.SymmetryNone, true, true, 4)

	assert.Equal(t, 0, term.AddlStatorCols())
	assert.Equal(t, uint16(1), term.initialTermState)
}

func TestTerminal_RootIsNeverTerminal(t *testing.T) {
	term := NewTerminator(conwayLife, automaton.SymmetryEven, true, false, 4)

	ok, _, _ := term.Terminal(rowsOf(0, 0), nil, nil, true)
	assert.False(t, ok)
}

func TestTerminal_EvenRowSymmetryShortCircuits(t *testing.T) {
	term := NewTerminator(conwayLife, automaton.SymmetryNone, true, false, 4)

	rows := rowsOf(1, 2, 3)
	parent := rowsOf(1, 2, 3)

	ok, sym, offset := term.Terminal(rows, parent, nil, false)

	assert.True(t, ok)
	assert.Equal(t, automaton.SymmetryEven, sym)
	assert.Equal(t, 0, offset)
}

func TestTerminal_OddRowSymmetryComparesAgainstGrandparent(t *testing.T) {
	term := NewTerminator(conwayLife, automaton.SymmetryNone, true, false, 4)

	rows := rowsOf(1, 2, 3)
	parent := rowsOf(9, 9, 9)
	grandparent := rowsOf(1, 2, 3)

	ok, sym, offset := term.Terminal(rows, parent, grandparent, false)

	assert.True(t, ok)
	assert.Equal(t, automaton.SymmetryOdd, sym)
	assert.Equal(t, 0, offset)
}

func TestTerminal_RowSymmetryDisabledFallsThroughToColumnDP(t *testing.T) {
	termSym := NewTerminator(conwayLife, automaton.SymmetryNone, true, false, 4)
	termNoSym := NewTerminator(conwayLife, automaton.SymmetryNone, false, false, 4)

	rows := rowsOf(1, 2, 3)
	parent := rowsOf(1, 2, 3)

	okSym, _, _ := termSym.Terminal(rows, parent, nil, false)
	assert.True(t, okSym)

	// With AllowRowSym disabled, the identical-to-parent shortcut cannot
	// fire; whatever the column DP decides, it must not take the
	// immediate-symmetry path.
	_, symNoSym, _ := termNoSym.Terminal(rows, parent, nil, false)
	assert.Equal(t, automaton.SymmetryNone, symNoSym)
}
