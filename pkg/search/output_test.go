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

func TestPutRow_NoneSymmetryEmitsExtraDotQuirkWhenNoAddlStatorCols(t *testing.T) {
	r := &renderer{symmetry: automaton.SymmetryNone, totalWidth: 3, addlStatorCols: 0}

	// row 0b101 = columns 0 and 2 alive: "o.o" preceded by the historical
	// extra leading dot, ".o.o" in all (§4.1 Supplemented Features).
	assert.Equal(t, "o.o", r.putRow(0b101)[1:])
	assert.Equal(t, byte('.'), r.putRow(0b101)[0])
}

func TestPutRow_NoneSymmetrySuppressesQuirkWithAddlStatorCols(t *testing.T) {
	r := &renderer{symmetry: automaton.SymmetryNone, totalWidth: 3, addlStatorCols: 2}

	got := r.putRow(0b101)

	// Two leading addl-stator dots, no extra quirk dot, then totalWidth+
	// addlStatorCols pattern cells (bits 0..4 of 0b101: o.o..).
	assert.Equal(t, "..o.o..", got)
}

func TestPutRow_EvenSymmetryMirrorsRowAroundNoCenterColumn(t *testing.T) {
	r := &renderer{symmetry: automaton.SymmetryEven, totalWidth: 2, addlStatorCols: 0}

	// bits: column1=1 (high), column0=0 (low) -> row=0b10.
	// Mirrored half (bit1..bit0 descending) then the stored half again.
	got := r.putRow(0b10)

	assert.Equal(t, "o..o", got)
}

func TestPutRow_OddSymmetrySkipsCentralColumnInMirror(t *testing.T) {
	r := &renderer{symmetry: automaton.SymmetryOdd, totalWidth: 2, addlStatorCols: 0}

	// Mirror half draws bits from totalWidth-1 down to (but excluding) bit
	// 0, then the stored half draws every bit including bit 0.
	got := r.putRow(0b11)

	assert.Equal(t, "ooo", got)
}
