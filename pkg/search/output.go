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
	"strings"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

// Status classifies how a Search run ended.
type Status int

const (
	// StatusSuccess means an oscillator satisfying every constraint was
	// found; Result.Lines renders it.
	StatusSuccess Status = iota
	// StatusExhausted means the search space was fully enumerated with no
	// match.
	StatusExhausted
	// StatusDeepestLine means the search space was exhausted with no match
	// while the last processed state lies below the root; Result.Lines
	// renders that deepest partial line, from that state back to the root.
	StatusDeepestLine
	// StatusNoCurrentLine means even a partial line could not be
	// recovered, matching ofind.c's "Unable to find current search line."
	StatusNoCurrentLine
)

// Result is the outcome of a Search call (§6 External Interfaces): either a
// rendered oscillator, a rendered deepest-line dump, or neither.
type Result struct {
	Status Status
	Lines  []string
}

// renderer turns rows into the textual pattern representation ofind.c's
// putRow/putCell/putStator family produces, given a fixed symmetry,
// totalWidth and addlStatorCols.
type renderer struct {
	symmetry       automaton.Symmetry
	totalWidth     int
	addlStatorCols int
}

func cellChar(row automaton.Row, bit int) byte {
	if row&(1<<uint(bit)) != 0 {
		return 'o'
	}

	return '.'
}

func cellCharVal(val, bit int) byte {
	if val&(1<<uint(bit)) != 0 {
		return 'o'
	}

	return '.'
}

// putRow renders a single row of the bounding box (§4.1 Supplemented
// Features: the extra-dot alignment quirk). When symmetry is none and
// there are no additional stator columns, ofind.c emits one extra leading
// dot that isn't strictly part of the pattern -- observed legacy behavior,
// preserved bit-for-bit here rather than "corrected", since matching the
// reference renderer exactly is the safer default absent a stated reason
// to diverge.
func (r *renderer) putRow(row automaton.Row) string {
	var sb strings.Builder

	for i := 0; i < r.addlStatorCols; i++ {
		sb.WriteByte('.')
	}

	switch r.symmetry {
	case automaton.SymmetryNone:
		if r.addlStatorCols == 0 {
			sb.WriteByte('.')
		}
	case automaton.SymmetryOdd:
		for bit := r.totalWidth - 1; bit > 0; bit-- {
			sb.WriteByte(cellChar(row, bit))
		}
	case automaton.SymmetryEven:
		for bit := r.totalWidth - 1; bit >= 0; bit-- {
			sb.WriteByte(cellChar(row, bit))
		}
	}

	for bit := 0; bit <= r.totalWidth+r.addlStatorCols-1; bit++ {
		sb.WriteByte(cellChar(row, bit))
	}

	return sb.String()
}

// putStator recursively renders one of the 5 fixed border-cap rows for an
// asymmetric (or structurally symmetric but temporally non-repeating)
// stator closure, walking the predecessor chain terminate() left behind
// (§4.7). row selects which of the 5 bits of each column word to draw;
// skip suppresses the two sentinel "virtual" columns at either end.
func putStator(bt *btTable, row, col, i, j, reversed, skip int, sb *strings.Builder) {
	if skip <= 0 && reversed != 0 {
		sb.WriteByte(cellCharVal(j, row))
	}

	if col < bt.recurBound {
		pred := int(bt.pt[bt.idx(col, i, j)])
		putStator(bt, row, col+1, pred, i, reversed, skip-1, sb)
	}

	if skip <= 0 && reversed == 0 {
		sb.WriteByte(cellCharVal(j, row))
	}
}

// borderLines renders the 5-row stator-closure cap using the predecessor
// table left by the most recent successful Terminate call (§4.7
// success()'s final switch(symmetry) block).
func (t *Terminator) borderLines() []string {
	lines := make([]string, 5)

	for row := 0; row < 5; row++ {
		var sb strings.Builder

		switch t.symmetry {
		case automaton.SymmetryOdd:
			putStator(t.lastBT, row, 0, t.fwdBestTerm, t.backBestTerm, 0, 1, &sb)
			putStator(t.lastBT, row, -1, t.backBestTerm, t.fwdBestTerm, 1, 1, &sb)
		case automaton.SymmetryEven:
			putStator(t.lastBT, row, -1, t.fwdBestTerm, t.backBestTerm, 0, 1, &sb)
			putStator(t.lastBT, row, -1, t.backBestTerm, t.fwdBestTerm, 1, 1, &sb)
		default:
			putStator(t.lastBT, row, t.totalWidth, t.backBestTerm, t.fwdBestTerm, 0, 1, &sb)
			putStator(t.lastBT, row, -2, t.fwdBestTerm, t.backBestTerm, 1, 1, &sb)
		}

		lines[row] = sb.String()
	}

	return lines
}
