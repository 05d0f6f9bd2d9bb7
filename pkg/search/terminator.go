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

import "github.com/conwaylife-dev/oscisearch/pkg/automaton"

// Terminator decides whether a state's pattern has finished repeating and,
// if so, whether an asymmetric stator can be closed off to make it a
// genuine finite oscillator (§3 Termination Tables, §4.6/§4.7). All of its
// lookup tables are derived once from the rule and hold no per-search
// mutable state; terminate() allocates its own scratch DP tables per call.
type Terminator struct {
	rule        uint32
	symmetry    automaton.Symmetry
	allowRowSym bool
	zeroLotLine bool
	totalWidth  int

	count    [8]uint32
	bitCount [32]int32

	tcomp3  []bool // (i&7)<<6 | (j&7)<<3 | (k&7), len 8*8*8
	tcompat []bool // i<<10 | j<<5 | k, len 32*32*32
	stabtab []bool // len 1<<13

	revTerm []uint16 // len 1<<16
	nxTerm  []uint16 // len 1<<22

	initialTermState uint16
	addlStatorCols   int

	// fwdBestTerm/backBestTerm hold the stator boundary words found by the
	// most recent successful terminate() call, consumed by output
	// rendering. lastBT retains that call's predecessor table so the
	// renderer can walk it without re-running the DP.
	fwdBestTerm  int
	backBestTerm int
	lastBT       *btTable
}

// NewTerminator derives every termination table for the given rule,
// symmetry class and total pattern width (§4.9 initTermTabs). This is the
// expensive, one-time per-search initialization step.
func NewTerminator(rule uint32, symmetry automaton.Symmetry, allowRowSym, zeroLotLine bool, totalWidth int) *Terminator {
	t := &Terminator{
		rule:        rule,
		symmetry:    symmetry,
		allowRowSym: allowRowSym,
		zeroLotLine: zeroLotLine,
		totalWidth:  totalWidth,
	}

	t.initCounts()
	t.initCompat()
	t.initStabTab()
	t.initRevTerm()
	t.initNxTerm()
	t.initInitialTermState()

	return t
}

func (t *Terminator) initCounts() {
	for i := 0; i < 8; i++ {
		bits := (i & 1) + ((i >> 1) & 1) + ((i >> 2) & 1)
		t.count[i] = uint32(bits) << 17
	}

	for i := 0; i < 32; i++ {
		t.bitCount[i] = int32((i & 1) + ((i >> 1) & 1) + ((i >> 2) & 1) + ((i >> 3) & 1) + ((i >> 4) & 1))
	}
}

func tc3idx(i, j, k int) int {
	return ((i & 7) << 6) | ((j & 7) << 3) | (k & 7)
}

func (t *Terminator) initCompat() {
	rule := int(t.rule)

	t.tcomp3 = make([]bool, 8*8*8)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			for k := 0; k < 8; k++ {
				count := 9 - 9*((j>>1)&1)
				count += (i & 1) + ((i >> 1) & 1) + ((i >> 2) & 1)
				count += (k & 1) + ((k >> 1) & 1) + ((k >> 2) & 1)
				count += (j & 1) + ((j >> 2) & 1)

				bitSet := rule&(1<<uint(count)) != 0
				t.tcomp3[tc3idx(i, j, k)] = bitSet == (j&2 != 0)
			}
		}
	}

	t.tcompat = make([]bool, 32*32*32)
	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			for k := 0; k < 32; k++ {
				t.tcompat[(i<<10)|(j<<5)|k] = t.tcomp3[tc3idx(i, j, k)] &&
					t.tcomp3[tc3idx(i>>1, j>>1, k>>1)] &&
					t.tcomp3[tc3idx(i>>2, j>>2, k>>2)] &&
					t.tcomp3[tc3idx(i>>3, j>>3, k>>3)] &&
					t.tcomp3[tc3idx(i>>4, j>>4, k>>4)]
			}
		}
	}
}

func (t *Terminator) initStabTab() {
	rule := int(t.rule)
	t.stabtab = make([]bool, 1<<13)

	for i := 0; i < (1 << 13); i++ {
		j := 9 - 9*((i>>5)&1)
		j += ((i >> 11) & 1) + ((i >> 9) & 1) + ((i >> 7) & 1)
		j += ((i >> 6) & 1) + ((i >> 4) & 1)
		j += ((i >> 3) & 1) + ((i >> 2) & 1) + ((i >> 1) & 1)

		if (rule&(1<<uint(j)) != 0) != (i&1 != 0) {
			continue
		}

		j2 := 9 - 9*((i>>9)&1)
		j2 += ((i >> 12) & 1) + ((i >> 11) & 1) + ((i >> 10) & 1) + ((i >> 8) & 1)
		j2 += ((i >> 7) & 1) + ((i >> 6) & 1) + ((i >> 5) & 1) + ((i >> 4) & 1)

		if (rule&(1<<uint(j2)) != 0) == ((i>>9)&1 != 0) {
			t.stabtab[i] = true
		}
	}
}

func (t *Terminator) initRevTerm() {
	t.revTerm = make([]uint16, 1<<16)

	for i := 0; i < (1 << 16); i++ {
		var r uint16
		for j := 0; j < 16; j++ {
			if i&(1<<uint(j)) == 0 {
				continue
			}

			k := ((j & 5) << 1) | ((j & 10) >> 1)
			r |= 1 << uint(k)
		}

		t.revTerm[i] = r
	}
}

func (t *Terminator) initNxTerm() {
	rule := int(t.rule)

	nti := make([]uint16, 1<<10)
	for i := 0; i < (1 << 6); i++ {
		for j := 0; j < 16; j++ {
			succ := i & 1
			count := (i >> 1) & 3
			count += ((i >> 3) & 1) + ((i >> 5) & 1)
			count += (j & 1) + ((j >> 1) & 1)
			count += 9 - 9*((i>>4)&1)

			succ2 := j & 1
			count2 := 9 - 9*succ2 + ((j >> 1) & 1) + ((j >> 2) & 1) + ((j >> 3) & 1)
			count2 += ((i >> 3) & 1) + ((i >> 4) & 1) + ((i >> 5) & 1)

			var entry uint16

			for inner := 0; inner < 2; inner++ {
				if (rule&(1<<uint(count+inner)) != 0) != (succ != 0) {
					continue
				}

				for outer := 0; outer < 2; outer++ {
					if (rule&(1<<uint(count2+inner+outer)) != 0) != (succ2 != 0) {
						continue
					}

					entry |= 1 << uint(((j&5)<<1)|(outer<<2)|inner)
				}
			}

			nti[(j<<6)|i] = entry
		}
	}

	t.nxTerm = make([]uint16, 1<<22)
	for i := 0; i < (1 << 22); i++ {
		var entry uint16
		for j := 0; j < 16; j++ {
			if i&(1<<uint(j)) != 0 {
				entry |= nti[(i>>16)|(j<<6)]
			}
		}

		t.nxTerm[i] = entry
	}
}

func (t *Terminator) initInitialTermState() {
	t.initialTermState = 1
	t.addlStatorCols = 0

	if t.zeroLotLine {
		return
	}

	for {
		term := t.nxTerm[t.initialTermState]
		if term == t.initialTermState {
			return
		}

		t.initialTermState = term
		t.addlStatorCols++
	}
}

// AddlStatorCols reports the number of extra stator columns the termination
// tables require on top of totalWidth, driven by the rule's "lot line"
// behavior (disabled by Config.ZeroLotLine).
func (t *Terminator) AddlStatorCols() int {
	return t.addlStatorCols
}

func nxIdx(term uint16, r, pr, sr uint32) uint32 {
	return uint32(term) | (r << 19) | pr | (sr << 16)
}

func (t *Terminator) nextTerm(term uint16, r, pr, sr automaton.Row, i uint) uint16 {
	rr := (uint32(r) >> i) & 7
	prr := t.count[(uint32(pr)>>i)&7]
	srr := (uint32(sr) >> (i + 1)) & 1

	return t.nxTerm[nxIdx(term, rr, prr, srr)]
}

func oddExt(r automaton.Row) automaton.Row {
	return (r << 1) | ((r & 2) >> 1)
}

func evenExt(r automaton.Row) automaton.Row {
	return (r << 1) | (r & 1)
}

func rowsEqual(a, b []automaton.Row) bool {
	if a == nil || b == nil {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func rowsEqualShifted(a, b []automaton.Row, offset int) bool {
	if a == nil || b == nil {
		return false
	}

	n := len(a)
	for i := range a {
		if a[i] != b[(i+offset)%n] {
			return false
		}
	}

	return true
}

// Terminal reports whether the state described by rows (with parent rows
// parentRows and grandparent rows grandparentRows, both nil when not
// available) is a candidate endpoint of the search (§4.6 terminal). The
// root state is never terminal. When row symmetry closes the pattern early
// (allowRowSym), the matched symmetry and any phase offset used are
// returned so the caller can render the completed pattern without running
// the asymmetric stator closure.
func (t *Terminator) Terminal(rows, parentRows, grandparentRows []automaton.Row, isRoot bool) (bool, automaton.Symmetry, int) {
	if isRoot {
		return false, automaton.SymmetryNone, 0
	}

	period := len(rows)

	if t.allowRowSym {
		if rowsEqual(rows, parentRows) {
			return true, automaton.SymmetryEven, 0
		}

		if rowsEqual(rows, grandparentRows) {
			return true, automaton.SymmetryOdd, 0
		}

		if period%2 == 0 {
			half := period / 2

			if rowsEqualShifted(rows, parentRows, half) {
				return true, automaton.SymmetryEven, half
			}

			if rowsEqualShifted(rows, grandparentRows, half) {
				return true, automaton.SymmetryOdd, half
			}
		}
	}

	term := t.initialTermState

	for i := t.totalWidth - 1; i >= 0; i-- {
		if term == 0 {
			return false, automaton.SymmetryNone, 0
		}

		var next uint16 = 0xffff
		for phase := 0; phase < period; phase++ {
			succ := rows[(phase+1)%period]
			next &= t.nextTerm(term, rows[phase], parentRows[phase], succ, uint(i))
		}

		term = next
	}

	var next uint16 = 0xffff

	switch t.symmetry {
	case automaton.SymmetryOdd:
		for phase := 0; phase < period; phase++ {
			succ := rows[(phase+1)%period]
			next &= t.nextTerm(term, oddExt(rows[phase]), oddExt(parentRows[phase]), succ<<1, 0)
		}

		return t.revTerm[next]&term != 0, automaton.SymmetryNone, 0

	case automaton.SymmetryEven:
		for phase := 0; phase < period; phase++ {
			succ := rows[(phase+1)%period]
			next &= t.nextTerm(term, evenExt(rows[phase]), evenExt(parentRows[phase]), succ<<1, 0)
		}

		return t.revTerm[next]&next != 0, automaton.SymmetryNone, 0

	default:
		for phase := 0; phase < period; phase++ {
			succ := rows[(phase+1)%period]
			next &= t.nextTerm(term, rows[phase]<<1, parentRows[phase]<<1, succ<<1, 0)
		}

		term = next
		next = 0xffff

		for phase := 0; phase < period; phase++ {
			succ := rows[(phase+1)%period]
			next &= t.nextTerm(term, rows[phase]<<2, parentRows[phase]<<2, succ<<2, 0)
		}

		return t.revTerm[next]&t.initialTermState != 0, automaton.SymmetryNone, 0
	}
}

// Aperiodic reports whether the row set has no proper sub-period, i.e. it is
// not a repetition of a shorter cycle whose length divides len(rows), using
// the KMP failure-function technique (§4.6 aperiodic); for period 1 the question degenerates to "is this the
// nonempty still life" since no proper sub-period exists.
func Aperiodic(rows []automaton.Row) bool {
	period := len(rows)

	if period == 1 {
		return rows[0] != 0
	}

	p := make([]int, period)
	p[0] = -1

	for i := 1; i < period; i++ {
		p[i] = p[i-1] + 1

		for rows[p[i]] != rows[i] {
			if p[i] == 0 {
				p[i] = -1
				break
			}

			p[i] = p[p[i]-1] + 1
		}
	}

	minPeriod := period - (p[period-1] + 1)

	return minPeriod == period || period%minPeriod != 0
}

func (t *Terminator) tcompatible(i, j, k int) bool {
	return t.tcompat[(i<<10)|(j<<5)|k]
}

func (t *Terminator) stabilizes(i, j, k int, rows, parentRows []automaton.Row, col int) bool {
	ijk := ((i & 3) << 11) | ((j & 3) << 9) | ((k & 3) << 7)
	period := len(rows)

	for phase := 0; phase < period; phase++ {
		r := rows[phase]
		pr := parentRows[phase]
		sr := rows[(phase+1)%period]

		switch {
		case col >= 0:
			r >>= automaton.Row(col)
			pr >>= automaton.Row(col)
			sr >>= automaton.Row(col)
		case t.symmetry == automaton.SymmetryOdd:
			r = (r << 1) | ((r >> 1) & 1)
			pr = (pr << 1) | ((pr >> 1) & 1)
			sr = (sr << 1) | ((sr >> 1) & 1)
		case t.symmetry == automaton.SymmetryEven:
			r = (r << 1) | (r & 1)
			pr = (pr << 1) | (pr & 1)
			sr = (sr << 1) | (sr & 1)
		default:
			r <<= automaton.Row(-col)
			pr <<= automaton.Row(-col)
			sr <<= automaton.Row(-col)
		}

		idx := ijk | (int(r&7) << 4) | (int(pr&7) << 1) | int((sr>>1)&1)
		if !t.stabtab[idx] {
			return false
		}
	}

	return true
}

// btTable is the per-terminate()-call DP scratch space: best-cost (BT) and
// predecessor (PT) tables over a bounded column range, indexed by
// (col-minCol, i, j) to accommodate the "virtual" columns (down to -2 for
// no symmetry, -1 otherwise) the algorithm probes past the edge of the
// pattern.
type btTable struct {
	minCol int
	cols   int
	bt     []int32
	pt     []int8

	// recurBound is putStator's uncapped recursion limit, ofind.c's
	// `totalWidth + addlStatorCols - 1`. It is tracked separately from
	// cols/minCol because those describe the allocated (63-capped) DP
	// table, while the recursion bound must follow the true column count
	// even past that cap.
	recurBound int
}

func newBTTable(minCol, maxCol, recurBound int) *btTable {
	cols := maxCol - minCol + 1
	return &btTable{
		minCol:     minCol,
		cols:       cols,
		bt:         make([]int32, cols*32*32),
		pt:         make([]int8, cols*32*32),
		recurBound: recurBound,
	}
}

func (b *btTable) idx(col, i, j int) int {
	return (col-b.minCol)*1024 + i*32 + j
}

func (b *btTable) get(col, i, j int) int32 {
	return b.bt[b.idx(col, i, j)]
}

func (b *btTable) set(col, i, j int, v int32, pred int) {
	k := b.idx(col, i, j)
	b.bt[k] = v
	b.pt[k] = int8(pred)
}

func (b *btTable) resetColumn(col int) {
	base := (col - b.minCol) * 1024
	for i := base; i < base+1024; i++ {
		b.bt[i] = -1
	}
}

// Terminate attempts to close the asymmetric (or symmetric-but-nonzero)
// end of the pattern off with a minimal stator, filling in fwdBestTerm/
// backBestTerm and the predecessor table lastBT by column-wise dynamic
// programming (§4.7 terminate). It must
// only be called once Terminal has reported this state as terminal and row
// symmetry did not already close the pattern.
func (t *Terminator) Terminate(rows, parentRows []automaton.Row) bool {
	col := t.totalWidth + t.addlStatorCols
	lastCol := -1

	if t.symmetry == automaton.SymmetryNone {
		lastCol = -2
	}

	if col > 63 {
		col = 63
	}

	bt := newBTTable(lastCol, col, t.totalWidth+t.addlStatorCols-1)
	t.lastBT = bt
	bt.resetColumn(col)
	bt.set(col, 0, 0, 0, 0)

	for col > lastCol {
		col--
		bt.resetColumn(col)

		foundAny := false

		for i := 0; i < 32; i++ {
			for j := 0; j < 32; j++ {
				base := bt.get(col+1, i, j)
				if base < 0 {
					continue
				}

				for k := 0; k < 32; k++ {
					if !t.tcompatible(i, j, k) {
						continue
					}

					cost := base + t.bitCount[k]
					cur := bt.get(col, j, k)

					if cur >= 0 && cost >= cur {
						continue
					}

					if !t.stabilizes(i, j, k, rows, parentRows, col) {
						continue
					}

					bt.set(col, j, k, cost, i)
					foundAny = true
				}
			}
		}

		if !foundAny {
			return false
		}
	}

	var backCol, fwdCol int

	switch t.symmetry {
	case automaton.SymmetryEven:
		backCol, fwdCol = -1, -1
	case automaton.SymmetryOdd:
		backCol, fwdCol = -1, 0
	default:
		backCol, fwdCol = t.totalWidth, -2
	}

	bestCount := int32(0x7fff)
	found := false

	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			bi := bt.get(backCol, i, j)
			fj := bt.get(fwdCol, j, i)

			if bi < 0 || fj < 0 {
				continue
			}

			tot := bi + fj - t.bitCount[i] - t.bitCount[j]
			if tot < bestCount {
				bestCount = tot
				t.backBestTerm = i
				t.fwdBestTerm = j
				found = true
			}
		}
	}

	return found
}
