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
	"github.com/bits-and-blooms/bitset"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

// capacityBudget tracks the combined word budget for the compatibility and
// reachability bit matrices built while expanding a single state (§5 Memory
// Budgets: "Compatibility + reachability: 2^21 words combined"). Every
// allocation against it is checked before the backing bitset is created, so
// an oversized candidate-row set is reported as the same kind of fatal
// capacity error as a row-buffer or queue overflow (§7), rather than simply
// growing an unbounded bitset.
type capacityBudget struct {
	limit int
	used  int
}

func newCapacityBudget(limit int) *capacityBudget {
	return &capacityBudget{limit: limit}
}

// reserve accounts for a bit matrix of the given bit count, rounding up to
// whole words, and fails once the combined total would exceed limit.
func (b *capacityBudget) reserve(bits int) error {
	words := (bits + 63) / 64
	if words == 0 {
		words = 1
	}

	if b.used+words > b.limit {
		return capacityErrorf("compatibility/reachability capacity exceeded: needed %d words, budget %d", b.used+words, b.limit)
	}

	b.used += words

	return nil
}

// compatGraph is the inter-phase compatibility bit matrix (§3 Compatibility
// Bitmatrix, §4.3): for each phase p, bit (j,i) records whether candidate
// row i in phase p-1 can evolve (given the parent state's row in phase p-1)
// into candidate row j in phase p. Built fresh for every process() call and
// fully discarded afterwards -- no cycles are ever held in memory, only a
// 2D bit matrix indexed by (phase, row-index) per Design Note 9.
type compatGraph struct {
	sets  []*bitset.BitSet
	nPrev []int
}

func newCompatGraph(period int) *compatGraph {
	return &compatGraph{sets: make([]*bitset.BitSet, period), nPrev: make([]int, period)}
}

func (g *compatGraph) alloc(phase, nCur, nPrev int, budget *capacityBudget) error {
	if err := budget.reserve(nCur * nPrev); err != nil {
		return err
	}

	g.sets[phase] = bitset.New(uint(nCur * nPrev))
	g.nPrev[phase] = nPrev

	return nil
}

func (g *compatGraph) set(phase, j, i int) {
	g.sets[phase].Set(uint(j*g.nPrev[phase] + i))
}

func (g *compatGraph) test(phase, j, i int) bool {
	return g.sets[phase].Test(uint(j*g.nPrev[phase] + i))
}

// reachGraph is the reachability bit matrix (§3 Reachability Bitmatrix,
// §4.3): bit (j,k) records whether there is a compatibility-graph path from
// candidate row j of the given phase, through every later phase and
// wrapping to phase 0, that lands on candidate row k of phase 0.
type reachGraph struct {
	sets  []*bitset.BitSet
	nZero int
}

func newReachGraph(period int) *reachGraph {
	return &reachGraph{sets: make([]*bitset.BitSet, period)}
}

func (g *reachGraph) alloc(phase, nCur int, budget *capacityBudget) error {
	if err := budget.reserve(nCur * g.nZero); err != nil {
		return err
	}

	g.sets[phase] = bitset.New(uint(nCur * g.nZero))

	return nil
}

func (g *reachGraph) set(phase, j, k int) {
	g.sets[phase].Set(uint(j*g.nZero + k))
}

func (g *reachGraph) test(phase, j, k int) bool {
	return g.sets[phase].Test(uint(j*g.nZero + k))
}

// buildCompatibility constructs the compatibility bit matrix for every
// phase of a single process() call (§4.3 test_compatible, called for every
// pair in the Cartesian product of consecutive phases' candidate rows).
// parentRows holds the row being expanded's own per-phase rows, which
// provide the "middle" context row for the extension test; statMask
// restricts the stator-equality precondition.
func buildCompatibility(
	extender *automaton.Extender,
	buf *rowBuffer,
	parentRows []automaton.Row,
	statMask uint32,
	totalWidth int,
	budget *capacityBudget,
) (*compatGraph, error) {
	period := len(parentRows)
	graph := newCompatGraph(period)

	for phase := 0; phase < period; phase++ {
		prevPhase := phase - 1
		if prevPhase < 0 {
			prevPhase = period - 1
		}

		prevRows := buf.rows(prevPhase)
		curRows := buf.rows(phase)

		if err := graph.alloc(phase, len(curRows), len(prevRows), budget); err != nil {
			return nil, err
		}

		for i, prevRow := range prevRows {
			for j, row := range curRows {
				if uint32(prevRow)&statMask != uint32(row)&statMask {
					continue
				}

				extender.SetupExtensions(prevRow, parentRows[prevPhase], row, automaton.AllSparks)

				if !lastColumnPropagates(extender, totalWidth) {
					continue
				}

				graph.set(phase, j, i)
			}
		}
	}

	return graph, nil
}

// lastColumnPropagates reports whether the final column's extension bitmap
// admits a valid propagation, i.e. whether its low two bits contain bit 1 --
// ofind.c's `03 & extensions[totalWidth - 1]` test.
func lastColumnPropagates(extender *automaton.Extender, totalWidth int) bool {
	return extender.LastExtension(totalWidth)&03 != 0
}

// buildReachability computes the reachability bit matrix by induction on
// phase, backward from period-1 (§4.3 test_reachable). The base case
// reuses the phase-0 compatibility block directly; pruning later relies on
// reach[p][j][k] being set iff row j of phase p can reach row k of phase 0
// through the compatibility graph.
func buildReachability(graph *compatGraph, buf *rowBuffer, period int, budget *capacityBudget) (*reachGraph, error) {
	reach := newReachGraph(period)
	reach.nZero = len(buf.rows(0))

	last := period - 1
	nLast := len(buf.rows(last))

	if err := reach.alloc(last, nLast, budget); err != nil {
		return nil, err
	}

	for j := 0; j < nLast; j++ {
		for k := 0; k < reach.nZero; k++ {
			if graph.test(0, k, j) {
				reach.set(last, j, k)
			}
		}
	}

	for phase := period - 2; phase >= 0; phase-- {
		nCur := len(buf.rows(phase))
		nNext := len(buf.rows(phase + 1))

		if err := reach.alloc(phase, nCur, budget); err != nil {
			return nil, err
		}

		for i := 0; i < nCur; i++ {
			for j := 0; j < nNext; j++ {
				if !graph.test(phase+1, j, i) {
					continue
				}

				for k := 0; k < reach.nZero; k++ {
					if reach.test(phase+1, j, k) {
						reach.set(phase, i, k)
					}
				}
			}
		}
	}

	return reach, nil
}
