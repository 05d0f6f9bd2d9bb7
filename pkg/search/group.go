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
	"sort"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

// expander generates and enumerates every oscillator-consistent child of a
// single queue state: first the row extension generator runs once per
// phase (§4.2 "find representation of set of extensions for each row"),
// then, when a stator is configured, the candidate rows are partitioned
// into stator-matched groups so that only rows genuinely able to share a
// static border are ever tested against each other for compatibility.
type expander struct {
	extender       *automaton.Extender
	buf            *rowBuffer
	period         int
	statMask       uint32
	totalWidth     int
	compatCapacity int
}

func newExpander(extender *automaton.Extender, period, rowBufferCapacity int, statMask uint32, totalWidth, compatCapacity int) *expander {
	return &expander{
		extender:       extender,
		buf:            newRowBuffer(period, rowBufferCapacity),
		period:         period,
		statMask:       statMask,
		totalWidth:     totalWidth,
		compatCapacity: compatCapacity,
	}
}

// expand walks every child of the state whose current rows are `rows` and
// whose parent's rows (providing the "middle" context row used by the
// extension generator, §4.2) are `middleRows`, invoking emit once per
// candidate child row set. emit returning an error aborts the expansion
// immediately and the error propagates to the caller.
func (ex *expander) expand(rows, middleRows []automaton.Row, sparkMask uint32, emit func([]automaton.Row) error) error {
	ex.buf.reset()
	budget := newCapacityBudget(ex.compatCapacity)

	for phase := 0; phase < ex.period; phase++ {
		below := rows[(phase+1)%ex.period]
		ex.extender.SetupExtensions(rows[phase], middleRows[phase], below, sparkMask)

		ok := ex.extender.ListRows(func(r automaton.Row) bool {
			return ex.buf.append(phase, r)
		})
		if !ok {
			return capacityErrorf("row buffer exhausted in phase %d", phase)
		}

		if len(ex.buf.rows(phase)) == 0 {
			return nil
		}
	}

	if ex.statMask == 0 {
		return ex.processGroup(ex.buf.phase, rows, budget, emit)
	}

	sorted := make([][]automaton.Row, ex.period)
	for phase := range sorted {
		sorted[phase] = append([]automaton.Row(nil), ex.buf.rows(phase)...)
		sortByStator(sorted[phase], ex.statMask)
	}

	groups, _ := groupByStator(sorted, ex.statMask, ex.period)
	for _, group := range groups {
		if err := ex.processGroup(group, rows, budget, emit); err != nil {
			return err
		}
	}

	return nil
}

// sortByStator orders rows first by their stator bits, then by full value,
// matching ofind.c's statorCompare (the full-value tiebreak exists because
// C's qsort is not guaranteed stable; Go's sort.Slice isn't either, so the
// same explicit tiebreak is kept here rather than relying on SliceStable).
func sortByStator(rows []automaton.Row, statMask uint32) {
	sort.Slice(rows, func(i, j int) bool {
		si, sj := uint32(rows[i])&statMask, uint32(rows[j])&statMask
		if si != sj {
			return si < sj
		}

		return rows[i] < rows[j]
	})
}

// groupByStator partitions period-many sorted row slices into stator-value
// groups present in every phase simultaneously (§4.3 findStatorGroup): a
// stator value missing from some later phase aborts just that group, while
// a later phase running out of rows entirely (no larger stator value can
// ever be found there either, since rows are sorted ascending) stops the
// scan for good -- the second return value reports that condition.
func groupByStator(sorted [][]automaton.Row, statMask uint32, period int) ([][][]automaton.Row, bool) {
	cursor := make([]int, period)
	var groups [][][]automaton.Row

	for cursor[0] < len(sorted[0]) {
		stator := uint32(sorted[0][cursor[0]]) & statMask

		group := make([][]automaton.Row, period)
		start0 := cursor[0]
		for cursor[0] < len(sorted[0]) && uint32(sorted[0][cursor[0]])&statMask == stator {
			cursor[0]++
		}
		group[0] = sorted[0][start0:cursor[0]]

		abort := false

		for phase := 1; phase < period; phase++ {
			rows := sorted[phase]

			for cursor[phase] < len(rows) && uint32(rows[cursor[phase]])&statMask < stator {
				cursor[phase]++
			}

			if cursor[phase] >= len(rows) {
				return groups, true
			}

			if uint32(rows[cursor[phase]])&statMask != stator {
				abort = true
				break
			}

			start := cursor[phase]
			for cursor[phase] < len(rows) && uint32(rows[cursor[phase]])&statMask == stator {
				cursor[phase]++
			}

			group[phase] = rows[start:cursor[phase]]
		}

		if !abort {
			groups = append(groups, group)
		}
	}

	return groups, false
}

// processGroup enumerates every combination of one row per phase drawn from
// a single stator-matched group that is mutually compatible and reachable
// around the full cycle, emitting each as a candidate child (§4.3
// testCompatible/testReachable, §4.4 processGroup's odometer loop).
func (ex *expander) processGroup(group [][]automaton.Row, stateRows []automaton.Row, budget *capacityBudget, emit func([]automaton.Row) error) error {
	graph, err := buildCompatibility(ex.extender, &rowBuffer{phase: group}, stateRows, ex.statMask, ex.totalWidth, budget)
	if err != nil {
		return err
	}

	reach, err := buildReachability(graph, &rowBuffer{phase: group}, ex.period, budget)
	if err != nil {
		return err
	}

	rowIndices := make([]int, ex.period)
	for i := range rowIndices {
		rowIndices[i] = -1
	}

	phase := -1
	for {
		phase++

		for rowIndices[phase] == len(group[phase])-1 {
			rowIndices[phase] = -1
			phase--

			if phase < 0 {
				return nil
			}
		}

		rowIndices[phase]++

		if !reach.test(phase, rowIndices[phase], rowIndices[0]) {
			phase--
			continue
		}

		if phase > 0 && !graph.test(phase, rowIndices[phase], rowIndices[phase-1]) {
			phase--
			continue
		}

		if phase == ex.period-1 {
			if graph.test(0, rowIndices[0], rowIndices[phase]) {
				rows := make([]automaton.Row, ex.period)
				for p := 0; p < ex.period; p++ {
					rows[p] = group[p][rowIndices[p]]
				}

				if err := emit(rows); err != nil {
					return err
				}
			}

			phase--
		}
	}
}
