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

// rowBuffer is the per-expansion candidate-row arena (§3 Candidate Rows):
// for every phase, the rows produced by the extension generator that match
// the stator mask and extension constraints. Its capacity is shared across
// all phases of a single process() call, matching ofind.c's single `rows`
// array and NROWS bound.
type rowBuffer struct {
	capacity int
	total    int
	phase    [][]automaton.Row
}

func newRowBuffer(period, capacity int) *rowBuffer {
	return &rowBuffer{capacity: capacity, phase: make([][]automaton.Row, period)}
}

// reset clears the buffer for a new process() call, reusing the
// already-allocated backing arrays.
func (b *rowBuffer) reset() {
	b.total = 0
	for i := range b.phase {
		b.phase[i] = b.phase[i][:0]
	}
}

// append records a candidate row for the given phase, returning false if
// doing so would exceed the shared capacity budget.
func (b *rowBuffer) append(phase int, r automaton.Row) bool {
	if b.total >= b.capacity {
		return false
	}

	b.phase[phase] = append(b.phase[phase], r)
	b.total++

	return true
}

// rows returns the candidate rows accumulated so far for the given phase.
func (b *rowBuffer) rows(phase int) []automaton.Row {
	return b.phase[phase]
}
