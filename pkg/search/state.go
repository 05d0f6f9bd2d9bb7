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

// Sentinel parent values. ofind.c encodes "this is the root" by pointing a
// state's parent field back at itself, and "this slot is unused" by
// whatever garbage the compaction pass left behind; both are actual slot
// indices that happen to collide with meaning. Rather than overload a real
// index, the queue here tags those two cases with out-of-range sentinels
// (Design Note 9), so parent indices always mean "an earlier live slot" and
// nothing else.
const (
	rootParent   = -1
	unusedParent = -2
)

// Queue is the state-space arena (§3 State Queue): a flat, slot-indexed,
// append-only table of pattern rows, each entry carrying a reference to its
// generating parent. It is the core data structure the hybrid
// breadth-first/iterative-deepening driver walks.
type Queue struct {
	period   int
	capacity int

	parent []int32
	rows   [][]automaton.Row

	firstUnprocessed int
	firstFree        int

	hashing bool
	hash    *dedupHash
}

// NewQueue allocates an empty queue with the root state (all rows zero,
// sentinel rootParent) occupying slot 0, matching ofind.c's convention that
// state 0 is always the empty pattern.
func NewQueue(period, capacity int, hashing bool, seed int64, hashSize int) *Queue {
	q := &Queue{
		period:   period,
		capacity: capacity,
		parent:   make([]int32, 1, capacity),
		rows:     make([][]automaton.Row, 1, capacity),
		hashing:  hashing,
	}

	q.parent[0] = rootParent
	q.rows[0] = make([]automaton.Row, period)

	if hashing {
		q.hash = newDedupHash(seed, hashSize, period)
	}

	q.firstFree = 1

	return q
}

// Len reports how many slots (live or not yet compacted away) are in use.
func (q *Queue) Len() int {
	return q.firstFree
}

// IsRoot reports whether idx names the root state.
func (q *Queue) IsRoot(idx int) bool {
	return idx == 0
}

// Rows returns the per-phase rows of the state at idx.
func (q *Queue) Rows(idx int) []automaton.Row {
	return q.rows[idx]
}

// Parent returns the slot index of idx's generating parent, or -1 if idx is
// the root.
func (q *Queue) Parent(idx int) int {
	p := int(q.parent[idx])
	if p == rootParent {
		return -1
	}

	return p
}

// HasUnprocessed reports whether any state remains to be expanded by
// process() (§4.2 Breadth-First Driver / Iterative Deepening).
func (q *Queue) HasUnprocessed() bool {
	return q.firstUnprocessed < q.firstFree
}

// NextUnprocessed returns the slot index of the next state to expand and
// advances the cursor past it.
func (q *Queue) NextUnprocessed() int {
	idx := q.firstUnprocessed
	q.firstUnprocessed++

	return idx
}

// ResetCursor moves the unprocessed cursor to the given slot; Driver.Run
// uses it to start the scan at the last state seeded from initial rows.
func (q *Queue) ResetCursor(idx int) {
	q.firstUnprocessed = idx
}

// Cursor reports the current unprocessed-scan position.
func (q *Queue) Cursor() int {
	return q.firstUnprocessed
}

// SeedInitialRows pre-populates a chain of states below the root from
// user-supplied initial rows (§4.1 Supplemented Features: initial_rows),
// oldest first, returning the slot index of the last state in the chain.
// Each entry must carry exactly q.period rows; this is enforced by
// Config.Validate before the queue is ever built.
func (q *Queue) SeedInitialRows(rowSets [][]automaton.Row) (int, error) {
	parent := 0

	for _, rows := range rowSets {
		idx, _, err := q.Enqueue(parent, rows)
		if err != nil {
			return 0, err
		}

		parent = idx
	}

	return parent, nil
}

// Enqueue appends a new state generated from parentIdx with the given
// per-phase rows (§4.4 makeNewState). It rejects the degenerate
// all-zero-from-all-zero transition (an oscillator can never be generated
// by extending nothing with nothing) and, when hashing is enabled, any
// state whose row set duplicates one already reachable from a different
// branch of the state tree. A full queue or full dedup-hash table is
// reported as a capacity error, not a silent truncation.
func (q *Queue) Enqueue(parentIdx int, rows []automaton.Row) (int, bool, error) {
	if q.IsRoot(parentIdx) && allZero(rows) {
		return 0, false, nil
	}

	parentRows := q.Rows(parentIdx)

	if q.hashing {
		same := func(slot int) bool {
			return rowsEqual(q.rows[slot], rows) && rowsEqual(q.Rows(q.Parent(slot)), parentRows)
		}

		if q.hash.isDuplicate(rows, parentRows, same) {
			return 0, false, nil
		}
	}

	if q.firstFree >= q.capacity {
		return 0, false, capacityErrorf("state queue exhausted at capacity %d", q.capacity)
	}

	idx := q.firstFree
	q.firstFree++

	q.parent = append(q.parent, int32(parentIdx))
	q.rows = append(q.rows, append([]automaton.Row(nil), rows...))

	if q.hashing {
		q.hash.insert(idx, rows, parentRows)
	}

	return idx, true, nil
}

func allZero(rows []automaton.Row) bool {
	for _, r := range rows {
		if r != 0 {
			return false
		}
	}

	return true
}

// Truncate discards every slot from n onward, used to roll back the
// speculative states a depthFirst lookahead trial created (§4.5 deepen).
// The caller is responsible for disabling hashing around such trials via
// SetHashing, since a rolled-back insertion cannot otherwise be undone.
func (q *Queue) Truncate(n int) {
	q.rows = q.rows[:n]
	q.parent = q.parent[:n]
	q.firstFree = n
}

// MarkUnused flags a frontier slot as having no live continuation within
// the current lookahead bound, so the next Compact call discards it.
func (q *Queue) MarkUnused(idx int) {
	q.parent[idx] = unusedParent
}

// SetHashing toggles duplicate-state detection; the driver disables it for
// the duration of a deepen() lookahead pass since those states are always
// rolled back via Truncate and must never poison the dedup table.
func (q *Queue) SetHashing(on bool) {
	q.hashing = on
}

// Compact performs the three-pass mark/slide/fix-parents reclamation (§4.5
// Compaction): every already-processed slot (index below the unprocessed
// cursor) is discarded unless it is an ancestor of a surviving slot; every
// slot in the unprocessed frontier survives unless MarkUnused flagged it
// (the driver does so after a bounded depthFirst lookahead finds no live
// continuation there, mirroring ofind.c's deepen()). Survivors slide down
// to remove the resulting gaps and parent references are rewritten to the
// new indices.
func (q *Queue) Compact() {
	live := make([]bool, q.firstFree)
	live[0] = true

	for i := q.firstUnprocessed; i < q.firstFree; i++ {
		if q.parent[i] != unusedParent {
			live[i] = true
		}
	}

	// Propagate liveness up to ancestors; since parents always precede
	// children, a single backward pass suffices.
	for i := q.firstFree - 1; i > 0; i-- {
		if live[i] {
			p := q.Parent(i)
			if p >= 0 {
				live[p] = true
			}
		}
	}

	remap := make([]int32, q.firstFree)
	newRows := make([][]automaton.Row, 0, q.firstFree)
	newParent := make([]int32, 0, q.firstFree)

	next := 0
	for i := 0; i < q.firstFree; i++ {
		if !live[i] {
			remap[i] = unusedParent
			continue
		}

		remap[i] = int32(next)
		newRows = append(newRows, q.rows[i])
		newParent = append(newParent, q.parent[i])
		next++
	}

	for i := range newParent {
		p := newParent[i]
		if p == rootParent {
			continue
		}

		newParent[i] = remap[p]
	}

	// The old cursor may itself name a slot that deepen() just marked
	// unused (its own lookahead failed), so it cannot be remapped
	// directly: scan forward to the next surviving slot, or to the new
	// queue end if none remain.
	oldCursor := q.firstUnprocessed
	for oldCursor < q.firstFree && remap[oldCursor] == unusedParent {
		oldCursor++
	}

	if oldCursor < q.firstFree {
		q.firstUnprocessed = int(remap[oldCursor])
	} else {
		q.firstUnprocessed = next
	}

	q.rows = newRows
	q.parent = newParent
	q.firstFree = next

	if q.hashing {
		q.hash.clear()
		for i := 1; i < q.firstFree; i++ {
			q.hash.insert(i, q.rows[i], q.Rows(q.Parent(i)))
		}
	}
}
