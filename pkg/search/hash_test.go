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
	"github.com/stretchr/testify/require"
)

// alwaysMatch stands in for Queue.Enqueue's "same" callback wherever a test
// only cares about whether a probe slot is occupied, not about a genuine
// per-phase row comparison.
func alwaysMatch(int) bool { return true }

// neverMatch models a hash collision between two states that share a probe
// slot but are not actually the same state: the full equality check must
// reject it.
func neverMatch(int) bool { return false }

func TestDedupHash_SameSeedProducesIdenticalKeys(t *testing.T) {
	a := newDedupHash(1234, 1<<12, 3)
	b := newDedupHash(1234, 1<<12, 3)

	rows := rowsOf(0xdead, 0xbeef, 0x1234)
	parent := rowsOf(0, 0, 0)

	assert.Equal(t, a.key(rows, parent), b.key(rows, parent), "two hash tables built from the same seed must fingerprint identically")
	assert.Equal(t, a.probe(a.key(rows, parent)), b.probe(b.key(rows, parent)))
}

func TestDedupHash_DifferentSeedsUsuallyDiverge(t *testing.T) {
	a := newDedupHash(1, 1<<12, 3)
	b := newDedupHash(2, 1<<12, 3)

	rows := rowsOf(0xdead, 0xbeef, 0x1234)
	parent := rowsOf(0, 0, 0)

	assert.NotEqual(t, a.key(rows, parent), b.key(rows, parent), "distinct seeds should draw distinct salt tables")
}

// TestDedupHash_DifferentParentRowsDivergeTheKey covers spec.md §3's
// requirement that a state's fingerprint folds in its parent's rows, not
// just its own: two otherwise-identical row sets reached via different
// parents must not collapse to the same key.
func TestDedupHash_DifferentParentRowsDivergeTheKey(t *testing.T) {
	h := newDedupHash(7, 1<<12, 2)

	rows := rowsOf(1, 2)
	parentA := rowsOf(0, 0)
	parentB := rowsOf(3, 4)

	assert.NotEqual(t, h.key(rows, parentA), h.key(rows, parentB),
		"identical rows reached through different parents must fingerprint differently")
}

func TestDedupHash_EmptyTableNeverReportsDuplicate(t *testing.T) {
	h := newDedupHash(7, 1<<10, 2)

	assert.False(t, h.isDuplicate(rowsOf(1, 2), rowsOf(0, 0), alwaysMatch))
}

func TestDedupHash_InsertThenIsDuplicate(t *testing.T) {
	h := newDedupHash(7, 1<<10, 2)

	rows := rowsOf(1, 2)
	parent := rowsOf(0, 0)
	h.insert(99, rows, parent)

	assert.True(t, h.isDuplicate(rows, parent, alwaysMatch))
}

// TestDedupHash_OccupiedSlotWithoutMatchIsNotADuplicate covers the second
// half of spec.md §4.4: a bare probe-slot hit must not be enough on its own
// to declare a duplicate. Only when the caller's full per-phase comparison
// also agrees may isDuplicate report true.
func TestDedupHash_OccupiedSlotWithoutMatchIsNotADuplicate(t *testing.T) {
	h := newDedupHash(7, 1<<10, 2)

	rows := rowsOf(1, 2)
	parent := rowsOf(0, 0)
	h.insert(99, rows, parent)

	assert.False(t, h.isDuplicate(rows, parent, neverMatch),
		"a bare hash collision must not be treated as a duplicate without a full row-content match")
}

func TestDedupHash_ClearForgetsEverything(t *testing.T) {
	h := newDedupHash(7, 1<<10, 2)

	rows := rowsOf(1, 2)
	parent := rowsOf(0, 0)
	h.insert(99, rows, parent)
	require.True(t, h.isDuplicate(rows, parent, alwaysMatch))

	h.clear()

	assert.False(t, h.isDuplicate(rows, parent, alwaysMatch))
}
