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

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
)

func TestNewQueue_RootOccupiesSlotZero(t *testing.T) {
	q := NewQueue(3, 16, false, 0, 0)

	assert.Equal(t, 1, q.Len())
	assert.True(t, q.IsRoot(0))
	assert.Equal(t, -1, q.Parent(0))
	assert.Equal(t, rowsOf(0, 0, 0), q.Rows(0))
}

func TestEnqueue_RejectsZeroFromZero(t *testing.T) {
	q := NewQueue(2, 16, false, 0, 0)

	idx, ok, err := q.Enqueue(0, rowsOf(0, 0))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, q.Len(), "a rejected enqueue must not grow the queue")
}

func TestEnqueue_AcceptsNonzeroChildOfRoot(t *testing.T) {
	q := NewQueue(2, 16, false, 0, 0)

	idx, ok, err := q.Enqueue(0, rowsOf(1, 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0, q.Parent(idx))
	assert.Equal(t, 2, q.Len())
}

func TestEnqueue_ParentAlwaysPrecedesChild(t *testing.T) {
	q := NewQueue(1, 16, false, 0, 0)

	a, _, err := q.Enqueue(0, rowsOf(1))
	require.NoError(t, err)

	b, _, err := q.Enqueue(a, rowsOf(1))
	require.NoError(t, err)

	assert.Less(t, q.Parent(a), a)
	assert.Less(t, q.Parent(b), b)
	assert.Equal(t, a, q.Parent(b))
}

func TestEnqueue_CapacityExhaustedIsAnError(t *testing.T) {
	q := NewQueue(1, 1, false, 0, 0)

	_, _, err := q.Enqueue(0, rowsOf(1))
	require.Error(t, err)

	var serr *SearchError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrCapacity, serr.Kind)
}

func TestDedupHash_RejectsDuplicateRowSet(t *testing.T) {
	q := NewQueue(2, 16, true, 42, 1024)

	_, ok1, err := q.Enqueue(0, rowsOf(1, 2))
	require.NoError(t, err)
	require.True(t, ok1)

	_, ok2, err := q.Enqueue(0, rowsOf(1, 2))
	require.NoError(t, err)
	assert.False(t, ok2, "an identical row set reachable from a second branch must be rejected as a duplicate")
}

// TestDedupHash_SameRowsDifferentParentIsNotADuplicate covers spec.md §3's
// parent-sensitive fingerprint end to end through Queue.Enqueue: the same
// row set reached via two distinct parents is two distinct oscillator
// candidates, not a duplicate of the first.
func TestDedupHash_SameRowsDifferentParentIsNotADuplicate(t *testing.T) {
	q := NewQueue(2, 16, true, 42, 1024)

	parentA, _, err := q.Enqueue(0, rowsOf(5, 6))
	require.NoError(t, err)

	parentB, _, err := q.Enqueue(0, rowsOf(7, 8))
	require.NoError(t, err)

	_, okA, err := q.Enqueue(parentA, rowsOf(1, 2))
	require.NoError(t, err)
	require.True(t, okA)

	_, okB, err := q.Enqueue(parentB, rowsOf(1, 2))
	require.NoError(t, err)
	assert.True(t, okB, "identical rows reached through a different parent must not be rejected as a duplicate")
}

func TestCompact_DiscardsUnreachableStates(t *testing.T) {
	q := NewQueue(1, 16, false, 0, 0)

	live, _, err := q.Enqueue(0, rowsOf(1))
	require.NoError(t, err)

	dead, _, err := q.Enqueue(0, rowsOf(2))
	require.NoError(t, err)

	child, _, err := q.Enqueue(live, rowsOf(3))
	require.NoError(t, err)

	q.ResetCursor(dead)
	q.MarkUnused(dead)
	// child is past the unprocessed cursor (still "frontier"); since it has
	// no MarkUnused call, it survives and keeps its ancestor `live` alive
	// via the backward liveness pass even though `live` itself precedes the
	// cursor.
	_ = child

	q.Compact()

	// Only the root and the live->child chain should remain; `dead` must be
	// gone and parent offsets must still strictly precede their children.
	assert.Equal(t, 3, q.Len())

	for i := 1; i < q.Len(); i++ {
		assert.Less(t, q.Parent(i), i)
	}
}

func TestCompact_AdvancesCursorPastAFrontierSlotMarkedUnused(t *testing.T) {
	q := NewQueue(1, 16, false, 0, 0)

	first, _, err := q.Enqueue(0, rowsOf(1))
	require.NoError(t, err)

	second, _, err := q.Enqueue(0, rowsOf(2))
	require.NoError(t, err)

	q.ResetCursor(first)
	q.MarkUnused(first)

	q.Compact()

	// `first` was the cursor itself and got pruned; the cursor must land on
	// whatever slot `second` was remapped to, not on a stale/negative index.
	assert.GreaterOrEqual(t, q.Cursor(), 0)
	assert.True(t, q.HasUnprocessed())
	assert.Equal(t, rowsOf(2), q.Rows(q.Cursor()))
}

func TestSeedInitialRows_ChainsThroughRoot(t *testing.T) {
	q := NewQueue(1, 16, false, 0, 0)

	last, err := q.SeedInitialRows([][]automaton.Row{rowsOf(1), rowsOf(1)})
	require.NoError(t, err)

	assert.Equal(t, 2, last)
	assert.Equal(t, 1, q.Parent(last))
	assert.Equal(t, 0, q.Parent(1))
}
