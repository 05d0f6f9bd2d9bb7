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

// saltRange bounds the per-phase, per-byte salt table: each row contributes
// up to 4 bytes (32 bits) of state, each salted independently, matching
// ofind.c's HASHIDX/HASHBYTE salt tables sized by phase and byte position.
const saltRange = 4 * 256

// dedupHash is the open-addressed duplicate-state table (§3 Dedup Hash
// Table, §4.4 hash/isDuplicate): it maps a state's full row set to a
// probed slot, rejecting any row set already present so the same
// oscillator is never enumerated twice by two different expansion paths.
// Slot value 0 means "empty": the root (slot 0 of the Queue) is never
// itself inserted, so 0 is never ambiguous with a real occupant.
type dedupHash struct {
	saltS [][]int64 // [phase][byte] salts for the state's own rows
	saltP [][]int64 // [phase][byte] salts for the parent's rows

	table []int32
	size  int
	mask  int64
}

func newDedupHash(seed int64, size, period int) *dedupHash {
	h := &dedupHash{
		size:  size,
		table: make([]int32, size),
	}

	h.saltS = make([][]int64, period)
	h.saltP = make([][]int64, period)

	rng := seed
	for p := 0; p < period; p++ {
		h.saltS[p] = make([]int64, saltRange)
		h.saltP[p] = make([]int64, saltRange)

		for b := 0; b < saltRange; b++ {
			rng = nextRand(rng)
			h.saltS[p][b] = rng
			rng = nextRand(rng)
			h.saltP[p][b] = rng
		}
	}

	return h
}

// nextRand is a simple linear-congruential step used only to derive
// reproducible salt tables from Config.Seed; it has no bearing on search
// correctness, only on which of several equally valid probe sequences a
// given seed produces.
func nextRand(x int64) int64 {
	return x*6364136223846793005 + 1442695040888963407
}

// key folds a state's per-phase rows *and* its parent's per-phase rows into
// a single 64-bit hash by XORing each phase's salted byte contributions,
// mirroring ofind.c's hash(): HASHBYTE indexes hashValTab by the state's own
// row bytes and, separately, hashValPTab by the parent's row bytes, so two
// states with identical rows but different parents fingerprint differently
// (§3 Dedup Hash Table: "a separate salt for the parent bytes -- giving a
// commutative but direction-sensitive fingerprint").
func (h *dedupHash) key(rows, parentRows []automaton.Row) int64 {
	var k int64

	for phase, row := range rows {
		v := uint32(row)
		for b := 0; b < 4; b++ {
			idx := int(byte(v>>(8*uint(b)))) + b*256
			k ^= h.saltS[phase][idx]
		}
	}

	for phase, row := range parentRows {
		v := uint32(row)
		for b := 0; b < 4; b++ {
			idx := int(byte(v>>(8*uint(b)))) + b*256
			k ^= h.saltP[phase][idx]
		}
	}

	return k
}

// probe computes the 3-probe open-addressing sequence: the initial slot
// from the low bits of the key, and two further retries derived by folding
// the high bits back in, matching ofind.c's habit of re-deriving the index
// via `key += key >> 16` between probes rather than a fixed stride.
func (h *dedupHash) probe(k int64) [3]int {
	var slots [3]int

	for i := range slots {
		if k < 0 {
			k = -k
		}

		slots[i] = int(k % int64(h.size))
		k += k >> 16
	}

	return slots
}

// isDuplicate reports whether an equivalent state is already present in the
// table. A bare hash collision is never enough on its own: ofind.c's hash()
// always follows an occupied probe slot with a byte-exact comparison
// against the candidate state before declaring it a duplicate (§4.4 "treat
// collision as duplicate only when a full per-phase equality check
// succeeds"), since otherwise an unrelated state sharing only a probe slot
// would be silently discarded as though it were the same oscillator. same
// reports whether the slot occupant at a given queue index truly matches
// both the candidate's rows and its parent's rows.
func (h *dedupHash) isDuplicate(rows, parentRows []automaton.Row, same func(idx int) bool) bool {
	k := h.key(rows, parentRows)

	for _, slot := range h.probe(k) {
		if h.table[slot] != 0 && same(int(h.table[slot])) {
			return true
		}
	}

	return false
}

// insert records idx at the first empty probe slot for rows' key. The
// caller (Queue.Enqueue) has just seen isDuplicate return false, but that
// does not guarantee an empty slot among the three probes: if all three
// are occupied, nothing is recorded and the search degrades to permitting rare duplicates rather than
// erroring, exactly as ofind.c's fixed-probe-count scheme does.
func (h *dedupHash) insert(idx int, rows, parentRows []automaton.Row) {
	k := h.key(rows, parentRows)

	for _, slot := range h.probe(k) {
		if h.table[slot] == 0 {
			h.table[slot] = int32(idx)
			return
		}
	}
}

// clear empties the table, used when Queue.Compact discards states: stale
// slot references would otherwise suppress states that are in fact no
// longer present.
func (h *dedupHash) clear() {
	for i := range h.table {
		h.table[i] = 0
	}
}
