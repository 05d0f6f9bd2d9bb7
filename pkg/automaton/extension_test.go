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
package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// deadRule never births and never survives: every cell is dead in every
// successor generation regardless of neighbor count. It isolates the
// extension generator's row enumeration from the rule-table lookup itself,
// giving an unambiguous ground truth: the target ("below") row must be
// all-zero, and when it is, literally every width-bounded candidate is a
// valid extension.
const deadRule uint32 = 0

func countRows(t *testing.T, e *Extender) int {
	t.Helper()

	n := 0
	ok := e.ListRows(func(Row) bool {
		n++
		return true
	})
	assert.True(t, ok, "ListRows should not report buffer exhaustion for a tiny width")

	return n
}

func TestListRows_DeadRuleAcceptsEveryCandidateForZeroTarget(t *testing.T) {
	rules := NewRuleSet(deadRule)
	e := NewExtender(rules, SymmetryNone, 3)

	e.SetupExtensions(0, 0, 0, AllSparks)

	assert.Equal(t, 1<<3, countRows(t, e), "every 3-bit candidate should be admissible when the rule always produces a dead successor")
}

func TestListRows_DeadRuleRejectsNonzeroTarget(t *testing.T) {
	rules := NewRuleSet(deadRule)
	e := NewExtender(rules, SymmetryNone, 3)

	e.SetupExtensions(0, 0, 1, AllSparks)

	assert.Equal(t, 0, countRows(t, e), "no candidate can produce a live successor cell under a rule with no births or survivals")
}

func TestSparkMask_ZeroLevelIsUnrestricted(t *testing.T) {
	assert.Equal(t, AllSparks, SparkMask(0))
}

func TestSparkMask_DistinctLevelsRelaxDifferentContext(t *testing.T) {
	level1 := SparkMask(1)
	level2 := SparkMask(2)

	assert.NotEqual(t, AllSparks, level1)
	assert.NotEqual(t, AllSparks, level2)
	assert.NotEqual(t, level1, level2, "spark levels 1 and 2 must relax distinct context masks")
}

func TestLastExtension_ReflectsFinalColumn(t *testing.T) {
	rules := NewRuleSet(deadRule)
	e := NewExtender(rules, SymmetryNone, 4)

	e.SetupExtensions(0, 0, 0, AllSparks)

	assert.Equal(t, e.extensions[3], e.LastExtension(4))
}
