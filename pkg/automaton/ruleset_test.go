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

// conwayLife is B3/S23 encoded per §6: rule>>9 is the birth mask, rule&0x1ff
// is the survival mask.
const conwayLife uint32 = 4108

func TestRuleSet_BirthSurvivalMasks(t *testing.T) {
	rs := NewRuleSet(conwayLife)

	assert.Equal(t, uint32(1<<3), rs.BirthMask(), "B3 should be the only birth bit set")
	assert.Equal(t, uint32(1<<2|1<<3), rs.SurvivalMask(), "S23 should set bits 2 and 3")
}

func TestExtIdx_PacksArgumentsWithoutOverlap(t *testing.T) {
	// Changing only one argument must change only its own bit field.
	base := ExtIdx(0, 0, 0, 0)

	withX := ExtIdx(0xff, 0, 0, 0)
	assert.Equal(t, uint32(0xff<<7), withX^base)

	withA := ExtIdx(0, 7, 0, 0)
	assert.Equal(t, uint32(7<<4), withA^base)

	withB := ExtIdx(0, 0, 7, 0)
	assert.Equal(t, uint32(7<<1), withB^base)

	withC := ExtIdx(0, 0, 0, 2)
	assert.Equal(t, uint32(1), withC^base)
}

func TestExtIdx_OnlyLowBitsOfContextMatter(t *testing.T) {
	// a and b are masked to their low 3 bits, c to its bit 1, matching
	// ofind.c's EXTIDX macro.
	assert.Equal(t, ExtIdx(1, 3, 5, 2), ExtIdx(1, 3|8, 5|16, 2))
	assert.Equal(t, ExtIdx(1, 3, 5, 2), ExtIdx(1, 3, 5, 2|1))
}

func TestMakeDownShifts_LeavesTopEntryZero(t *testing.T) {
	rs := NewRuleSet(conwayLife)

	// ofind.c's makeDownShifts loop runs for x < 0377 (255 decimal) and
	// never visits x==255, so downShift[255] keeps its zero value.
	assert.Equal(t, int32(0), rs.downShiftOf(255))
}

func TestNewRuleSet_DeterministicAcrossInstances(t *testing.T) {
	a := NewRuleSet(conwayLife)
	b := NewRuleSet(conwayLife)

	assert.Equal(t, a.extTab, b.extTab)
	assert.Equal(t, a.downShift, b.downShift)
}
