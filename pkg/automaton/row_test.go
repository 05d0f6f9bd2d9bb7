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
	"github.com/stretchr/testify/require"
)

func TestParseSymmetry_AcceptsFrontEndTokens(t *testing.T) {
	cases := []struct {
		tok  string
		want Symmetry
	}{
		{"", SymmetryNone},
		{"n", SymmetryNone},
		{"N", SymmetryNone},
		{"none", SymmetryNone},
		{"o", SymmetryOdd},
		{"O", SymmetryOdd},
		{"odd", SymmetryOdd},
		{"e", SymmetryEven},
		{"E", SymmetryEven},
		{"even", SymmetryEven},
	}

	for _, c := range cases {
		got, err := ParseSymmetry(c.tok)
		require.NoError(t, err, "token %q", c.tok)
		assert.Equal(t, c.want, got, "token %q", c.tok)
	}
}

func TestParseSymmetry_RejectsUnknownToken(t *testing.T) {
	_, err := ParseSymmetry("diagonal")
	assert.Error(t, err)
}

func TestSymmetry_StringRoundTrip(t *testing.T) {
	for _, s := range []Symmetry{SymmetryNone, SymmetryOdd, SymmetryEven} {
		parsed, err := ParseSymmetry(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}
