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
package config

import "fmt"

// ParseRuleText parses the textual Bxxx/Syyy rule notation (e.g. "B3/S23"
// for Conway's Life) into the 18-bit rule bitmap ofind.c's readRule builds.
// An empty string yields the built-in default (Conway's Life). This is an
// external-collaborator concern: the interactive front end in pkg/cmd wraps
// it with the "^"-to-go-back and "?"-for-help navigation that the original
// prompt loop offered.
func ParseRuleText(s string) (uint32, error) {
	if s == "" {
		return Default().Rule, nil
	}

	var (
		rule  uint32
		shift = 0
	)

	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			rule |= 1 << uint(shift+int(ch-'0'))
		case ch == 'b' || ch == 'B':
			shift = 9
		case ch == 's' || ch == 'S':
			shift = 0
		case ch == '/':
			shift = 9 - shift
		default:
			return 0, fmt.Errorf("unrecognized rule format: %q", s)
		}
	}

	return rule, nil
}

// FormatRuleText renders a rule bitmap back into Bxxx/Syyy form.
func FormatRuleText(rule uint32) string {
	birth := "B"
	for i := 0; i <= 8; i++ {
		if rule&(1<<uint(9+i)) != 0 {
			birth += fmt.Sprintf("%d", i)
		}
	}

	survive := "S"
	for i := 0; i <= 8; i++ {
		if rule&(1<<uint(i)) != 0 {
			survive += fmt.Sprintf("%d", i)
		}
	}

	return birth + "/" + survive
}
