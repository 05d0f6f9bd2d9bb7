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

import "fmt"

// ErrorKind classifies a fatal search failure (§7 Error Handling Design).
// The core never raises a recoverable error: every ErrorKind here reaches
// the driver only along the fatal path.
type ErrorKind int

const (
	// ErrCapacity indicates some fixed-size table overflowed: the
	// candidate-row buffer, the compatibility/reachability blocks, or the
	// state queue itself could not be grown or compacted further.
	ErrCapacity ErrorKind = iota
	// ErrInvariant indicates a logical invariant was violated (e.g.
	// compaction could not find a state's parent). Implementations are
	// expected to treat this as an assertion failure.
	ErrInvariant
)

// SearchError is the single error type the core ever returns along its
// fatal path. It is not used for "no pattern found", which is a successful
// (if disappointing) outcome reported via Result, not an error.
type SearchError struct {
	Kind ErrorKind
	Msg  string
}

func (e *SearchError) Error() string {
	return e.Msg
}

func capacityErrorf(format string, args ...any) error {
	return &SearchError{Kind: ErrCapacity, Msg: fmt.Sprintf(format, args...)}
}

func invariantErrorf(format string, args ...any) error {
	return &SearchError{Kind: ErrInvariant, Msg: fmt.Sprintf(format, args...)}
}
