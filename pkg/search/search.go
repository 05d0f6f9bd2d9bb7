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

// Package search implements the oscillator search engine proper (§3, §4):
// the state-space queue, row-extension expansion, compatibility/
// reachability pruning, termination detection, and the hybrid
// breadth-first/iterative-deepening driver that ties them together.
package search

import "github.com/conwaylife-dev/oscisearch/pkg/config"

// Search runs a complete oscillator search to completion. onTick, if
// non-nil, is called periodically during the search; it has no way to stop
// it. cfg must already have passed Config.Validate; Search does not
// re-validate it.
//
// This is the single top-level entry point pkg/cmd drives: everything
// else in this package is an implementation detail of NewDriver.Run.
func Search(cfg config.Config, onTick func()) (*Result, error) {
	d := NewDriver(cfg)
	d.OnTick = onTick

	return d.Run()
}
