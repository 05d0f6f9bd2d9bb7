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
	log "github.com/sirupsen/logrus"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
	"github.com/conwaylife-dev/oscisearch/pkg/config"
)

// Driver runs the hybrid breadth-first/iterative-deepening oscillator
// search (§4.2–§4.5): it repeatedly dequeues the oldest unprocessed state,
// expands its children, and -- once the queue is half full -- runs a bounded
// lookahead pass to prune dead frontier branches before physically
// reclaiming their memory.
type Driver struct {
	cfg        config.Config
	rules      *automaton.RuleSet
	extender   *automaton.Extender
	terminator *Terminator
	queue      *Queue
	exp        *expander

	lastDepth int

	// OnTick is invoked periodically during the search's inner loops,
	// replacing ofind.c's cooperative NICE() macro; nil disables it.
	OnTick func()
}

// NewDriver builds a Driver from a validated configuration. Callers should
// call Config.Validate before this; NewDriver does not re-validate.
func NewDriver(cfg config.Config) *Driver {
	rules := automaton.NewRuleSet(cfg.Rule)
	extender := automaton.NewExtender(rules, cfg.Symmetry, cfg.TotalWidth())
	terminator := NewTerminator(cfg.Rule, cfg.Symmetry, cfg.AllowRowSym, cfg.ZeroLotLine, cfg.TotalWidth())
	queue := NewQueue(cfg.Period, cfg.QueueCapacity, cfg.Hashing, cfg.Seed, cfg.HashSize)
	exp := newExpander(extender, cfg.Period, cfg.RowBufferCapacity, cfg.StatMask(), cfg.TotalWidth(), cfg.CompatCapacity)

	return &Driver{
		cfg:        cfg,
		rules:      rules,
		extender:   extender,
		terminator: terminator,
		queue:      queue,
		exp:        exp,
	}
}

func (d *Driver) tick() {
	if d.OnTick != nil {
		d.OnTick()
	}
}

// Run drives the search to completion (§4.2 Breadth-First Driver), seeding
// any configured initial rows first. It returns the found oscillator, an
// exhausted-space report, or a deepest-line dump, matching ofind.c's
// breadthFirst/success/failure trio without ever calling exit.
func (d *Driver) Run() (*Result, error) {
	if len(d.cfg.InitialRows) > 0 {
		last, err := d.queue.SeedInitialRows(d.cfg.InitialRows)
		if err != nil {
			return nil, err
		}

		d.queue.ResetCursor(last)
	}

	for d.queue.HasUnprocessed() {
		d.tick()

		if d.queue.Len() >= d.cfg.QueueCapacity/2 {
			res, err := d.compact()
			if err != nil {
				return nil, err
			}

			if res != nil {
				return res, nil
			}
		}

		idx := d.queue.NextUnprocessed()

		res, err := d.process(idx)
		if err != nil {
			return nil, err
		}

		if res != nil {
			return res, nil
		}
	}

	return d.deepestLine()
}

// ancestorRows gathers a state's own rows, its parent's rows, and its
// grandparent's rows, following ofind.c's convention that the root is its
// own parent: when the parent is itself the root, the grandparent rows
// fall back to the parent's rows rather than being nil.
func (d *Driver) ancestorRows(idx int) (rows, parentRows, grandparentRows []automaton.Row, isRoot bool) {
	rows = d.queue.Rows(idx)
	isRoot = d.queue.IsRoot(idx)

	if isRoot {
		return rows, nil, nil, true
	}

	parentIdx := d.queue.Parent(idx)
	parentRows = d.queue.Rows(parentIdx)

	if d.queue.IsRoot(parentIdx) {
		grandparentRows = parentRows
	} else {
		grandparentRows = d.queue.Rows(d.queue.Parent(parentIdx))
	}

	return rows, parentRows, grandparentRows, false
}

// nontrivial reports whether any state on the path from idx back to the
// root has a row set with no proper sub-period, ruling out the degenerate
// case where every ancestor (and idx itself) is actually periodic with a
// smaller period than configured (§4.6 nontrivial).
func (d *Driver) nontrivial(idx int) bool {
	for !d.queue.IsRoot(idx) {
		if Aperiodic(d.queue.Rows(idx)) {
			return true
		}

		idx = d.queue.Parent(idx)
	}

	return false
}

// sparkMaskFor computes the relaxed-context mask for a state's expansion,
// porting ofind.c's depth-dependent spark-level schedule (§4.1 Supplemented
// Features: spark levels 1 and 2): the relaxation only applies while the
// state is still within sparkLevel generations of the root.
func (d *Driver) sparkMaskFor(idx int) uint32 {
	if d.cfg.SparkLevel == 0 {
		return automaton.AllSparks
	}

	p := idx
	for i := 0; i < 2 && !d.queue.IsRoot(p); i++ {
		p = d.queue.Parent(p)
	}

	level := 0
	if !d.queue.IsRoot(p) {
		level = 1

		if !d.queue.IsRoot(d.queue.Parent(p)) {
			level = 2
		}
	}

	if d.cfg.SparkLevel <= level {
		return automaton.AllSparks
	}

	if d.cfg.SparkLevel > level+1 {
		return automaton.SparkMask(2)
	}

	return automaton.SparkMask(1)
}

// process expands a single state's children into the queue after first
// checking whether it already completes an oscillator (§4.2 process).
func (d *Driver) process(idx int) (*Result, error) {
	d.tick()

	rows, parentRows, grandparentRows, isRoot := d.ancestorRows(idx)

	if ok, rowSym, offset := d.terminator.Terminal(rows, parentRows, grandparentRows, isRoot); ok && d.nontrivial(idx) {
		res, err := d.buildResult(idx, rowSym, offset)
		if err != nil {
			return nil, err
		}

		if res != nil {
			return res, nil
		}
	}

	sparkMask := d.sparkMaskFor(idx)

	middleRows := rows
	if !isRoot {
		middleRows = parentRows
	}

	err := d.exp.expand(rows, middleRows, sparkMask, func(childRows []automaton.Row) error {
		_, _, err := d.queue.Enqueue(idx, childRows)
		return err
	})

	return nil, err
}

// buildResult renders a confirmed terminal-and-nontrivial state into a
// Result (§4.7/§4.8 success). When row symmetry didn't already close the
// pattern, an asymmetric stator closure (Terminate) must also succeed; if
// it doesn't, the state is not actually a complete oscillator and the
// search continues past it, exactly as ofind.c's success() silently
// returning does.
func (d *Driver) buildResult(idx int, rowSym automaton.Symmetry, offset int) (*Result, error) {
	if rowSym == automaton.SymmetryNone {
		rows, parentRows, _, _ := d.ancestorRows(idx)
		if !d.terminator.Terminate(rows, parentRows) {
			return nil, nil
		}
	}

	var phase0, phaseOffset []automaton.Row

	s := idx
	for !d.queue.IsRoot(s) {
		rows := d.queue.Rows(s)
		phase0 = append(phase0, rows[0])
		phaseOffset = append(phaseOffset, rows[offset])
		s = d.queue.Parent(s)
	}

	rend := &renderer{
		symmetry:       d.cfg.Symmetry,
		totalWidth:     d.cfg.TotalWidth(),
		addlStatorCols: d.terminator.AddlStatorCols(),
	}

	lines := []string{""}

	j := len(phase0)
	for i := j - 1; i >= 0; i-- {
		lines = append(lines, rend.putRow(phase0[i]))
	}

	switch rowSym {
	case automaton.SymmetryEven:
		for i := 2; i < j; i++ {
			lines = append(lines, rend.putRow(phaseOffset[i]))
		}

		return &Result{Status: StatusSuccess, Lines: lines}, nil

	case automaton.SymmetryOdd:
		for i := 3; i < j; i++ {
			lines = append(lines, rend.putRow(phaseOffset[i]))
		}

		return &Result{Status: StatusSuccess, Lines: lines}, nil
	}

	lines = append(lines, d.terminator.borderLines()...)

	return &Result{Status: StatusSuccess, Lines: lines}, nil
}

// depthFirst is a pure existence check: does idx have a live continuation
// at least numLevels deep? Every state it creates while answering that
// question is rolled back before returning, UNLESS process() discovers an
// actual completed oscillator along the way, in which case that Result
// propagates immediately (§4.5 depthFirst).
func (d *Driver) depthFirst(idx, numLevels int) (bool, *Result, error) {
	d.tick()

	mark := d.queue.Len()

	if numLevels == 0 {
		return true, nil, nil
	}

	res, err := d.process(idx)
	if err != nil {
		return false, nil, err
	}

	if res != nil {
		return false, res, nil
	}

	for d.queue.Len() > mark {
		child := d.queue.Len() - 1

		ok, childRes, err := d.depthFirst(child, numLevels-1)
		if err != nil {
			return false, nil, err
		}

		if childRes != nil {
			return false, childRes, nil
		}

		if ok {
			d.queue.Truncate(mark)
			return true, nil, nil
		}

		d.queue.Truncate(child)
	}

	d.queue.Truncate(mark)

	return false, nil, nil
}

// deepen runs a bounded lookahead from every state currently in the
// unprocessed frontier, marking any with no live continuation within
// numLevels as unused so the next Compact call reclaims it (§4.5 deepen).
// Hashing is disabled for the duration since every trial state it creates
// is rolled back and must not poison the dedup table.
func (d *Driver) deepen(numLevels int) (*Result, error) {
	d.queue.SetHashing(false)
	defer d.queue.SetHashing(d.cfg.Hashing)

	end := d.queue.Len()

	for s := d.queue.Cursor(); s < end; s++ {
		d.tick()

		ok, res, err := d.depthFirst(s, numLevels)
		if err != nil {
			return nil, err
		}

		if res != nil {
			return res, nil
		}

		if !ok {
			d.queue.MarkUnused(s)
		}
	}

	return nil, nil
}

func (d *Driver) depthOf(idx int) int {
	depth := 0
	for !d.queue.IsRoot(idx) {
		idx = d.queue.Parent(idx)
		depth++
	}

	return depth
}

// shrinkRotor narrows the rotor by one column, which joins the right
// stator, and -- when a left stator is present -- by one more column, which
// joins the left stator; it then rebuilds every width-dependent table (§4.1
// Supplemented Features, compact()'s "shrinking rotor" branch). This is a
// last-resort response to a search that keeps filling the queue without
// making depth progress.
func (d *Driver) shrinkRotor() {
	d.cfg.RotorWidth--
	d.cfg.RightStatorWidth++

	if d.cfg.LeftStatorWidth > 0 && d.cfg.RotorWidth > 0 {
		d.cfg.LeftStatorWidth++
		d.cfg.RotorWidth--
	}

	d.extender = automaton.NewExtender(d.rules, d.cfg.Symmetry, d.cfg.TotalWidth())
	d.terminator = NewTerminator(d.cfg.Rule, d.cfg.Symmetry, d.cfg.AllowRowSym, d.cfg.ZeroLotLine, d.cfg.TotalWidth())
	d.exp = newExpander(d.extender, d.cfg.Period, d.cfg.RowBufferCapacity, d.cfg.StatMask(), d.cfg.TotalWidth(), d.cfg.CompatCapacity)
}

// compact runs the deepen-then-reclaim cycle ofind.c's compact() performs
// once the queue is half full (§4.5), leaving the other half for the
// children that expansion and lookahead append. Its return Result is non-nil only if the
// deepen lookahead itself stumbled onto a genuine oscillator.
func (d *Driver) compact() (*Result, error) {
	oldFirstUnprocessed := d.queue.Cursor()
	oldFirstFree := d.queue.Len()

	frontierDepth := d.depthOf(oldFirstUnprocessed)
	if frontierDepth > d.lastDepth {
		d.lastDepth = frontierDepth
	}

	d.lastDepth++

	log.Infof("queue full at depth %d (%d/%d used)", frontierDepth, oldFirstFree-oldFirstUnprocessed, oldFirstFree)

	if d.cfg.MaxDeepen > 0 && d.cfg.RotorWidth > 0 && d.lastDepth-frontierDepth > d.cfg.MaxDeepen {
		d.shrinkRotor()
		d.lastDepth = frontierDepth + 1

		log.Info("shrinking rotor")
	}

	log.Debugf("deepening %d levels", d.lastDepth-frontierDepth)

	res, err := d.deepen(d.lastDepth - frontierDepth)
	if err != nil {
		return nil, err
	}

	if res != nil {
		return res, nil
	}

	d.queue.Compact()

	log.Infof("compacted (%d/%d used)", d.queue.Len()-d.queue.Cursor(), d.queue.Len())

	return nil, nil
}

// deepestLine reports the deepest line still in the queue once the search
// space is exhausted -- here that means every root-reachable state has been
// fully processed -- mirroring ofind.c's failure()/printstatus(), which
// render the deepest partial line rather than nothing.
func (d *Driver) deepestLine() (*Result, error) {
	idx := d.queue.Cursor() - 1
	if idx < 0 || idx >= d.queue.Len() {
		return &Result{Status: StatusNoCurrentLine}, nil
	}

	rend := &renderer{
		symmetry:       d.cfg.Symmetry,
		totalWidth:     d.cfg.TotalWidth(),
		addlStatorCols: d.terminator.AddlStatorCols(),
	}

	var lines []string
	for !d.queue.IsRoot(idx) {
		rows := d.queue.Rows(idx)
		lines = append(lines, rend.putRow(rows[0]))
		idx = d.queue.Parent(idx)
	}

	if len(lines) == 0 {
		return &Result{Status: StatusExhausted}, nil
	}

	return &Result{Status: StatusDeepestLine, Lines: lines}, nil
}
