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
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
	"github.com/conwaylife-dev/oscisearch/pkg/config"
)

// rpState names a step of the interactive prompt, mirroring ofind.c's
// readParams state machine (rp_rule .. rp_rows) one-for-one so the '^'
// back-navigation and '?' inline help behave identically.
type rpState int

const (
	rpRule rpState = iota
	rpPeriod
	rpSym
	rpComplete
	rpRotor
	rpLeft
	rpRight
	rpZLL
	rpDeep
	rpNRows
	rpRows
	rpDone
)

// prompter reads lines from in and writes prompts/help text to out,
// tracking whether in is an interactive terminal (so piped/batch stdin,
// as a test harness would supply, skips straight through defaults rather
// than hanging on unanswered prompts expecting '?' or '^' navigation).
type prompter struct {
	scanner    *bufio.Scanner
	out        io.Writer
	isTerminal bool
	helpWidth  int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{scanner: bufio.NewScanner(in), out: out, helpWidth: 78}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.isTerminal = true

		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			p.helpWidth = w
		}
	}

	return p
}

func (p *prompter) ask(prompt string) string {
	fmt.Fprint(p.out, prompt)

	if !p.scanner.Scan() {
		return ""
	}

	return strings.TrimLeft(p.scanner.Text(), " \t")
}

func (p *prompter) printHelp(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(p.out, wrap(line, p.helpWidth))
	}
}

func wrap(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}

	var sb strings.Builder

	for len(s) > width {
		cut := strings.LastIndexByte(s[:width+1], ' ')
		if cut <= 0 {
			cut = width
		}

		sb.WriteString(s[:cut])
		sb.WriteByte('\n')
		s = strings.TrimLeft(s[cut:], " ")
	}

	sb.WriteString(s)

	return sb.String()
}

func nonInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err != nil
}

// runInteractive drives the full parameter-collection prompt flow
// (§3 Ambient Stack: "Interactive front end"), returning a populated but
// not-yet-validated Config. It is only ever reached from the search
// subcommand when no flags or --config were supplied. When in is not a
// terminal, no prompt is shown and the defaults are returned as they are.
func runInteractive(in io.Reader, out io.Writer) (config.Config, error) {
	p := newPrompter(in, out)
	cfg := config.Default()

	if !p.isTerminal {
		return cfg, nil
	}

	fmt.Fprintln(out, "Type ? at any prompt for help, or ^ to return to a previous prompt.")

	state := rpRule
	nInitial := 0

	for state != rpDone {
		switch state {
		case rpRule:
			s := p.ask("Rule: ")
			if s == "?" {
				p.printHelp(
					"Enter the cellular automaton rule, in the form Bxxx/Syyy",
					"where xxx are digits representing numbers of neighbors that",
					"cause a cell to be born and yyy represent numbers of neighbors",
					"that cause a cell to die. For instance, for Conway's Life",
					"(the default), the rule would be written B3/S23.",
				)

				continue
			}

			rule, err := config.ParseRuleText(s)
			if err != nil {
				fmt.Fprintln(out, "Unrecognized rule format")
				continue
			}

			cfg.Rule = rule
			state = rpPeriod

		case rpPeriod:
			s := p.ask("Period: ")

			switch s {
			case "^":
				state = rpRule
				continue
			case "?":
				p.printHelp(
					"Enter the number of generations needed for the pattern",
					"to repeat its initial configuration.",
				)

				continue
			}

			period, err := strconv.Atoi(s)
			if nonInt(s) || err != nil || period < 1 || period > config.MaxPeriod {
				fmt.Fprintf(out, "Period must be an integer in the range 1..%d\n", config.MaxPeriod)
				continue
			}

			cfg.Period = period
			state = rpSym

		case rpSym:
			s := p.ask("Symmetry type (even, odd, none): ")

			switch s {
			case "^":
				state = rpPeriod
				continue
			case "?":
				p.printHelp(
					"This program is capable of restricting the patterns it seeks",
					"to those in which each row is symmetric (palindromic).",
					"To find patterns in which the rows are symmetric and have even",
					"length, type E. To find patterns in which the rows are symmetric",
					"and have odd length, type O. To find asymmetric patterns",
					"(the default), type N.",
				)

				continue
			}

			sym, err := automaton.ParseSymmetry(s)
			if err != nil {
				fmt.Fprintln(out, "Unrecognized symmetry option.")
				continue
			}

			cfg.Symmetry = sym
			state = rpComplete

		case rpComplete:
			s := p.ask("Allow symmetric completion of patterns (yes, no): ")

			switch s {
			case "^":
				state = rpSym
				continue
			case "?":
				p.printHelp(
					"If this program detects a symmetric configuration of rows",
					"it can immediately complete the pattern by repeating the",
					"sequence of rows in the opposite order. Type Y (the default)",
					"to allow symmetric completion, or N to disable it.",
				)

				continue
			case "y", "Y", "":
				cfg.AllowRowSym = true
			case "n", "N":
				cfg.AllowRowSym = false
			default:
				fmt.Fprintln(out, "Unrecognized completion option.")
				continue
			}

			state = rpRotor

		case rpRotor:
			prompt := "Rotor width: "
			if cfg.Period == 1 {
				prompt = "Still life width: "
			}

			s := p.ask(prompt)

			switch s {
			case "^":
				state = rpComplete
				continue
			case "?":
				p.helpWidthText(cfg.Symmetry)
				continue
			}

			width, err := strconv.Atoi(s)
			if nonInt(s) || err != nil || width <= 0 || width > config.MaxWidth {
				fmt.Fprintf(out, "Width must be an integer in the range 1..%d\n", config.MaxWidth)
				continue
			}

			cfg.RotorWidth = width

			if cfg.Period == 1 {
				state = rpZLL
			} else {
				state = rpLeft
			}

		case rpLeft:
			if cfg.Symmetry != automaton.SymmetryNone {
				cfg.LeftStatorWidth = 0
				state = rpRight
				continue
			}

			s := p.ask("Left stator width: ")

			switch s {
			case "^":
				state = rpRotor
				continue
			case "?":
				p.helpWidthText(cfg.Symmetry)
				continue
			}

			width, err := strconv.Atoi(s)
			if nonInt(s) || err != nil || width < 0 || width+cfg.RotorWidth > config.MaxWidth {
				fmt.Fprintf(out, "Width must be an integer in the range 0..%d\n", config.MaxWidth)
				continue
			}

			cfg.LeftStatorWidth = width
			state = rpRight

		case rpRight:
			prompt := "Right stator width: "
			if cfg.Symmetry != automaton.SymmetryNone {
				prompt = "Stator width: "
			}

			s := p.ask(prompt)

			if s == "^" {
				if cfg.Symmetry == automaton.SymmetryNone {
					state = rpLeft
				} else {
					state = rpRotor
				}

				continue
			}

			if s == "?" {
				p.helpWidthText(cfg.Symmetry)
				continue
			}

			width, err := strconv.Atoi(s)
			total := cfg.RotorWidth + cfg.LeftStatorWidth + width

			if nonInt(s) || err != nil || width < 0 || total > config.MaxWidth {
				fmt.Fprintf(out, "Width must be an integer in the range 0..%d\n", config.MaxWidth)
				continue
			}

			cfg.RightStatorWidth = width
			state = rpZLL

		case rpZLL:
			s := p.ask("Allow final stator rows to exceed width limit (yes, no): ")

			switch s {
			case "^":
				if cfg.Period == 1 {
					state = rpRotor
				} else {
					state = rpRight
				}

				continue
			case "?":
				p.printHelp(
					"The final stator rows are found by a different method from the",
					"main search and can search arbitrarily wide without much time",
					"penalty. Type no here to force the whole pattern to stay within",
					"the given width limits.",
				)

				continue
			case "n", "N":
				cfg.ZeroLotLine = true
			case "y", "Y", "":
				cfg.ZeroLotLine = false
			}

			state = rpDeep

		case rpDeep:
			s := p.ask("Maximum deepening amount: ")

			switch s {
			case "^":
				state = rpZLL
				continue
			case "?":
				p.printHelp(
					"When the breadth-first queue becomes full, the search proceeds",
					"depth-first to a level one past the previous iteration. If the",
					"deepening amount limit is reached, the search restricts",
					"additional rotor columns to stators. The default allows",
					"arbitrarily large deepening amounts.",
				)

				continue
			}

			deepen, err := strconv.Atoi(s)
			if nonInt(s) || err != nil || deepen < 0 {
				fmt.Fprintln(out, "Deepening amount must be an integer")
				continue
			}

			cfg.MaxDeepen = deepen
			state = rpNRows

		case rpNRows:
			s := p.ask("Number of initially specified rows: ")

			switch s {
			case "^":
				state = rpDeep
				continue
			case "?":
				p.printHelp(
					"By default, this program searches for patterns with empty cells",
					"above them. This option specifies nonempty cells in the rows",
					"above the pattern. A negative value -n indicates that the",
					"program should read two rows, but treat the first n of them as",
					"sparks that might or might not be present near the oscillator.",
				)

				continue
			}

			n, err := strconv.Atoi(s)
			if nonInt(s) || err != nil {
				fmt.Fprintln(out, "Number of initial rows must be an integer")
				continue
			}

			if n > 2 || n < -2 {
				fmt.Fprintln(out, "Must specify 0, 1, or 2 initial rows")
				continue
			}

			if n < 0 {
				cfg.SparkLevel = -n
				n = 2
			}

			nInitial = n
			state = rpRows

		case rpRows:
			if nInitial == 0 {
				state = rpDone
				continue
			}

			fmt.Fprintln(out, "Specify initial phase of each row; '.'=dead, 'o'=live.")

			rows := make([][]automaton.Row, nInitial)

			for r := 0; r < nInitial; r++ {
				phaseRows := make([]automaton.Row, cfg.Period)

				for phase := 0; phase < cfg.Period; phase++ {
					row, err := p.readRow(phase, cfg.Period, cfg.TotalWidth())
					if err != nil {
						return config.Config{}, err
					}

					phaseRows[phase] = row
				}

				rows[r] = phaseRows
			}

			cfg.InitialRows = rows
			state = rpDone
		}
	}

	return cfg, nil
}

func (p *prompter) helpWidthText(symmetry automaton.Symmetry) {
	switch symmetry {
	case automaton.SymmetryNone:
		p.printHelp(
			"Since you have specified no symmetry, the columns form three groups:",
			"the left stator, the rotor, and the right stator. The width",
			"parameters specify how wide to make each group.",
		)
	case automaton.SymmetryEven:
		p.printHelp(
			"Since you have specified even symmetry, the number of stator columns",
			"must be equal on each side of the rotor. The rotor column count is",
			"twice the rotor width parameter.",
		)
	case automaton.SymmetryOdd:
		p.printHelp(
			"Since you have specified odd symmetry, the number of stator columns",
			"must be equal on each side of the rotor. The rotor column count is",
			"twice the rotor width parameter minus one.",
		)
	}
}

func (p *prompter) readRow(phase, period, totalWidth int) (automaton.Row, error) {
	label := fmt.Sprintf("Phase %d: ", phase)
	if period > 9 && phase <= 9 {
		label = fmt.Sprintf("Phase  %d: ", phase)
	}

	for {
		s := p.ask(label)

		var (
			row automaton.Row
			bit uint
			bad bool
		)

		for _, ch := range s {
			switch ch {
			case '.':
			case 'o', 'O':
				row |= automaton.Row(1) << bit
			default:
				bad = true
			}

			bit++

			if int(bit) > totalWidth {
				fmt.Fprintln(p.out, "Too many cells in row!")
				bad = true

				break
			}
		}

		if bad {
			fmt.Fprintln(p.out, "unexpected character in row input!")
			continue
		}

		return row, nil
	}
}
