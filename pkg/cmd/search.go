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
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/conwaylife-dev/oscisearch/pkg/automaton"
	"github.com/conwaylife-dev/oscisearch/pkg/config"
	"github.com/conwaylife-dev/oscisearch/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags]",
	Short: "run an oscillator search.",
	Long: `Run a single oscillator search to completion, reporting either the
pattern found, a queue-exhausted report, or the deepest partial search
line, depending on how the search ends.

With no flags and no --config, and when standard input is a terminal,
drops into an interactive prompt that walks through the same parameters
one at a time (matching ofind's original readParams front end).`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		cfgPath := GetString(cmd, "config")

		var (
			cfg config.Config
			err error
		)

		switch {
		case cfgPath != "":
			cfg, err = config.LoadFile(cfgPath)
		case cmd.Flags().NFlag() == 0:
			cfg, err = runInteractive(os.Stdin, os.Stdout)
		default:
			cfg, err = configFromFlags(cmd)
		}

		if err != nil {
			log.WithError(err).Error("could not build search configuration")
			setExitCode(2)

			return
		}

		if err := cfg.Validate(); err != nil {
			log.WithError(err).Error("invalid configuration")
			setExitCode(2)

			return
		}

		var ticks int

		result, err := search.Search(cfg, func() {
			ticks++
		})
		if err != nil {
			log.WithError(err).Error("search failed")
			setExitCode(1)

			return
		}

		for _, line := range result.Lines {
			fmt.Println(line)
		}

		switch result.Status {
		case search.StatusSuccess:
			setExitCode(0)
		case search.StatusExhausted:
			fmt.Println("search space exhausted, no oscillator found")
			setExitCode(1)
		case search.StatusDeepestLine:
			setExitCode(1)
		case search.StatusNoCurrentLine:
			fmt.Println("unable to find current search line")
			setExitCode(1)
		}
	},
}

func configFromFlags(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	rule, err := config.ParseRuleText(GetString(cmd, "rule"))
	if err != nil {
		return config.Config{}, err
	}

	cfg.Rule = rule
	cfg.Period = GetInt(cmd, "period")

	symmetry, err := automaton.ParseSymmetry(GetString(cmd, "symmetry"))
	if err != nil {
		return config.Config{}, err
	}

	cfg.Symmetry = symmetry
	cfg.AllowRowSym = GetFlag(cmd, "allow-row-symmetry")
	cfg.RotorWidth = GetInt(cmd, "rotor-width")
	cfg.LeftStatorWidth = GetInt(cmd, "left-stator-width")
	cfg.RightStatorWidth = GetInt(cmd, "right-stator-width")
	cfg.ZeroLotLine = GetFlag(cmd, "zero-lot-line")
	cfg.MaxDeepen = GetInt(cmd, "max-deepen")
	cfg.SparkLevel = GetInt(cmd, "spark-level")
	cfg.Hashing = GetFlag(cmd, "hashing")
	cfg.Seed = GetInt64(cmd, "seed")
	cfg.QueueCapacity = GetInt(cmd, "queue-capacity")
	cfg.HashSize = GetInt(cmd, "hash-size")
	cfg.RowBufferCapacity = GetInt(cmd, "row-buffer-capacity")
	cfg.CompatCapacity = GetInt(cmd, "compat-capacity")

	return cfg, nil
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("config", "", "load parameters from a YAML batch-config file")
	searchCmd.Flags().String("rule", "B3/S23", "outer-totalistic rule in Bxxx/Syyy notation")
	searchCmd.Flags().Int("period", 5, "oscillator period")
	searchCmd.Flags().String("symmetry", "e", "row symmetry: n(one), o(dd), e(ven)")
	searchCmd.Flags().Bool("allow-row-symmetry", true, "allow the early row-symmetry termination shortcut")
	searchCmd.Flags().Int("rotor-width", 4, "rotor width in columns")
	searchCmd.Flags().Int("left-stator-width", 0, "left stator width in columns (symmetry none only)")
	searchCmd.Flags().Int("right-stator-width", 0, "right stator width in columns")
	searchCmd.Flags().Bool("zero-lot-line", false, "disable extra stator-closure slack columns")
	searchCmd.Flags().Int("max-deepen", 0, "shrink the rotor after this many stalled deepening rounds (0 disables)")
	searchCmd.Flags().Int("spark-level", 0, "relax context above the bounding box for this many generations (0, 1, or 2)")
	searchCmd.Flags().Bool("hashing", true, "enable duplicate-state elimination")
	searchCmd.Flags().Int64("seed", config.DefaultSeed, "dedup hash salt seed")
	searchCmd.Flags().Int("queue-capacity", config.DefaultQueueCapacity, "state queue capacity")
	searchCmd.Flags().Int("hash-size", config.DefaultHashSize, "dedup hash table size")
	searchCmd.Flags().Int("row-buffer-capacity", config.DefaultRowBufferCapacity, "candidate row buffer capacity")
	searchCmd.Flags().Int("compat-capacity", config.DefaultCompatCapacity, "compatibility/reachability matrix capacity")
}
