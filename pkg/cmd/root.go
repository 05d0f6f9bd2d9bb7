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

// Package cmd is the cobra-driven front end: it collects a config.Config
// either from flags, from a YAML batch file, or from the interactive
// prompt, then hands it to pkg/search and renders the result.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "oscisearch",
	Short: "Search for oscillators in outer-totalistic cellular automata.",
	Long:  "A search engine for periodic oscillators in two-state outer-totalistic cellular automata, such as Conway's Game of Life.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("oscisearch ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return exitCode
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

// exitCode lets a subcommand communicate a non-zero process exit status
// (e.g. "no pattern found") back through Execute without calling os.Exit
// itself. Apart from the flag accessors in util.go, which exit directly
// when a flag cannot be read, only cmd/oscisearch terminates the process.
var exitCode int

func setExitCode(c int) {
	exitCode = c
}
