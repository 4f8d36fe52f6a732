// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// igsweep deletes the comments listed on the activity page of a logged-in
// browser tab, one batch at a time.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errRunFailed is returned when a run ended with a failure that has already
// been logged.
var errRunFailed = errors.New("run failed")

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configFile string
	dataDir    string
	debug      bool
	logJSON    bool

	stdout io.Writer
	stderr io.Writer
}

func (g *globalOptions) logger() zerolog.Logger {
	return newLogger(g.stderr, g.logJSON, g.debug)
}

// loadConfig reads the config file and applies --data-dir when given.
func (g *globalOptions) loadConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(g.configFile)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = g.dataDir
	}
	return cfg, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "igsweep",
		Short:         "Bulk-delete your comments from the activity page of a Chrome tab.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "YAML configuration file")
	pf.StringVar(&g.dataDir, "data-dir", DefaultConfig().DataDir, "Directory for the run history")
	pf.BoolVar(&g.debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&g.logJSON, "log-json", false, "Log JSON lines instead of text")

	root.AddCommand(
		newRunCmd(g),
		newHistoryCmd(g),
		newInspectCmd(g),
		newTokenCmd(g),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
