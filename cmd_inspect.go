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

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttbt-io/igsweep/snapshot"
)

// errSelectorsMismatch is returned by inspect when a required control is not
// matched. The report has already been printed.
var errSelectorsMismatch = errors.New("selectors do not match the page")

func newInspectCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <page.html>",
		Short: "Check the selectors against a saved page",
		Long: `Check the configured selectors against a saved copy of the activity page,
such as the HTML written by "igsweep run --dump-dir". Use it to update the
selectors section of the config file after a UI change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rep, err := snapshot.Inspect(f, cfg.Selectors)
			if err != nil {
				return err
			}
			if err := rep.Write(g.stdout); err != nil {
				return err
			}
			if !rep.OK() {
				return errSelectorsMismatch
			}
			return nil
		},
	}
}
