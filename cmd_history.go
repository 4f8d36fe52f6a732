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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ttbt-io/igsweep/sweeper"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List previous runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := g.logger()
			store, err := openStore(cfg.DataDir, logger)
			if err != nil {
				return err
			}
			runs := sweeper.NewRunStore(cfg.DataDir, store, &logger)
			if len(args) == 1 {
				r, err := runs.LoadReport(args[0])
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("unknown run %q", args[0])
				}
				if err != nil {
					return err
				}
				writeReport(g.stdout, r)
				return nil
			}
			return writeHistory(g.stdout, runs, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many runs. 0 shows all")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func duration(r *sweeper.Report) string {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func cause(r *sweeper.Report) string {
	if r.Cause == "" {
		return "running"
	}
	return string(r.Cause)
}

// writeHistory prints the most recent runs, newest first.
func writeHistory(w io.Writer, runs *sweeper.RunStore, limit int) error {
	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Cycles", "Deleted", "Result"})
	n := 0
	total := 0
	for r, err := range runs.ListReports() {
		if err != nil {
			return err
		}
		if limit > 0 && n >= limit {
			break
		}
		n++
		total += r.Deleted
		t.AppendRow(table.Row{r.ID, formatTime(r.StartedAt), duration(r), r.Cycles, r.Deleted, cause(r)})
	}
	if n == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	t.AppendFooter(table.Row{"", "", "", "", total, ""})
	t.Render()
	return nil
}

func writeReport(w io.Writer, r *sweeper.Report) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Run", r.ID},
		{"Started", formatTime(r.StartedAt)},
		{"Finished", formatTime(r.FinishedAt)},
		{"Duration", duration(r)},
		{"Cycles", r.Cycles},
		{"Deleted", r.Deleted},
		{"Result", cause(r)},
	})
	if r.Error != "" {
		t.AppendRow(table.Row{"Error", r.Error})
	}
	t.Render()
}
