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

package sweeper

import (
	"fmt"
	"iter"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/c2FmZQ/storage"
	"github.com/rs/zerolog"
)

// RunStore persists run reports. The sweep itself keeps no state between
// runs; the store is history only.
type RunStore struct {
	DataDir string
	storage *storage.Storage
	logger  zerolog.Logger
}

// NewRunStore creates a RunStore rooted at dataDir.
func NewRunStore(dataDir string, s *storage.Storage, logger *zerolog.Logger) *RunStore {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &RunStore{DataDir: dataDir, storage: s, logger: l}
}

func runFilename(id string) string {
	return filepath.Join("runs", fmt.Sprintf("%s.json", url.PathEscape(id)))
}

// SaveReport writes a report atomically.
func (rs *RunStore) SaveReport(r *Report) error {
	if r.ID == "" {
		return fmt.Errorf("report has no id")
	}
	if err := rs.storage.SaveDataFile(runFilename(r.ID), r); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

// LoadReport reads the report of run id. It returns os.ErrNotExist when the
// run is unknown.
func (rs *RunStore) LoadReport(id string) (*Report, error) {
	var r Report
	if err := rs.storage.ReadDataFile(runFilename(id), &r); err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	return &r, nil
}

// ListReports returns an iterator over all stored reports, most recent
// first.
func (rs *RunStore) ListReports() iter.Seq2[*Report, error] {
	return func(yield func(*Report, error) bool) {
		files, err := os.ReadDir(filepath.Join(rs.DataDir, "runs"))
		if err != nil {
			if !os.IsNotExist(err) {
				yield(nil, fmt.Errorf("could not read runs directory: %w", err))
			}
			return
		}

		var reports []*Report
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			id, err := url.PathUnescape(strings.TrimSuffix(file.Name(), ".json"))
			if err != nil {
				continue
			}
			r, err := rs.LoadReport(id)
			if err != nil {
				rs.logger.Warn().Err(err).Str("run", id).Msg("could not load run report")
				continue
			}
			reports = append(reports, r)
		}
		slices.SortFunc(reports, func(a, b *Report) int {
			return b.StartedAt.Compare(a.StartedAt)
		})
		for _, r := range reports {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Notify implements Observer. A report is written when a run starts and
// updated after every cycle, so an interrupted run still leaves a record.
// Save failures are logged; they never affect the run.
func (rs *RunStore) Notify(e Event) {
	var r *Report
	switch e.Type {
	case EventRunStarted:
		r = &Report{ID: e.RunID, StartedAt: e.Time}
	case EventCycleCompleted, EventRunFinished:
		loaded, err := rs.LoadReport(e.RunID)
		if err != nil {
			loaded = &Report{ID: e.RunID, StartedAt: e.Time}
		}
		r = loaded
		r.Cycles = e.Cycle
		r.Deleted = e.Deleted
		if e.Type == EventRunFinished {
			r.FinishedAt = e.Time
			r.Cause = e.Cause
			r.Error = e.Error
		}
	default:
		return
	}
	if err := rs.SaveReport(r); err != nil {
		rs.logger.Warn().Err(err).Str("run", e.RunID).Msg("could not save run report")
	}
}
