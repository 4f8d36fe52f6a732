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
	"errors"
	"os"
	"testing"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore(t *testing.T) {
	dir := t.TempDir()
	store := NewRunStore(dir, storage.New(dir, nil), nil)

	older := &Report{ID: "run-1", StartedAt: time.Unix(100, 0), Cycles: 2, Deleted: 10, Cause: CauseNothingLeft}
	newer := &Report{ID: "run/2", StartedAt: time.Unix(200, 0), Cause: CauseFailed, Error: "delete: delete control missing"}

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, store.SaveReport(older))
		require.NoError(t, store.SaveReport(newer))

		loaded, err := store.LoadReport("run/2")
		require.NoError(t, err)
		assert.Equal(t, CauseFailed, loaded.Cause)
		assert.Equal(t, newer.Error, loaded.Error)
	})

	t.Run("LoadUnknown", func(t *testing.T) {
		_, err := store.LoadReport("nope")
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("ListMostRecentFirst", func(t *testing.T) {
		var ids []string
		for r, err := range store.ListReports() {
			require.NoError(t, err)
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"run/2", "run-1"}, ids)
	})

	t.Run("RejectsEmptyID", func(t *testing.T) {
		assert.Error(t, store.SaveReport(&Report{}))
	})
}

func TestRunStoreListEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewRunStore(dir, storage.New(dir, nil), nil)
	for _, err := range store.ListReports() {
		t.Fatalf("unexpected entry, err=%v", err)
	}
}

func TestRunStoreObservesRun(t *testing.T) {
	dir := t.TempDir()
	store := NewRunStore(dir, storage.New(dir, nil), nil)

	page := &fakePage{comments: 7}
	s, err := New(Options{
		Locator:  page,
		Config:   instantConfig(3),
		Observer: store,
		RunID:    "observed",
	})
	require.NoError(t, err)
	r := s.Run(t.Context(), nil)

	saved, err := store.LoadReport("observed")
	require.NoError(t, err)
	assert.Equal(t, r.Cycles, saved.Cycles)
	assert.Equal(t, 7, saved.Deleted)
	assert.Equal(t, CauseNothingLeft, saved.Cause)
	assert.False(t, saved.StartedAt.IsZero())
	assert.False(t, saved.FinishedAt.IsZero())
}
