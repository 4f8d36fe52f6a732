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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRunDeletesInBatches(t *testing.T) {
	page := &fakePage{comments: 12}
	var buf bytes.Buffer
	s := newTestSweeper(t, page, instantConfig(5), &buf, nil)

	r := s.Run(context.Background(), &StopToken{})

	require.NoError(t, r.Err)
	assert.Equal(t, CauseNothingLeft, r.Cause)
	assert.True(t, r.OK())
	assert.Equal(t, 3, r.Cycles)
	assert.Equal(t, 12, r.Deleted)
	assert.Equal(t, []int{5, 5, 2}, page.batches)
	assert.Equal(t, 3, page.count("click:delete"))
	assert.Equal(t, 3, page.count("activate:confirm"))
	assert.Equal(t, 0, page.comments)

	assertGolden(t, []string{
		"Starting comment deletion",
		"Cycle 1: deleted 5 comments.",
		"Cycle 2: deleted 5 comments.",
		"Cycle 3: deleted 2 comments.",
		"No comments left to delete",
		"Stopped: nothing left. Deleted 12 comments in 3 cycles.",
	}, logMessages(t, &buf))
}

func TestFirstCycleSelectsAtMostMax(t *testing.T) {
	page := &fakePage{comments: 12}
	var buf bytes.Buffer
	cfg := instantConfig(5)
	cfg.MaxCycles = 1
	s := newTestSweeper(t, page, cfg, &buf, nil)

	r := s.Run(context.Background(), nil)

	require.NoError(t, r.Err)
	assert.Equal(t, CauseCycleLimit, r.Cause)
	assert.Equal(t, []int{5}, page.batches)
	assert.Equal(t, 5, page.count("click:item"))
	assert.Equal(t, 1, page.count("click:delete"))
	assert.Equal(t, 1, page.count("activate:confirm"))
	assert.Contains(t, logMessages(t, &buf), "Cycle 1: deleted 5 comments.")
}

func TestRunNothingToDelete(t *testing.T) {
	page := &fakePage{}
	var buf bytes.Buffer
	s := newTestSweeper(t, page, instantConfig(5), &buf, nil)

	r := s.Run(context.Background(), &StopToken{})

	require.NoError(t, r.Err)
	assert.Equal(t, CauseNothingLeft, r.Cause)
	assert.Zero(t, r.Cycles)
	assert.Equal(t, 1, page.count("click:select"))
	assert.Zero(t, page.count("click:delete"), "delete must not be attempted")
	assert.Zero(t, page.count("focus:confirm"), "confirm must not be attempted")
	assert.Contains(t, logMessages(t, &buf), "No comments left to delete")
}

func TestStopBeforeFirstCycle(t *testing.T) {
	page := &fakePage{comments: 3}
	var buf bytes.Buffer
	s := newTestSweeper(t, page, instantConfig(5), &buf, nil)

	stop := &StopToken{}
	stop.Stop()
	r := s.Run(context.Background(), stop)

	assert.Equal(t, CauseStopRequested, r.Cause)
	assert.NoError(t, r.Err)
	assert.Empty(t, page.calls, "no cycle should start")
	assert.Equal(t, 3, page.comments)
}

func TestStopDuringCycleFinishesCycle(t *testing.T) {
	stop := &StopToken{}
	page := &fakePage{comments: 10}
	page.onItemClick = func(n int) {
		if n == 1 {
			stop.Stop()
		}
	}
	var buf bytes.Buffer
	s := newTestSweeper(t, page, instantConfig(4), &buf, nil)

	r := s.Run(context.Background(), stop)

	assert.Equal(t, CauseStopRequested, r.Cause)
	assert.Equal(t, 1, r.Cycles)
	assert.Equal(t, []int{4}, page.batches, "the cycle in progress completes")
	assert.Equal(t, 6, page.comments)
}

func TestMissingControlsEndRun(t *testing.T) {
	tests := []struct {
		name   string
		page   *fakePage
		want   error
		step   string
		delete int
	}{
		{"select", &fakePage{comments: 3, noSelect: true}, ErrSelectControlMissing, StepSelectMode, 0},
		{"delete", &fakePage{comments: 3, noDelete: true}, ErrDeleteControlMissing, StepDelete, 0},
		{"confirm", &fakePage{comments: 3, noConfirm: true}, ErrConfirmControlMissing, StepConfirm, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := newTestSweeper(t, tc.page, instantConfig(5), &buf, nil)

			var r *Report
			require.NotPanics(t, func() { r = s.Run(context.Background(), &StopToken{}) })

			assert.Equal(t, CauseFailed, r.Cause)
			assert.False(t, r.OK())
			require.Error(t, r.Err)
			assert.ErrorIs(t, r.Err, tc.want)
			assert.ErrorIs(t, r.Err, ErrNotFound)
			var se *StepError
			require.ErrorAs(t, r.Err, &se)
			assert.Equal(t, tc.step, se.Step)
			assert.Equal(t, tc.step+": "+tc.want.Error(), r.Error)
			assert.Equal(t, tc.delete, tc.page.count("click:delete"))
			assert.Zero(t, r.Cycles)
			assert.Contains(t, logMessages(t, &buf), "Error during deletion")
		})
	}
}

func TestClickFailureEndsRun(t *testing.T) {
	boom := errors.New("boom")
	page := &fakePage{comments: 3, clickErr: boom}
	var buf bytes.Buffer
	s := newTestSweeper(t, page, instantConfig(5), &buf, nil)

	r := s.Run(context.Background(), nil)

	assert.Equal(t, CauseFailed, r.Cause)
	assert.ErrorIs(t, r.Err, boom)
	assert.NotErrorIs(t, r.Err, ErrSelectControlMissing)
}

func TestCancelInterruptsWait(t *testing.T) {
	page := &fakePage{comments: 100}
	cfg := instantConfig(1)
	cfg.CycleDelay = time.Hour
	var buf bytes.Buffer
	s := newTestSweeper(t, page, cfg, &buf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	page.onItemClick = func(int) { cancel() }

	done := make(chan *Report)
	go func() { done <- s.Run(ctx, nil) }()

	select {
	case r := <-done:
		assert.Equal(t, CauseCanceled, r.Cause)
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Equal(t, 1, r.Cycles)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestObserverEvents(t *testing.T) {
	page := &fakePage{comments: 3}
	var events []Event
	obs := ObserverFunc(func(e Event) { events = append(events, e) })
	var buf bytes.Buffer
	s := newTestSweeper(t, page, instantConfig(2), &buf, obs)

	s.Run(context.Background(), nil)

	require.Len(t, events, 4)
	assert.Equal(t, EventRunStarted, events[0].Type)
	assert.Equal(t, EventCycleCompleted, events[1].Type)
	assert.Equal(t, 2, events[1].Selected)
	assert.Equal(t, 2, events[2].Cycle)
	assert.Equal(t, 3, events[2].Deleted)
	assert.Equal(t, EventRunFinished, events[3].Type)
	assert.Equal(t, CauseNothingLeft, events[3].Cause)
	for _, e := range events {
		assert.Equal(t, "test-run", e.RunID)
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Locator: &fakePage{}, Config: Config{}})
	assert.ErrorContains(t, err, "max_per_cycle")

	_, err = New(Options{Config: DefaultConfig()})
	assert.Error(t, err)

	s, err := New(Options{Locator: &fakePage{}, Config: DefaultConfig()})
	require.NoError(t, err)
	assert.NotEmpty(t, s.RunID())
}

func TestCycleNeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxPerCycle := rapid.IntRange(1, 20).Draw(rt, "max")
		comments := rapid.IntRange(0, 60).Draw(rt, "comments")

		page := &fakePage{comments: comments}
		logger := zerolog.Nop()
		s, err := New(Options{Locator: page, Config: instantConfig(maxPerCycle), Logger: &logger})
		if err != nil {
			rt.Fatalf("New: %v", err)
		}
		r := s.Run(context.Background(), nil)

		if r.Cause != CauseNothingLeft {
			rt.Fatalf("cause = %q, want %q", r.Cause, CauseNothingLeft)
		}
		if r.Deleted != comments {
			rt.Fatalf("deleted %d, want %d", r.Deleted, comments)
		}
		for i, n := range page.batches {
			if n > maxPerCycle {
				rt.Fatalf("cycle %d selected %d > max %d", i+1, n, maxPerCycle)
			}
		}
		if want := (comments + maxPerCycle - 1) / maxPerCycle; r.Cycles != want {
			rt.Fatalf("cycles = %d, want %d", r.Cycles, want)
		}
	})
}
