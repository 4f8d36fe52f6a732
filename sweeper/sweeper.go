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
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Cause is why a run ended.
type Cause string

const (
	CauseStopRequested Cause = "stop requested"
	CauseNothingLeft   Cause = "nothing left"
	CauseCycleLimit    Cause = "cycle limit"
	CauseFailed        Cause = "failed"
	CauseCanceled      Cause = "canceled"
)

// Report summarizes a finished run.
type Report struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Cycles     int       `json:"cycles"`
	Deleted    int       `json:"deleted"`
	Cause      Cause     `json:"cause"`
	Error      string    `json:"error,omitempty"`

	// Err is the failure that ended the run, if any. It is not persisted.
	Err error `json:"-"`
}

// OK reports whether the run ended without a failure.
func (r *Report) OK() bool {
	return r.Cause != CauseFailed && r.Cause != CauseCanceled
}

// Options configure a Sweeper.
type Options struct {
	Locator  Locator
	Config   Config
	Logger   *zerolog.Logger
	Observer Observer
	// RunID identifies the run in logs, events and the run store. A random
	// UUID is used when empty.
	RunID string
}

// Sweeper runs the select, delete, confirm cycle against a Locator.
type Sweeper struct {
	locator  Locator
	cfg      Config
	logger   zerolog.Logger
	observer Observer
	runID    string
}

// New creates a Sweeper. The configuration is validated.
func New(opts Options) (*Sweeper, error) {
	if opts.Locator == nil {
		return nil, errors.New("sweeper: nil Locator")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	observer := opts.Observer
	if observer == nil {
		observer = Observers(nil)
	}
	return &Sweeper{
		locator:  opts.Locator,
		cfg:      opts.Config,
		logger:   logger.With().Str("run", runID).Logger(),
		observer: observer,
		runID:    runID,
	}, nil
}

// RunID returns the identifier of the run.
func (s *Sweeper) RunID() string { return s.runID }

// Run repeats cycles until nothing is left, a step fails, the cycle limit is
// reached, stop is requested, or ctx is cancelled. Failures are logged and
// recorded on the returned report; they never escape Run.
//
// stop is only observed between cycles. ctx cancellation is a hard abort and
// interrupts the current wait.
func (s *Sweeper) Run(ctx context.Context, stop *StopToken) *Report {
	r := &Report{ID: s.runID, StartedAt: time.Now()}
	s.logger.Info().Int("maxPerCycle", s.cfg.MaxPerCycle).Msg("Starting comment deletion")
	s.observer.Notify(Event{Type: EventRunStarted, RunID: s.runID, Time: r.StartedAt})

	r.Cause, r.Err = s.loop(ctx, stop, r)

	r.FinishedAt = time.Now()
	if r.Err != nil {
		r.Error = r.Err.Error()
	}
	ev := s.logger.Info()
	if r.Cause == CauseFailed {
		ev = s.logger.Error().Err(r.Err)
	}
	ev.Str("cause", string(r.Cause)).Int("cycles", r.Cycles).Int("deleted", r.Deleted).
		Msgf("Stopped: %s. Deleted %d comments in %d cycles.", r.Cause, r.Deleted, r.Cycles)
	s.observer.Notify(Event{
		Type:    EventRunFinished,
		RunID:   s.runID,
		Time:    r.FinishedAt,
		Cycle:   r.Cycles,
		Deleted: r.Deleted,
		Cause:   r.Cause,
		Error:   r.Error,
	})
	return r
}

func (s *Sweeper) loop(ctx context.Context, stop *StopToken, r *Report) (Cause, error) {
	for {
		if stop.Stopped() {
			s.logger.Info().Msg("Stop requested")
			return CauseStopRequested, nil
		}
		if err := ctx.Err(); err != nil {
			return CauseCanceled, err
		}

		n, err := s.cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return CauseCanceled, ctx.Err()
			}
			s.logger.Error().Err(err).Msg("Error during deletion")
			return CauseFailed, err
		}
		if n == 0 {
			s.logger.Info().Msg("No comments left to delete")
			return CauseNothingLeft, nil
		}

		r.Cycles++
		r.Deleted += n
		s.logger.Info().Int("cycle", r.Cycles).Int("deleted", n).
			Msgf("Cycle %d: deleted %d comments.", r.Cycles, n)
		s.observer.Notify(Event{
			Type:     EventCycleCompleted,
			RunID:    s.runID,
			Time:     time.Now(),
			Cycle:    r.Cycles,
			Selected: n,
			Deleted:  r.Deleted,
		})

		if s.cfg.MaxCycles > 0 && r.Cycles >= s.cfg.MaxCycles {
			return CauseCycleLimit, nil
		}
		if err := settle(ctx, s.cfg.CycleDelay, 0, nil); err != nil {
			return CauseCanceled, err
		}
	}
}
