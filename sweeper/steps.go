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
	"fmt"
)

// ActivateSelectMode finds the select control, clicks it and waits for the
// UI to settle.
func (s *Sweeper) ActivateSelectMode(ctx context.Context) error {
	el, err := s.locator.SelectModeControl(ctx)
	if err != nil {
		return missing(StepSelectMode, ErrSelectControlMissing, err)
	}
	if err := el.Click(ctx); err != nil {
		return &StepError{Step: StepSelectMode, Err: fmt.Errorf("click %s: %w", el.Describe(), err)}
	}
	s.logger.Debug().Str("control", el.Describe()).Msg("Entered select mode")
	return settle(ctx, s.cfg.ActionDelay, s.cfg.PollInterval, itemsPresent(s.locator))
}

// SelectComments clicks selectable items in document order until
// MaxPerCycle is reached or the items run out. It returns the number of
// items selected; zero means there is nothing left to delete.
func (s *Sweeper) SelectComments(ctx context.Context) (int, error) {
	items, err := s.locator.SelectableItems(ctx)
	if err != nil {
		return 0, &StepError{Step: StepSelect, Err: err}
	}
	if len(items) == 0 {
		return 0, nil
	}
	limit := min(len(items), s.cfg.MaxPerCycle)
	selected := 0
	for _, item := range items[:limit] {
		if err := item.Click(ctx); err != nil {
			return selected, &StepError{Step: StepSelect, Err: fmt.Errorf("click %s: %w", item.Describe(), err)}
		}
		selected++
		s.logger.Debug().Int("selected", selected).Int("limit", limit).Msg("Selected comment")
		if err := settle(ctx, s.cfg.ItemDelay, 0, nil); err != nil {
			return selected, err
		}
	}
	return selected, nil
}

// TriggerDelete clicks the delete control and waits for the confirmation
// dialog.
func (s *Sweeper) TriggerDelete(ctx context.Context) error {
	el, err := s.locator.DeleteControl(ctx)
	if err != nil {
		return missing(StepDelete, ErrDeleteControlMissing, err)
	}
	if err := el.Click(ctx); err != nil {
		return &StepError{Step: StepDelete, Err: fmt.Errorf("click %s: %w", el.Describe(), err)}
	}
	return settle(ctx, s.cfg.ActionDelay, s.cfg.PollInterval, confirmPresent(s.locator))
}

// Confirm focuses the confirmation button, waits briefly, then activates it
// directly.
func (s *Sweeper) Confirm(ctx context.Context) error {
	el, err := s.locator.ConfirmControl(ctx)
	if err != nil {
		return missing(StepConfirm, ErrConfirmControlMissing, err)
	}
	if err := el.Focus(ctx); err != nil {
		return &StepError{Step: StepConfirm, Err: fmt.Errorf("focus %s: %w", el.Describe(), err)}
	}
	if err := settle(ctx, s.cfg.ConfirmDelay, 0, nil); err != nil {
		return err
	}
	if err := el.Activate(ctx); err != nil {
		return &StepError{Step: StepConfirm, Err: fmt.Errorf("activate %s: %w", el.Describe(), err)}
	}
	return nil
}

// cycle runs one select, delete, confirm sequence. It returns zero without
// touching delete or confirm when nothing is selectable.
func (s *Sweeper) cycle(ctx context.Context) (int, error) {
	if err := s.ActivateSelectMode(ctx); err != nil {
		return 0, err
	}
	n, err := s.SelectComments(ctx)
	if err != nil || n == 0 {
		return n, err
	}
	if err := s.TriggerDelete(ctx); err != nil {
		return 0, err
	}
	if err := s.Confirm(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
