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
	"time"
)

// Condition reports whether the UI has reached the state a step waits for.
type Condition func(ctx context.Context) bool

// settle waits up to d for cond to hold, polling every interval. A nil
// condition or a zero interval makes it a fixed delay, and a zero d no delay
// at all. It returns ctx.Err() if the context is cancelled first.
func settle(ctx context.Context, d, interval time.Duration, cond Condition) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	if cond == nil || interval <= 0 {
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if cond(ctx) {
				return nil
			}
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// itemsPresent holds once at least one selectable item is on the page.
func itemsPresent(l Locator) Condition {
	return func(ctx context.Context) bool {
		items, err := l.SelectableItems(ctx)
		return err == nil && len(items) > 0
	}
}

// confirmPresent holds once the confirmation dialog is showing.
func confirmPresent(l Locator) Condition {
	return func(ctx context.Context) bool {
		el, err := l.ConfirmControl(ctx)
		return err == nil && el != nil
	}
}
