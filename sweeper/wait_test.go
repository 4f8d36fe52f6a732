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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettleReturnsWhenConditionHolds(t *testing.T) {
	var polls atomic.Int32
	cond := func(ctx context.Context) bool { return polls.Add(1) >= 3 }

	start := time.Now()
	err := settle(context.Background(), time.Minute, 5*time.Millisecond, cond)

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.EqualValues(t, 3, polls.Load())
}

func TestSettleFixedDelay(t *testing.T) {
	called := false
	cond := func(ctx context.Context) bool { called = true; return true }

	start := time.Now()
	err := settle(context.Background(), 30*time.Millisecond, 0, cond)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.False(t, called, "zero interval must not poll")
}

func TestSettleTimesOutWithoutError(t *testing.T) {
	cond := func(ctx context.Context) bool { return false }
	err := settle(context.Background(), 20*time.Millisecond, 5*time.Millisecond, cond)
	assert.NoError(t, err)
}

func TestSettleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := settle(ctx, time.Hour, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStopToken(t *testing.T) {
	var nilToken *StopToken
	assert.False(t, nilToken.Stopped())

	tok := &StopToken{}
	assert.False(t, tok.Stopped())
	tok.Stop()
	tok.Stop()
	assert.True(t, tok.Stopped())
}
