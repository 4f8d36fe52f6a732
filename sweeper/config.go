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
	"time"
)

// Default values for Config.
const (
	DefaultActionDelay  = 1 * time.Second
	DefaultItemDelay    = 300 * time.Millisecond
	DefaultConfirmDelay = 500 * time.Millisecond
	DefaultCycleDelay   = 3 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultMaxPerCycle  = 100
)

// Config holds the timing and batch parameters of a run. All values are
// fixed before the run starts.
type Config struct {
	// ActionDelay is the settle time after entering select mode and after
	// pressing delete.
	ActionDelay time.Duration `yaml:"action_delay"`
	// ItemDelay is the pause after each item is selected.
	ItemDelay time.Duration `yaml:"item_delay"`
	// ConfirmDelay is the pause between focusing and activating the
	// confirmation button.
	ConfirmDelay time.Duration `yaml:"confirm_delay"`
	// CycleDelay is the pause between two cycles.
	CycleDelay time.Duration `yaml:"cycle_delay"`
	// PollInterval is how often settle conditions are checked. Zero turns
	// every wait into a fixed delay.
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxPerCycle caps the number of items selected in one cycle.
	MaxPerCycle int `yaml:"max_per_cycle"`
	// MaxCycles ends the run after this many cycles. Zero means no limit.
	MaxCycles int `yaml:"max_cycles"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		ActionDelay:  DefaultActionDelay,
		ItemDelay:    DefaultItemDelay,
		ConfirmDelay: DefaultConfirmDelay,
		CycleDelay:   DefaultCycleDelay,
		PollInterval: DefaultPollInterval,
		MaxPerCycle:  DefaultMaxPerCycle,
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if c.MaxPerCycle < 1 {
		return fmt.Errorf("max_per_cycle must be >= 1, got %d", c.MaxPerCycle)
	}
	if c.MaxCycles < 0 {
		return fmt.Errorf("max_cycles must be >= 0, got %d", c.MaxCycles)
	}
	for name, d := range map[string]time.Duration{
		"action_delay":  c.ActionDelay,
		"item_delay":    c.ItemDelay,
		"confirm_delay": c.ConfirmDelay,
		"cycle_delay":   c.CycleDelay,
		"poll_interval": c.PollInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be >= 0, got %s", name, d)
		}
	}
	return nil
}
