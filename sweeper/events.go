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

import "time"

// Event types
const (
	EventRunStarted     = "run_started"
	EventCycleCompleted = "cycle_completed"
	EventRunFinished    = "run_finished"
)

// Event describes progress of a run.
type Event struct {
	Type     string    `json:"type"`
	RunID    string    `json:"runId"`
	Time     time.Time `json:"time"`
	Cycle    int       `json:"cycle,omitempty"`
	Selected int       `json:"selected,omitempty"`
	Deleted  int       `json:"deleted"`
	Cause    Cause     `json:"cause,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Observer receives run events. Notify is called from the run loop and
// must not block for long.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// Observers fans an event out to several observers in order.
type Observers []Observer

func (o Observers) Notify(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Notify(e)
		}
	}
}
