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
	"fmt"
)

// ErrNotFound is returned by a Locator when a control is absent from the page.
var ErrNotFound = errors.New("control not found")

// Every one of these ends the run. There is no retry.
var (
	ErrSelectControlMissing  = errors.New("select control missing")
	ErrDeleteControlMissing  = errors.New("delete control missing")
	ErrConfirmControlMissing = errors.New("confirmation control missing")
)

// Step names used in StepError and in the log.
const (
	StepSelectMode = "select-mode"
	StepSelect     = "select"
	StepDelete     = "delete"
	StepConfirm    = "confirm"
)

// StepError records which step of a cycle failed.
type StepError struct {
	Step string
	Kind error // one of the Err*Missing sentinels, or nil
	Err  error
}

func (e *StepError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil && !errors.Is(e.Err, ErrNotFound):
		return fmt.Sprintf("%s: %v: %v", e.Step, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Step, e.Kind)
	default:
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *StepError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// missing converts a locator failure into the step's error kind.
func missing(step string, kind, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &StepError{Step: step, Kind: kind, Err: err}
	}
	return &StepError{Step: step, Err: err}
}
