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

import "context"

// Element is a control on the page that the sweeper can interact with.
type Element interface {
	// Click simulates a real pointer interaction: press, release, click.
	// The target UI ignores synthetic click-only calls.
	Click(ctx context.Context) error
	// Focus moves keyboard focus to the element.
	Focus(ctx context.Context) error
	// Activate performs a direct, programmatic activation.
	Activate(ctx context.Context) error
	// Describe returns a short human readable description for logs.
	Describe() string
}

// Locator isolates how controls are found on the page. When the target UI
// changes, only the Locator (or its selector table) has to change.
//
// Methods return an error wrapping ErrNotFound when a control is absent.
type Locator interface {
	// SelectModeControl returns the control that enters multi-select mode.
	SelectModeControl(ctx context.Context) (Element, error)
	// SelectableItems returns the unselected items in document order. An
	// empty result is not an error.
	SelectableItems(ctx context.Context) ([]Element, error)
	// DeleteControl returns the interactive ancestor of the delete label.
	DeleteControl(ctx context.Context) (Element, error)
	// ConfirmControl returns the confirmation button of the dialog layer.
	ConfirmControl(ctx context.Context) (Element, error)
}
