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

package browser

import "fmt"

// Query describes how one control is found on the page.
type Query struct {
	// Selector is a CSS selector for candidate elements.
	Selector string `yaml:"selector"`
	// Text, when set, keeps only candidates whose trimmed text equals it.
	Text string `yaml:"text,omitempty"`
	// Ancestor, when set, replaces each candidate with its closest ancestor
	// (or itself) matching this selector. Candidates without one are dropped.
	Ancestor string `yaml:"ancestor,omitempty"`
	// Scope, when set, restricts the search to elements inside it.
	Scope string `yaml:"scope,omitempty"`
}

func (q Query) String() string {
	s := q.Selector
	if q.Scope != "" {
		s = q.Scope + " " + s
	}
	if q.Text != "" {
		s += fmt.Sprintf(" %q", q.Text)
	}
	if q.Ancestor != "" {
		s += " ^" + q.Ancestor
	}
	return s
}

// Selectors is the table of every DOM match the sweeper relies on. The
// comments screen is rendered by a server-driven UI that changes without
// notice; when it does, this table is what needs editing.
type Selectors struct {
	SelectMode Query `yaml:"select_mode"`
	Item       Query `yaml:"item"`
	Delete     Query `yaml:"delete"`
	Confirm    Query `yaml:"confirm"`
}

// DefaultSelectors matches the comments activity screen.
func DefaultSelectors() Selectors {
	return Selectors{
		SelectMode: Query{Selector: "span", Text: "Select"},
		Item:       Query{Selector: `[data-bloks-name="ig.components.Icon"][style*="circle__outline"]`},
		Delete:     Query{Selector: "span", Text: "Delete", Ancestor: `[role="button"]`},
		Confirm:    Query{Selector: "button", Text: "Delete", Scope: `[role="dialog"]`},
	}
}

// Validate checks that every query has a selector.
func (s Selectors) Validate() error {
	for name, q := range map[string]Query{
		"select_mode": s.SelectMode,
		"item":        s.Item,
		"delete":      s.Delete,
		"confirm":     s.Confirm,
	} {
		if q.Selector == "" {
			return fmt.Errorf("selectors.%s: selector is required", name)
		}
	}
	return nil
}
