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

// Package snapshot checks the selector table against a saved copy of the
// page, without a browser.
package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ttbt-io/igsweep/browser"
)

// Match is the result of one query against the snapshot.
type Match struct {
	Name     string
	Query    browser.Query
	Count    int
	Required bool
	Samples  []string
}

// OK reports whether a required control was found.
func (m Match) OK() bool { return !m.Required || m.Count > 0 }

// Report lists the matches in the order the sweeper uses the controls.
type Report struct {
	Matches []Match
}

// OK reports whether every required control was found.
func (r *Report) OK() bool {
	for _, m := range r.Matches {
		if !m.OK() {
			return false
		}
	}
	return true
}

// Inspect parses HTML from r and runs every query of sel against it.
//
// A snapshot only shows one state of the page, so the select control and
// the items or the confirmation dialog are usually not all present at once.
// Only the select control is required.
func Inspect(r io.Reader, sel browser.Selectors) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	rep := &Report{}
	for _, q := range []struct {
		name     string
		query    browser.Query
		required bool
	}{
		{"select_mode", sel.SelectMode, true},
		{"item", sel.Item, false},
		{"delete", sel.Delete, false},
		{"confirm", sel.Confirm, false},
	} {
		found := Find(doc, q.query)
		m := Match{Name: q.name, Query: q.query, Count: found.Length(), Required: q.required}
		found.EachWithBreak(func(i int, s *goquery.Selection) bool {
			m.Samples = append(m.Samples, describe(s))
			return i < 2
		})
		rep.Matches = append(rep.Matches, m)
	}
	return rep, nil
}

// Find applies q to doc the same way the browser locator does.
func Find(doc *goquery.Document, q browser.Query) *goquery.Selection {
	root := doc.Selection
	if q.Scope != "" {
		root = doc.Find(q.Scope)
	}
	found := root.Find(q.Selector)
	if q.Text != "" {
		found = found.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) == q.Text
		})
	}
	if q.Ancestor != "" {
		found = found.Closest(q.Ancestor)
	}
	return found
}

// maxSampleText is how many characters of element text a sample shows.
const maxSampleText = 40

func describe(s *goquery.Selection) string {
	var b strings.Builder
	b.WriteString(goquery.NodeName(s))
	for _, attr := range []string{"id", "role", "aria-label", "data-bloks-name"} {
		if v, ok := s.Attr(attr); ok {
			fmt.Fprintf(&b, " %s=%q", attr, v)
		}
	}
	if text := strings.TrimSpace(s.Text()); text != "" {
		if r := []rune(text); len(r) > maxSampleText {
			text = string(r[:maxSampleText]) + "..."
		}
		fmt.Fprintf(&b, " text=%q", text)
	}
	return b.String()
}

// Write prints the report, one control per line followed by samples.
func (r *Report) Write(w io.Writer) error {
	for _, m := range r.Matches {
		status := "ok"
		if !m.OK() {
			status = "MISSING"
		} else if m.Count == 0 {
			status = "absent"
		}
		if _, err := fmt.Fprintf(w, "%-12s %-8s %3d  %s\n", m.Name, status, m.Count, m.Query); err != nil {
			return err
		}
		for _, s := range m.Samples {
			if _, err := fmt.Fprintf(w, "             %s\n", s); err != nil {
				return err
			}
		}
	}
	return nil
}
