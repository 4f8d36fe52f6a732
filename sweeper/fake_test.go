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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
)

// fakePage is an in-memory stand-in for the comments screen.
type fakePage struct {
	mu sync.Mutex

	comments   int
	selectMode bool
	selected   int
	dialog     bool

	noSelect  bool
	noDelete  bool
	noConfirm bool
	clickErr  error

	calls   []string
	batches []int

	// onItemClick runs after an item is selected, outside the lock.
	onItemClick func(n int)
}

func (p *fakePage) record(call string) {
	p.calls = append(p.calls, call)
}

func (p *fakePage) count(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (p *fakePage) SelectModeControl(ctx context.Context) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noSelect {
		return nil, fmt.Errorf("span %q: %w", "Select", ErrNotFound)
	}
	return &fakeElement{page: p, kind: "select"}, nil
}

func (p *fakePage) SelectableItems(ctx context.Context) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.selectMode {
		return nil, nil
	}
	var items []Element
	for i := p.selected; i < p.comments; i++ {
		items = append(items, &fakeElement{page: p, kind: "item", index: i})
	}
	return items, nil
}

func (p *fakePage) DeleteControl(ctx context.Context) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noDelete || !p.selectMode {
		return nil, fmt.Errorf("span %q: %w", "Delete", ErrNotFound)
	}
	return &fakeElement{page: p, kind: "delete"}, nil
}

func (p *fakePage) ConfirmControl(ctx context.Context) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noConfirm || !p.dialog {
		return nil, fmt.Errorf("dialog button %q: %w", "Delete", ErrNotFound)
	}
	return &fakeElement{page: p, kind: "confirm"}, nil
}

type fakeElement struct {
	page  *fakePage
	kind  string
	index int
}

func (e *fakeElement) Describe() string {
	if e.kind == "item" {
		return fmt.Sprintf("item #%d", e.index)
	}
	return e.kind
}

func (e *fakeElement) Click(ctx context.Context) error {
	p := e.page
	p.mu.Lock()
	if p.clickErr != nil {
		p.mu.Unlock()
		return p.clickErr
	}
	p.record("click:" + e.kind)
	var hook func(int)
	switch e.kind {
	case "select":
		p.selectMode = true
	case "item":
		p.selected++
		hook = p.onItemClick
	case "delete":
		p.dialog = p.selected > 0
	}
	n := p.selected
	p.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return nil
}

func (e *fakeElement) Focus(ctx context.Context) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.record("focus:" + e.kind)
	return nil
}

func (e *fakeElement) Activate(ctx context.Context) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("activate:" + e.kind)
	if e.kind == "confirm" {
		p.batches = append(p.batches, p.selected)
		p.comments -= p.selected
		p.selected = 0
		p.dialog = false
		p.selectMode = false
	}
	return nil
}

// instantConfig has no delays so tests run fast.
func instantConfig(maxPerCycle int) Config {
	return Config{MaxPerCycle: maxPerCycle}
}

// newTestSweeper returns a sweeper logging JSON lines into buf.
func newTestSweeper(t *testing.T, page *fakePage, cfg Config, buf *bytes.Buffer, obs Observer) *Sweeper {
	t.Helper()
	logger := zerolog.New(buf)
	s, err := New(Options{
		Locator:  page,
		Config:   cfg,
		Logger:   &logger,
		Observer: obs,
		RunID:    "test-run",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// logMessages extracts the message field of every logged line at info level
// or above.
func logMessages(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var line struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("bad log line %q: %v", sc.Text(), err)
		}
		if line.Level == "debug" {
			continue
		}
		out = append(out, line.Message)
	}
	return out
}

// assertGolden compares got against want line by line and reports a unified
// diff on mismatch.
func assertGolden(t *testing.T, want, got []string) {
	t.Helper()
	if strings.Join(want, "\n") == strings.Join(got, "\n") {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(want, "\n") + "\n"),
		B:        difflib.SplitLines(strings.Join(got, "\n") + "\n"),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	t.Errorf("log mismatch:\n%s", diff)
}
