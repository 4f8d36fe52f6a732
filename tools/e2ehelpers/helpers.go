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

// Package e2ehelpers serves a stand-in for the comments activity page and
// drives it with chromedp. It is shared by the e2e tests and the demo tool.
package e2ehelpers

import (
	"context"
	_ "embed"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

//go:embed activity.html
var activityPage []byte

// Fixture is a running activity page server.
type Fixture struct {
	server *http.Server
	ln     net.Listener
	host   string
}

// StartFixture serves the activity page on all interfaces so that a Chrome
// running elsewhere can reach it as host.
func StartFixture(host string) (*Fixture, error) {
	ln, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /your_activity/interactions/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(activityPage)
	})
	f := &Fixture{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
		host:   host,
	}
	go f.server.Serve(ln)
	return f, nil
}

// URL returns the address of the page listing n comments.
func (f *Fixture) URL(n int) string {
	_, port, _ := net.SplitHostPort(f.ln.Addr().String())
	return fmt.Sprintf("http://%s/your_activity/interactions/comments?n=%d", net.JoinHostPort(f.host, port), n)
}

// Close stops the server.
func (f *Fixture) Close() error {
	return f.server.Close()
}

// Stats is what the page has recorded so far.
type Stats struct {
	Remaining int   `json:"remaining"`
	Deleted   int   `json:"deleted"`
	Batches   []int `json:"batches"`
}

// PageStats reads the comment counters of the page.
func PageStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := chromedp.Run(ctx, chromedp.Evaluate(`({
		remaining: document.querySelectorAll('.comment').length,
		deleted: window.igsweepFixture.deleted,
		batches: window.igsweepFixture.batches,
	})`, &s))
	return s, err
}

// CaptureScreenshot captures a screenshot and saves it to the specified filename.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}

	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	return nil
}

// WaitForComments waits until the page lists exactly n comments.
func WaitForComments(ctx context.Context, n int) error {
	return chromedp.Run(ctx, chromedp.Poll(fmt.Sprintf(`document.querySelectorAll('.comment').length === %d`, n), nil,
		chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(5*time.Second)))
}
