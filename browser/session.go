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

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// SessionOptions select the Chrome instance and tab to drive.
type SessionOptions struct {
	// ChromeURL is the remote debugging URL of a running Chrome. When empty
	// a local Chrome is launched.
	ChromeURL string
	// Attach, when set, attaches to the first open tab whose URL contains
	// it instead of opening a new tab. It needs ChromeURL: a launched Chrome
	// has no tabs to attach to.
	Attach string
	// Headless applies to a launched Chrome only.
	Headless bool
	// UserDataDir keeps the profile (and login) of a launched Chrome.
	UserDataDir string
	// URL is opened in the tab when set.
	URL string
	// ReadyTimeout bounds navigation and the wait for the page body.
	ReadyTimeout time.Duration
	Logger       *zerolog.Logger
}

// Session owns the chromedp contexts of one tab.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	logger  zerolog.Logger
}

// NewSession connects to (or launches) Chrome and prepares a tab.
func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Attach != "" && opts.ChromeURL == "" {
		return nil, fmt.Errorf("attaching to a tab matching %q needs a running Chrome", opts.Attach)
	}
	s := &Session{logger: logger}

	var allocCtx context.Context
	var cancel context.CancelFunc
	if opts.ChromeURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, opts.ChromeURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
		)
		if opts.UserDataDir != "" {
			execOpts = append(execOpts, chromedp.UserDataDir(opts.UserDataDir))
		}
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}
	s.cancels = append(s.cancels, cancel)

	logf := func(format string, args ...any) {
		logger.Debug().Str("component", "chromedp").Msgf(format, args...)
	}
	errf := func(format string, args ...any) {
		logger.Warn().Str("component", "chromedp").Msgf(format, args...)
	}
	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logf), chromedp.WithErrorf(errf))
	s.cancels = append(s.cancels, cancel)
	s.ctx = browserCtx

	if opts.Attach == "" {
		// The first Run on the browser context opens a new tab.
		if err := chromedp.Run(browserCtx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	} else {
		// Targets connects to the browser without opening a tab, so
		// attaching leaves no blank tab behind.
		tabCtx, err := s.attach(browserCtx, opts.Attach)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.ctx = tabCtx
	}

	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	readyCtx, cancelReady := context.WithTimeout(s.ctx, timeout)
	defer cancelReady()
	var actions chromedp.Tasks
	if opts.URL != "" {
		logger.Info().Str("url", opts.URL).Msg("Opening page")
		actions = append(actions, chromedp.Navigate(opts.URL))
	}
	actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	if err := chromedp.Run(readyCtx, actions); err != nil {
		s.Close()
		return nil, fmt.Errorf("page not ready: %w", err)
	}
	return s, nil
}

// attach returns a context driving the first open page whose URL contains
// match.
func (s *Session) attach(browserCtx context.Context, match string) (context.Context, error) {
	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	for _, t := range targets {
		if t.Type == "page" && strings.Contains(t.URL, match) {
			tabCtx, cancel := chromedp.NewContext(browserCtx, chromedp.WithTargetID(t.TargetID))
			s.cancels = append(s.cancels, cancel)
			s.logger.Info().Str("url", t.URL).Msg("Attached to tab")
			return tabCtx, nil
		}
	}
	return nil, fmt.Errorf("no open tab matches %q", match)
}

// Context returns the chromedp tab context. Actions run against it drive
// the tab.
func (s *Session) Context() context.Context { return s.ctx }

// Close releases the tab and the browser connection. A launched Chrome is
// shut down.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
}

// DumpPage writes the page HTML and a screenshot to dir as <name>.html and
// <name>.png. The HTML can be checked offline with the inspect command.
func DumpPage(ctx context.Context, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture HTML: %w", err)
	}
	htmlPath := filepath.Join(dir, name+".html")
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write HTML: %w", err)
	}
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return htmlPath, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".png"), buf, 0644); err != nil {
		return htmlPath, fmt.Errorf("failed to write screenshot: %w", err)
	}
	return htmlPath, nil
}
