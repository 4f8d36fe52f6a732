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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ttbt-io/igsweep/browser"
	"github.com/ttbt-io/igsweep/control"
	"github.com/ttbt-io/igsweep/sweeper"
)

// runFlags maps each run flag to the config field it overrides.
var runFlags = map[string]func(dst, src *Config){
	"chrome-url":     func(d, s *Config) { d.Browser.ChromeURL = s.Browser.ChromeURL },
	"attach":         func(d, s *Config) { d.Browser.Attach = s.Browser.Attach },
	"url":            func(d, s *Config) { d.Browser.URL = s.Browser.URL },
	"headless":       func(d, s *Config) { d.Browser.Headless = s.Browser.Headless },
	"user-data-dir":  func(d, s *Config) { d.Browser.UserDataDir = s.Browser.UserDataDir },
	"pointer":        func(d, s *Config) { d.Browser.Pointer = s.Browser.Pointer },
	"dump-dir":       func(d, s *Config) { d.Browser.DumpDir = s.Browser.DumpDir },
	"action-delay":   func(d, s *Config) { d.Sweep.ActionDelay = s.Sweep.ActionDelay },
	"item-delay":     func(d, s *Config) { d.Sweep.ItemDelay = s.Sweep.ItemDelay },
	"confirm-delay":  func(d, s *Config) { d.Sweep.ConfirmDelay = s.Sweep.ConfirmDelay },
	"cycle-delay":    func(d, s *Config) { d.Sweep.CycleDelay = s.Sweep.CycleDelay },
	"poll-interval":  func(d, s *Config) { d.Sweep.PollInterval = s.Sweep.PollInterval },
	"max-per-cycle":  func(d, s *Config) { d.Sweep.MaxPerCycle = s.Sweep.MaxPerCycle },
	"max-cycles":     func(d, s *Config) { d.Sweep.MaxCycles = s.Sweep.MaxCycles },
	"control-addr":   func(d, s *Config) { d.Control.Addr = s.Control.Addr },
	"control-secret": func(d, s *Config) { d.Control.Secret = s.Control.Secret },
}

func addRunFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&c.Browser.ChromeURL, "chrome-url", c.Browser.ChromeURL, "Remote debugging URL of a running Chrome, e.g. http://127.0.0.1:9222. A local Chrome is launched when empty")
	fs.StringVar(&c.Browser.Attach, "attach", c.Browser.Attach, "With --chrome-url, attach to the open tab whose URL contains this text. Defaults to the activity tab unless --url is set")
	fs.StringVar(&c.Browser.URL, "url", c.Browser.URL, "Navigate the tab to this URL before starting. A launched Chrome defaults to the activity page")
	fs.BoolVar(&c.Browser.Headless, "headless", c.Browser.Headless, "Run a launched Chrome headless")
	fs.StringVar(&c.Browser.UserDataDir, "user-data-dir", c.Browser.UserDataDir, "Profile directory of a launched Chrome")
	fs.StringVar(&c.Browser.Pointer, "pointer", c.Browser.Pointer, "How clicks are simulated: cdp or script")
	fs.StringVar(&c.Browser.DumpDir, "dump-dir", c.Browser.DumpDir, "Write the page HTML and a screenshot here when a run fails")
	fs.DurationVar(&c.Sweep.ActionDelay, "action-delay", c.Sweep.ActionDelay, "Wait after select-mode and delete clicks")
	fs.DurationVar(&c.Sweep.ItemDelay, "item-delay", c.Sweep.ItemDelay, "Wait after each selected comment")
	fs.DurationVar(&c.Sweep.ConfirmDelay, "confirm-delay", c.Sweep.ConfirmDelay, "Wait between focusing and activating the confirm button")
	fs.DurationVar(&c.Sweep.CycleDelay, "cycle-delay", c.Sweep.CycleDelay, "Wait between cycles")
	fs.DurationVar(&c.Sweep.PollInterval, "poll-interval", c.Sweep.PollInterval, "Poll interval of condition waits. 0 makes every wait fixed")
	fs.IntVar(&c.Sweep.MaxPerCycle, "max-per-cycle", c.Sweep.MaxPerCycle, "Maximum comments selected per cycle")
	fs.IntVar(&c.Sweep.MaxCycles, "max-cycles", c.Sweep.MaxCycles, "Stop after this many cycles. 0 means no limit")
	fs.StringVar(&c.Control.Addr, "control-addr", c.Control.Addr, "Serve the control API on this address, e.g. 127.0.0.1:8787")
	fs.StringVar(&c.Control.Secret, "control-secret", c.Control.Secret, "Require bearer tokens signed with this secret on the control API")
}

// applyFlags copies every changed run flag from src into dst.
func applyFlags(fs *pflag.FlagSet, dst, src *Config) {
	fs.Visit(func(f *pflag.Flag) {
		if set, ok := runFlags[f.Name]; ok {
			set(dst, src)
		}
	})
}

func newRunCmd(g *globalOptions) *cobra.Command {
	flagCfg := DefaultConfig()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete comments until none are left",
		Long: `Delete comments in cycles: enter select mode, select up to --max-per-cycle
comments, press Delete and confirm. The run ends when nothing is left to
delete, a step fails, or a stop is requested.

The first interrupt (Ctrl-C) lets the current cycle finish and then stops.
A second interrupt aborts immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			applyFlags(cmd.Flags(), &cfg, &flagCfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			r, err := runSweep(cmd.Context(), g.logger(), cfg)
			if err != nil {
				return err
			}
			if !r.OK() {
				return errRunFailed
			}
			return nil
		},
	}
	addRunFlags(cmd.Flags(), &flagCfg)
	return cmd
}

// watchSignals turns the first signal into a graceful stop and the second
// into a hard cancel.
func watchSignals(ctx context.Context, sigs <-chan os.Signal, stop *sweeper.StopToken, cancel context.CancelFunc, logger zerolog.Logger) {
	select {
	case <-ctx.Done():
		return
	case sig := <-sigs:
		logger.Warn().Str("signal", sig.String()).Msg("Stopping after the current cycle. Interrupt again to abort.")
		stop.Stop()
	}
	select {
	case <-ctx.Done():
	case sig := <-sigs:
		logger.Warn().Str("signal", sig.String()).Msg("Aborting")
		cancel()
	}
}

// sessionOptions resolves which Chrome and tab a run drives. A launched
// Chrome opens the activity page; a running one attaches to the activity tab
// unless a tab pattern or a URL is given.
func sessionOptions(cfg BrowserConfig, logger *zerolog.Logger) browser.SessionOptions {
	opts := browser.SessionOptions{
		ChromeURL:   cfg.ChromeURL,
		Attach:      cfg.Attach,
		Headless:    cfg.Headless,
		UserDataDir: cfg.UserDataDir,
		URL:         cfg.URL,
		Logger:      logger,
	}
	switch {
	case opts.ChromeURL == "":
		opts.Attach = ""
		if opts.URL == "" {
			opts.URL = DefaultActivityURL
		}
	case opts.Attach == "" && opts.URL == "":
		opts.Attach = DefaultAttach
	}
	return opts
}

// startObservers opens the run history and, when configured, starts the
// control server. stop releases what was started.
func startObservers(cfg Config, stopToken *sweeper.StopToken, logger zerolog.Logger) (sweeper.Observers, func(), error) {
	store, err := openStore(cfg.DataDir, logger)
	if err != nil {
		return nil, nil, err
	}
	observers := sweeper.Observers{sweeper.NewRunStore(cfg.DataDir, store, &logger)}
	if cfg.Control.Addr == "" {
		return observers, func() {}, nil
	}
	srv, err := control.Start(control.Options{
		Addr:   cfg.Control.Addr,
		Secret: cfg.Control.Secret,
		Stop:   stopToken,
		Logger: &logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("control server: %w", err)
	}
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("Control server shutdown")
		}
	}
	return append(observers, srv), stop, nil
}

// pageDumper saves the page of ctx to dir. browser.DumpPage is the real one.
type pageDumper func(ctx context.Context, dir, name string) (string, error)

// dumpOnFailure saves the page when a run failed and dumpDir is set, and
// tells how to check the selectors against it. It returns the HTML path.
func dumpOnFailure(ctx context.Context, r *sweeper.Report, dumpDir string, dump pageDumper, logger zerolog.Logger) string {
	if r.Cause != sweeper.CauseFailed || dumpDir == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	path, err := dump(ctx, dumpDir, "igsweep-"+r.ID)
	if path == "" {
		logger.Warn().Err(err).Msg("Failed to dump page")
		return ""
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to capture screenshot")
	}
	logger.Info().Str("file", path).Msgf("Page saved. Check the selectors with: igsweep inspect %s", path)
	return path
}

func runSweep(parent context.Context, logger zerolog.Logger, cfg Config) (*sweeper.Report, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	stop := &sweeper.StopToken{}
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go watchSignals(ctx, sigs, stop, cancel, logger)

	observers, stopObservers, err := startObservers(cfg, stop, logger)
	if err != nil {
		return nil, err
	}
	defer stopObservers()

	session, err := browser.NewSession(ctx, sessionOptions(cfg.Browser, &logger))
	if err != nil {
		return nil, err
	}
	defer session.Close()

	locator, err := browser.NewLocator(cfg.Selectors, cfg.Browser.Pointer)
	if err != nil {
		return nil, err
	}
	sw, err := sweeper.New(sweeper.Options{
		Locator:  locator,
		Config:   cfg.Sweep,
		Logger:   &logger,
		Observer: observers,
	})
	if err != nil {
		return nil, err
	}

	// The tab context carries the chromedp target. Cancelling ctx cancels it
	// as well since the session was created from ctx.
	r := sw.Run(session.Context(), stop)
	dumpOnFailure(session.Context(), r, cfg.Browser.DumpDir, browser.DumpPage, logger)
	return r, nil
}
