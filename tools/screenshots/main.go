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

// screenshots walks the activity page stand-in through one deletion cycle,
// step by step, and saves a screenshot after each step for the manual.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ttbt-io/igsweep/browser"
	"github.com/ttbt-io/igsweep/sweeper"
	"github.com/ttbt-io/igsweep/tools/e2ehelpers"
)

var (
	chromeURL = flag.String("chrome-url", "", "The url of the remote debugging port")
	outputDir = flag.String("output-dir", "/screenshots", "Directory to save screenshots")
	host      = flag.String("host", "devtest.local", "Host name under which Chrome reaches this process")
	comments  = flag.Int("comments", 8, "Number of comments on the page")
)

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	if *chromeURL == "" {
		logger.Fatal().Msg("--chrome-url must be set")
	}

	fixture, err := e2ehelpers.StartFixture(*host)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start fixture")
	}
	defer fixture.Close()
	logger.Info().Str("url", fixture.URL(*comments)).Msg("Fixture started")

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	session, err := browser.NewSession(ctx, browser.SessionOptions{
		ChromeURL: *chromeURL,
		URL:       fixture.URL(*comments),
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open page")
	}
	defer session.Close()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output dir")
	}

	if err := generateScreenshots(session.Context(), &logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to generate screenshots")
	}
	logger.Info().Msg("Screenshots generated successfully.")
}

func generateScreenshots(ctx context.Context, logger *zerolog.Logger) error {
	loc, err := browser.NewLocator(browser.DefaultSelectors(), browser.PointerCDP)
	if err != nil {
		return err
	}
	cfg := sweeper.DefaultConfig()
	cfg.MaxPerCycle = 3
	sw, err := sweeper.New(sweeper.Options{Locator: loc, Config: cfg, Logger: logger})
	if err != nil {
		return err
	}

	if err := capture(ctx, "01-comments", logger); err != nil {
		return err
	}
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"02-select-mode", sw.ActivateSelectMode},
		{"03-selected", func(ctx context.Context) error {
			n, err := sw.SelectComments(ctx)
			if err == nil && n == 0 {
				err = fmt.Errorf("nothing to select")
			}
			return err
		}},
		{"04-confirm-dialog", sw.TriggerDelete},
		{"05-deleted", sw.Confirm},
	}
	for _, step := range steps {
		if err := runStep(ctx, step.name, step.run, 15*time.Second, logger); err != nil {
			return err
		}
		if err := capture(ctx, step.name, logger); err != nil {
			return err
		}
	}
	return nil
}

// runStep executes one step with a timeout and saves the page on failure.
func runStep(ctx context.Context, name string, step func(context.Context) error, timeout time.Duration, logger *zerolog.Logger) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := step(stepCtx); err != nil {
		logger.Error().Err(err).Str("step", name).Msg("Step failed")
		if path, derr := browser.DumpPage(ctx, *outputDir, "debug-"+name); derr != nil {
			logger.Debug().Err(derr).Msg("Failed to dump page")
		} else {
			logger.Debug().Str("file", path).Msg("Saved page")
		}
		return err
	}
	return nil
}

func capture(ctx context.Context, name string, logger *zerolog.Logger) error {
	file := filepath.Join(*outputDir, name+".png")
	if err := e2ehelpers.CaptureScreenshot(ctx, file); err != nil {
		return err
	}
	logger.Info().Str("file", file).Msg("Saved screenshot")
	return nil
}
