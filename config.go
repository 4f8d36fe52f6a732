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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ttbt-io/igsweep/browser"
	"github.com/ttbt-io/igsweep/sweeper"
)

// DefaultActivityURL is the comments page of the activity screen. A launched
// Chrome opens it unless another URL is given.
const DefaultActivityURL = "https://www.instagram.com/your_activity/interactions/comments"

// DefaultAttach selects the activity tab of a running Chrome when neither an
// attach pattern nor a URL is given.
const DefaultAttach = "your_activity"

// BrowserConfig selects the Chrome instance and the tab. Attach only
// applies to a running Chrome (ChromeURL set).
type BrowserConfig struct {
	ChromeURL   string `yaml:"chrome_url"`
	Attach      string `yaml:"attach"`
	URL         string `yaml:"url"`
	Headless    bool   `yaml:"headless"`
	UserDataDir string `yaml:"user_data_dir"`
	Pointer     string `yaml:"pointer"`
	DumpDir     string `yaml:"dump_dir"`
}

// ControlConfig configures the control server. It is disabled when Addr is
// empty.
type ControlConfig struct {
	Addr   string `yaml:"addr"`
	Secret string `yaml:"secret"`
}

// Config is the content of the configuration file.
type Config struct {
	Sweep     sweeper.Config    `yaml:"sweep"`
	Selectors browser.Selectors `yaml:"selectors"`
	Browser   BrowserConfig     `yaml:"browser"`
	Control   ControlConfig     `yaml:"control"`
	DataDir   string            `yaml:"data_dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Sweep:     sweeper.DefaultConfig(),
		Selectors: browser.DefaultSelectors(),
		Browser: BrowserConfig{
			Pointer: browser.PointerCDP,
		},
		DataDir: "igsweep-data",
	}
}

// LoadConfig reads path on top of the defaults. Keys missing from the file
// keep their default value; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if err := c.Selectors.Validate(); err != nil {
		return err
	}
	if c.Browser.Attach != "" && c.Browser.ChromeURL == "" {
		return errors.New("browser.attach needs browser.chrome_url: a launched Chrome has no tab to attach to")
	}
	switch c.Browser.Pointer {
	case "", browser.PointerCDP, browser.PointerScript:
	default:
		return fmt.Errorf("browser.pointer: unknown mode %q", c.Browser.Pointer)
	}
	return nil
}
