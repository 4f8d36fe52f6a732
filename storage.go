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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
	"github.com/rs/zerolog"
)

// masterKeyEnv holds the passphrase protecting the run history key.
const masterKeyEnv = "IGSWEEP_MASTER_KEY"

// openStore opens the run history in dataDir. When the passphrase is set
// the data is encrypted with a master key kept in dataDir/master.key.
func openStore(dataDir string, logger zerolog.Logger) (*storage.Storage, error) {
	keyFile := filepath.Join(dataDir, "master.key")
	var masterKey crypto.MasterKey
	if passphrase := os.Getenv(masterKeyEnv); passphrase != "" {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		var err error
		masterKey, err = crypto.ReadMasterKey([]byte(passphrase), keyFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Info().Msg("Initializing new master encryption key")
			if masterKey, err = crypto.CreateMasterKey(); err != nil {
				return nil, fmt.Errorf("create master key: %w", err)
			}
			if err := masterKey.Save([]byte(passphrase), keyFile); err != nil {
				return nil, fmt.Errorf("save master key: %w", err)
			}
		case err != nil:
			return nil, fmt.Errorf("read master key: %w", err)
		default:
			logger.Debug().Msg("Loaded master encryption key")
		}
	} else {
		if _, err := os.Stat(keyFile); err == nil {
			return nil, fmt.Errorf("%s exists but %s is not set", keyFile, masterKeyEnv)
		}
		logger.Debug().Msgf("%s not set, run history is stored unencrypted", masterKeyEnv)
	}
	store := storage.New(dataDir, masterKey)
	store.EnableCompression(true)
	return store, nil
}
