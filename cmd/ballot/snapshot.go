// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/database/sops"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/spf13/cobra"
)

var snapshotFlags = struct {
	plaintext bool
}{}

func snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Election snapshot management commands",
	}

	cmd.PersistentFlags().BoolVar(
		&snapshotFlags.plaintext,
		"plaintext",
		false,
		"skip SOPS encryption of the snapshot file",
	)

	cmd.AddCommand(snapshotExportCommand())
	cmd.AddCommand(snapshotImportCommand())

	return cmd
}

// openElection builds an Election on the configured database path without
// starting any of the service listeners.
func openElection(
	cfg *config.Config,
	logger *slog.Logger,
) (*ballot.Election, error) {
	return ballot.New(
		ballot.NewConfig(
			ballot.WithLogger(logger),
			ballot.WithDatabasePath(cfg.DatabasePath),
			ballot.WithAdmins(cfg.Admins...),
		),
	)
}

func snapshotExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <output-file>",
		Short: "Export the election state to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			logger := commonRun()

			election, err := openElection(cfg, logger)
			if err != nil {
				return fmt.Errorf("opening election state: %w", err)
			}
			defer election.Stop() //nolint:errcheck

			snap := election.Snapshot()
			raw, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("encoding snapshot: %w", err)
			}
			if !snapshotFlags.plaintext {
				raw, err = sops.Encrypt(raw)
				if err != nil {
					return fmt.Errorf("encrypting snapshot: %w", err)
				}
			}
			// Snapshots can hold every voter record, so keep them
			// out of reach of group/other
			if err := os.WriteFile(args[0], raw, 0o600); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}

			logger.Info(
				"snapshot exported",
				"component", programName,
				"path", args[0],
				"candidates", len(snap.Candidates),
				"voters", len(snap.Voters),
			)
			return nil
		},
	}
	return cmd
}

func snapshotImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <input-file>",
		Short: "Import a snapshot file into an empty election state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			logger := commonRun()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading snapshot: %w", err)
			}
			if !snapshotFlags.plaintext {
				raw, err = sops.Decrypt(raw)
				if err != nil {
					return fmt.Errorf("decrypting snapshot: %w", err)
				}
			}
			var snap ballot.Snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return fmt.Errorf("decoding snapshot: %w", err)
			}

			election, err := openElection(cfg, logger)
			if err != nil {
				return fmt.Errorf("opening election state: %w", err)
			}
			defer election.Stop() //nolint:errcheck

			if err := election.RestoreSnapshot(&snap); err != nil {
				return fmt.Errorf("importing snapshot: %w", err)
			}

			logger.Info(
				"snapshot imported",
				"component", programName,
				"path", args[0],
				"candidates", len(snap.Candidates),
				"voters", len(snap.Voters),
			)
			return nil
		},
	}
	return cmd
}
