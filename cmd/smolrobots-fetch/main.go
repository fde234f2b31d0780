// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// smolrobots-fetch archives the robot posts of a Mastodon account.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"zombiezen.com/go/smolrobots/archive"
	"zombiezen.com/go/smolrobots/format"
	"zombiezen.com/go/smolrobots/mastodon"
	"zombiezen.com/go/smolrobots/store"
)

type options struct {
	configPath string
	maxID      string
	sinceID    string
	pages      int
	dryRun     bool
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := new(options)
	var logger *zap.Logger
	c := &cobra.Command{
		Use:           "smolrobots-fetch --config FILE",
		Short:         "Archive the robot posts of a Mastodon account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logger, cmd.OutOrStdout(), opts)
		},
	}
	c.Flags().StringVar(&opts.configPath, "config", "", "path to YAML configuration `file`")
	c.Flags().StringVar(&opts.maxID, "max-id", "", "only fetch statuses older than this status `id`")
	c.Flags().StringVar(&opts.sinceID, "since-id", "", "only fetch statuses newer than this status `id`")
	c.Flags().IntVar(&opts.pages, "pages", 0, "maximum number of pages to fetch (0 for all)")
	c.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print posts instead of saving them")
	c.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	c.MarkFlagRequired("config")
	return c
}

func run(ctx context.Context, logger *zap.Logger, out io.Writer, opts *options) error {
	cfg, err := archive.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		client: &mastodon.Client{
			BaseURL:    cfg.APIURL(),
			HTTPClient: newHTTPClient(),
		},
	}
	if !opts.dryRun {
		if cfg.Database.URI == "" {
			return errors.New("database.uri is required unless --dry-run is given")
		}
		db, err := store.Open(ctx, cfg.Database.URI)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		a.saver = db
	}
	return a.fetch(ctx, opts.maxID, opts.sinceID, opts.pages)
}

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: 5 * time.Second}).DialContext
	return &http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	}
}

type entrySaver interface {
	SaveEntry(ctx context.Context, entry *archive.Entry) (bool, error)
}

type app struct {
	cfg    *archive.Config
	logger *zap.Logger
	out    io.Writer
	client *mastodon.Client
	// saver is nil for a dry run.
	saver entrySaver
}

func (a *app) fetch(ctx context.Context, maxID, sinceID string, pages int) error {
	acct, err := a.client.LookupAccount(ctx, a.cfg.Username)
	if err != nil {
		return err
	}
	a.logger.Info("Found account", zap.String("username", a.cfg.Username), zap.String("account_id", acct.ID))

	fetcher := &archive.Fetcher{
		Client:    a.client,
		AccountID: acct.ID,
		MaxID:     maxID,
		SinceID:   sinceID,
		Pages:     pages,
	}
	return fetcher.Fetch(ctx, func(page []*mastodon.Status) error {
		a.logger.Debug("Fetched page",
			zap.Int("statuses", len(page)),
			zap.String("first_id", page[0].ID),
			zap.String("last_id", page[len(page)-1].ID))
		entries, err := archive.ProcessStatuses(ctx, page, a.cfg.MaxDepth, a.cfg.Concurrency)
		if err != nil {
			return err
		}
		a.logger.Info("Processed page",
			zap.Int("statuses", len(page)),
			zap.Int("robot_posts", len(entries)))
		for _, entry := range entries {
			if err := a.handle(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *app) handle(ctx context.Context, entry *archive.Entry) error {
	if a.saver == nil {
		return printEntry(a.out, entry)
	}
	saved, err := a.saver.SaveEntry(ctx, entry)
	if err != nil {
		return err
	}
	if saved {
		a.logger.Info("Saved post",
			zap.String("status_id", entry.StatusID),
			zap.Int32("first_number", entry.Group.Robots[0].Number),
			zap.Int("robots", len(entry.Group.Robots)))
	} else {
		a.logger.Debug("Post unchanged", zap.String("status_id", entry.StatusID))
	}
	return nil
}

func printEntry(w io.Writer, entry *archive.Entry) error {
	if _, err := fmt.Fprintf(w, "%s\n", entry.URL); err != nil {
		return err
	}
	if err := format.Group(w, entry.Group); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n\n", entry.HTML)
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "smolrobots-fetch:", err)
		os.Exit(1)
	}
}
