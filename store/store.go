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

// Package store persists archived robot posts in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"zombiezen.com/go/smolrobots"
	"zombiezen.com/go/smolrobots/archive"
)

// Schema is the database schema used by [Store].
// Every statement is safe to run against an existing database.
const Schema = `
CREATE TABLE IF NOT EXISTS posts (
	status_id text PRIMARY KEY,
	url text NOT NULL,
	created_at timestamptz NOT NULL,
	content_warning text,
	body text NOT NULL,
	html text NOT NULL,
	text text NOT NULL,
	content_hash bigint NOT NULL
);

CREATE TABLE IF NOT EXISTS robots (
	robot_number integer NOT NULL,
	ident text NOT NULL,
	prefix text NOT NULL,
	suffix text NOT NULL,
	plural text,
	status_id text NOT NULL REFERENCES posts ON DELETE CASCADE,
	PRIMARY KEY (robot_number, ident)
);

CREATE TABLE IF NOT EXISTS media (
	status_id text NOT NULL REFERENCES posts ON DELETE CASCADE,
	position integer NOT NULL,
	type text NOT NULL,
	url text NOT NULL,
	description text,
	PRIMARY KEY (status_id, position)
);
`

// Store is a connection pool to an archive database.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at the given connection string.
func Open(ctx context.Context, uri string) (*Store, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes all connections to the database.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", pgError(err))
	}
	return nil
}

// SaveEntry stores an archived post and its robots.
// It reports false if the post was already stored with the same content.
func (s *Store) SaveEntry(ctx context.Context, entry *archive.Entry) (saved bool, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("save status %s: %w", entry.StatusID, err)
	}
	defer tx.Rollback(ctx)

	saved, err = saveEntry(ctx, tx, entry)
	if err != nil {
		return false, fmt.Errorf("save status %s: %w", entry.StatusID, pgError(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("save status %s: %w", entry.StatusID, err)
	}
	return saved, nil
}

func saveEntry(ctx context.Context, tx pgx.Tx, entry *archive.Entry) (bool, error) {
	var statusID string
	err := tx.QueryRow(ctx, `
		INSERT INTO posts (status_id, url, created_at, content_warning, body, html, text, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (status_id) DO UPDATE SET
			url = EXCLUDED.url,
			content_warning = EXCLUDED.content_warning,
			body = EXCLUDED.body,
			html = EXCLUDED.html,
			text = EXCLUDED.text,
			content_hash = EXCLUDED.content_hash
		WHERE posts.content_hash <> EXCLUDED.content_hash
		RETURNING status_id;`,
		entry.StatusID,
		entry.URL,
		entry.CreatedAt,
		nullString(entry.Group.ContentWarning),
		entry.Group.Body,
		entry.HTML,
		entry.Text,
		int64(entry.ContentHash),
	).Scan(&statusID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Unchanged.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("upsert post: %w", err)
	}

	batch := new(pgx.Batch)
	for _, r := range entry.Group.Robots {
		batch.Queue(`
			INSERT INTO robots (robot_number, ident, prefix, suffix, plural, status_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (robot_number, ident) DO UPDATE SET
				prefix = EXCLUDED.prefix,
				suffix = EXCLUDED.suffix,
				plural = EXCLUDED.plural,
				status_id = EXCLUDED.status_id;`,
			r.Number,
			r.Name.Ident(),
			r.Name.Prefix,
			r.Name.Suffix,
			nullString(r.Name.Plural),
			entry.StatusID,
		)
	}
	batch.Queue(`DELETE FROM media WHERE status_id = $1;`, entry.StatusID)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("upsert robots: %w", err)
	}

	if len(entry.Media) > 0 {
		rows := make([][]any, 0, len(entry.Media))
		for i, m := range entry.Media {
			rows = append(rows, []any{entry.StatusID, i, string(m.Type), m.URL, nullString(m.Description)})
		}
		columns := []string{"status_id", "position", "type", "url", "description"}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"media"}, columns, pgx.CopyFromRows(rows)); err != nil {
			return false, fmt.Errorf("copy media: %w", err)
		}
	}
	return true, nil
}

// RobotRow is a robot stored in the database.
type RobotRow struct {
	Number   int32
	Ident    string
	Prefix   string
	Suffix   string
	Plural   string
	StatusID string
}

// Robot returns the robot stored under the given key.
// It reports false if no such robot has been saved.
func (s *Store) Robot(ctx context.Context, key smolrobots.Key) (_ RobotRow, ok bool, err error) {
	var row RobotRow
	var plural *string
	err = s.pool.QueryRow(ctx, `
		SELECT robot_number, ident, prefix, suffix, plural, status_id
		FROM robots
		WHERE robot_number = $1 AND ident = $2;`,
		key.Number, key.Name,
	).Scan(&row.Number, &row.Ident, &row.Prefix, &row.Suffix, &plural, &row.StatusID)
	if errors.Is(err, pgx.ErrNoRows) {
		return RobotRow{}, false, nil
	}
	if err != nil {
		return RobotRow{}, false, fmt.Errorf("get robot %v: %w", key, pgError(err))
	}
	if plural != nil {
		row.Plural = *plural
	}
	return row, true, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// pgError adds the server's detail message to a PostgreSQL error.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s)", err, pgErr.Detail)
	}
	return err
}
