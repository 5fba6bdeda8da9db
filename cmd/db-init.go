/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/leitbox/internal/infrastructure/config"
	"github.com/eslsoft/leitbox/internal/infrastructure/database"
)

// dbInitCmd applies the engine's database schema.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Initialize the database schema",
	Long:  "Creates the catalog, assignment, mastery, profile, and attempt tables. Safe to re-run; all statements are idempotent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		pool, closePool, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer closePool()

		ctx := cmd.Context()
		for _, stmt := range schemaStatements {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}

		fmt.Println("schema applied")
		return nil
	},
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS vocab_lists (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS vocab_items (
		id BIGSERIAL PRIMARY KEY,
		list_id BIGINT NOT NULL REFERENCES vocab_lists(id),
		term TEXT NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		definitions JSONB NOT NULL DEFAULT '{}',
		sample_sentences TEXT[] NOT NULL DEFAULT '{}',
		position INT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vocab_items_list ON vocab_items (list_id, position)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		class_id BIGINT NOT NULL,
		list_id BIGINT NOT NULL REFERENCES vocab_lists(id),
		base_pace INT NOT NULL DEFAULT 20,
		test_options_count INT NOT NULL DEFAULT 4,
		test_mode TEXT NOT NULL DEFAULT '',
		pass_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
		study_days_per_week INT NOT NULL DEFAULT 0,
		PRIMARY KEY (class_id, list_id)
	)`,
	`CREATE TABLE IF NOT EXISTS mastery_records (
		learner_id BIGINT NOT NULL,
		item_id BIGINT NOT NULL REFERENCES vocab_items(id),
		box INT NOT NULL,
		streak INT NOT NULL,
		last_reviewed_at TIMESTAMPTZ NOT NULL,
		next_review_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (learner_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS performance_profiles (
		learner_id BIGINT PRIMARY KEY,
		credibility DOUBLE PRECISION NOT NULL,
		retention DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS test_attempts (
		id BIGSERIAL PRIMARY KEY,
		test_id TEXT NOT NULL,
		learner_id BIGINT NOT NULL,
		list_id BIGINT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		answers JSONB NOT NULL DEFAULT '[]',
		score INT NOT NULL,
		skipped_count INT NOT NULL DEFAULT 0,
		credibility_snapshot DOUBLE PRECISION NOT NULL,
		retention_snapshot DOUBLE PRECISION NOT NULL,
		UNIQUE (learner_id, test_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_test_attempts_learner_list ON test_attempts (learner_id, list_id, submitted_at DESC)`,
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}
