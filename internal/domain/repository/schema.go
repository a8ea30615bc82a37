package repository

import (
	"context"
	"fmt"
	"strings"

	"tle_userdb/internal/platform/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_handle (
		user_id  BIGINT NOT NULL,
		guild_id BIGINT NOT NULL,
		handle   TEXT NOT NULL,
		active   INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (user_id, guild_id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ix_user_handle_guild_handle ON user_handle (guild_id, handle)`,

	`CREATE TABLE IF NOT EXISTS cf_user_cache (
		handle            TEXT PRIMARY KEY,
		first_name        TEXT,
		last_name         TEXT,
		country           TEXT,
		city              TEXT,
		organization      TEXT,
		contribution      INTEGER,
		rating            INTEGER,
		max_rating        INTEGER,
		last_online_time  BIGINT,
		registration_time BIGINT,
		friend_of_count   INTEGER,
		title_photo       TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS duelist (
		user_id BIGINT PRIMARY KEY,
		rating  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS duel (
		id           {{serial}},
		challenger   BIGINT NOT NULL,
		challengee   BIGINT NOT NULL,
		issue_time   DOUBLE PRECISION NOT NULL,
		start_time   DOUBLE PRECISION,
		finish_time  DOUBLE PRECISION,
		problem_name TEXT,
		contest_id   INTEGER,
		p_index      TEXT,
		status       INTEGER NOT NULL,
		winner       INTEGER,
		type         INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_duel_status ON duel (status)`,

	`CREATE TABLE IF NOT EXISTS challenge (
		id           {{serial}},
		user_id      BIGINT NOT NULL,
		issue_time   DOUBLE PRECISION NOT NULL,
		finish_time  DOUBLE PRECISION,
		problem_name TEXT NOT NULL,
		contest_id   INTEGER NOT NULL,
		p_index      TEXT NOT NULL,
		rating_delta INTEGER NOT NULL,
		status       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_challenge_user ON challenge (user_id)`,
	`CREATE TABLE IF NOT EXISTS user_challenge (
		user_id             BIGINT PRIMARY KEY,
		active_challenge_id BIGINT,
		issue_time          DOUBLE PRECISION,
		score               INTEGER NOT NULL,
		num_completed       INTEGER NOT NULL,
		num_skipped         INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS reminder (
		guild_id      BIGINT PRIMARY KEY,
		channel_id    BIGINT,
		role_id       BIGINT,
		remind_before TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS starboard (
		guild_id   BIGINT PRIMARY KEY,
		channel_id BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS starboard_message (
		original_msg_id  BIGINT PRIMARY KEY,
		starboard_msg_id BIGINT NOT NULL,
		guild_id         BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rankup (
		guild_id   BIGINT PRIMARY KEY,
		channel_id BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS auto_role_update (
		guild_id BIGINT PRIMARY KEY
	)`,

	`CREATE TABLE IF NOT EXISTS rated_vcs (
		id          {{serial}},
		contest_id  INTEGER NOT NULL,
		start_time  DOUBLE PRECISION NOT NULL,
		finish_time DOUBLE PRECISION NOT NULL,
		status      INTEGER NOT NULL,
		guild_id    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rated_vc_users (
		vc_id   BIGINT NOT NULL REFERENCES rated_vcs (id),
		user_id BIGINT NOT NULL,
		rating  INTEGER,
		PRIMARY KEY (vc_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_rated_vc_users_user ON rated_vc_users (user_id)`,
	`CREATE TABLE IF NOT EXISTS rated_vc_settings (
		guild_id   BIGINT PRIMARY KEY,
		channel_id BIGINT
	)`,
}

// EnsureSchema creates every table and index that does not exist yet. It is
// safe to run on every startup.
func EnsureSchema(ctx context.Context, s Session) error {
	db := s.DB()
	serial := "BIGSERIAL PRIMARY KEY"
	if db.DriverName() == database.DriverSQLite {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, strings.ReplaceAll(stmt, "{{serial}}", serial)); err != nil {
			return fmt.Errorf("repository.EnsureSchema: %w", classify(err))
		}
	}
	return nil
}
