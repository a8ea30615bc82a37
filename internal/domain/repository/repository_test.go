package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tle_userdb/internal/platform/database"
)

func newTestSession(t *testing.T) *database.Conn {
	t.Helper()
	ctx := context.Background()
	conn, err := database.Open(ctx, database.Options{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, EnsureSchema(ctx, conn))
	return conn
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	conn := newTestSession(t)
	assert.NoError(t, EnsureSchema(context.Background(), conn))
}

func TestUpsertQuery(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO starboard (guild_id, channel_id) VALUES (?, ?) ON CONFLICT (guild_id) DO UPDATE SET channel_id = EXCLUDED.channel_id",
		upsertQuery("starboard", []string{"guild_id"}, []string{"guild_id", "channel_id"}))
	assert.Equal(t,
		"INSERT INTO auto_role_update (guild_id) VALUES (?) ON CONFLICT (guild_id) DO NOTHING",
		upsertQuery("auto_role_update", []string{"guild_id"}, []string{"guild_id"}))
}

func TestUpsertRejectsMismatchedValues(t *testing.T) {
	conn := newTestSession(t)
	_, err := upsert(context.Background(), conn.DB(), "starboard", []string{"guild_id"}, []string{"guild_id", "channel_id"}, 1)
	assert.Error(t, err)
}

func TestUpsertManyRollsBackOnBadRow(t *testing.T) {
	conn := newTestSession(t)
	ctx := context.Background()
	rows := [][]any{{int64(1), int64(10)}, {int64(2)}}
	_, err := upsertMany(ctx, conn, "starboard", []string{"guild_id"}, []string{"guild_id", "channel_id"}, rows)
	require.Error(t, err)

	var n int
	n, err = count(ctx, conn.DB(), `SELECT COUNT(*) FROM starboard`)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEpochRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 9, 17, 4, 5, 123456000, time.UTC)
	assert.True(t, ts.Equal(fromEpoch(toEpoch(ts))))
	assert.Nil(t, fromNullEpoch(sql.NullFloat64{}))
}
