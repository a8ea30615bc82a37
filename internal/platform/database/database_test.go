package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverSQLite})
	require.Error(t, err)
}

func TestOpenPingClose(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, Options{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, conn.Driver())
	require.NoError(t, conn.Ping(ctx))
	assert.Equal(t, 1, conn.DB().Stats().MaxOpenConnections)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestReconnectKeepsFileBackedData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tle.db")
	conn, err := Open(ctx, Options{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.DB().ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	_, err = conn.DB().ExecContext(ctx, conn.DB().Rebind(`INSERT INTO kv (k, v) VALUES (?, ?)`), "a", "1")
	require.NoError(t, err)

	before := conn.DB()
	require.NoError(t, conn.Reconnect(ctx))
	assert.NotSame(t, before, conn.DB())

	var v string
	require.NoError(t, conn.DB().GetContext(ctx, &v, conn.DB().Rebind(`SELECT v FROM kv WHERE k = ?`), "a"))
	assert.Equal(t, "1", v)
}

func TestSqliteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "file:tle.db?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("file:tle.db?cache=shared"))
	assert.Equal(t, "tle.db?_pragma=foreign_keys(0)", sqliteDSN("tle.db?_pragma=foreign_keys(0)"))
}

func TestForeignKeysOnEveryPooledConnection(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Open(DriverSQLite, sqliteDSN(filepath.Join(t.TempDir(), "tle.db")))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(2)

	first, err := db.Connx(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.Connx(ctx)
	require.NoError(t, err)
	defer second.Close()

	for _, c := range []*sqlx.Conn{first, second} {
		var on int
		require.NoError(t, c.GetContext(ctx, &on, `PRAGMA foreign_keys`))
		assert.Equal(t, 1, on)
	}
}

func TestForeignKeysSurviveReconnect(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "tle.db")})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.DB().ExecContext(ctx, `CREATE TABLE parent (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = conn.DB().ExecContext(ctx, `CREATE TABLE child (parent_id INTEGER NOT NULL REFERENCES parent (id))`)
	require.NoError(t, err)

	require.NoError(t, conn.Reconnect(ctx))
	_, err = conn.DB().ExecContext(ctx, `INSERT INTO child (parent_id) VALUES (42)`)
	assert.Error(t, err)
}

func TestReconnectRefusesInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	for _, dsn := range []string{":memory:", "file::memory:?cache=shared", "file:tle?mode=memory"} {
		conn, err := Open(ctx, Options{Driver: DriverSQLite, DSN: dsn})
		require.NoError(t, err, dsn)
		before := conn.DB()

		assert.ErrorIs(t, conn.Reconnect(ctx), ErrInMemoryReconnect, dsn)
		assert.Same(t, before, conn.DB(), dsn)
		require.NoError(t, conn.Close())
	}
}
