package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/repository"
	"tle_userdb/internal/platform/database"
	"tle_userdb/internal/platform/lock"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	ctx := context.Background()
	conn, err := database.Open(ctx, database.Options{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repository.EnsureSchema(ctx, conn))
	return repository.New(conn)
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(time.Minute)
		return t
	}
}

// busyLocker refuses every acquisition and records what was asked for.
type busyLocker struct {
	asked [][]string
}

func (b *busyLocker) Acquire(_ context.Context, keys ...string) (lock.Release, error) {
	b.asked = append(b.asked, keys)
	return nil, common.ErrLockBusy
}
