// Package repository is the persistence layer of the bot: handle bindings,
// profile cache, duels and the duelist ledger, gitgud challenges, rated virtual
// contests and per-guild settings.
//
// Every operation is one parameterized statement or one transaction. Guarded
// state transitions report the number of rows they changed; zero means the row
// was not in the required state and nothing was written. Pure reads report a
// missing row as a nil pointer, an empty slice or ok == false, never as an error.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"tle_userdb/internal/common"
)

// Session hands out the current connection pool. *database.Conn satisfies it,
// so a reconnect is picked up by every repository on its next call.
type Session interface {
	DB() *sqlx.DB
}

type Repositories struct {
	Handles    HandleRepository
	Profiles   ProfileRepository
	Duelists   DuelistRepository
	Duels      DuelRepository
	Challenges ChallengeRepository
	RatedVCs   RatedVCRepository
	Settings   SettingsRepository
}

func New(s Session) *Repositories {
	return &Repositories{
		Handles:    NewSQLHandleRepository(s),
		Profiles:   NewSQLProfileRepository(s),
		Duelists:   NewSQLDuelistRepository(s),
		Duels:      NewSQLDuelRepository(s),
		Challenges: NewSQLChallengeRepository(s),
		RatedVCs:   NewSQLRatedVCRepository(s),
		Settings:   NewSQLSettingsRepository(s),
	}
}

// errNoop aborts a transaction whose guarded statement matched no row.
var errNoop = errors.New("guarded statement matched no rows")

func withTx(ctx context.Context, s Session, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB().BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// guardedTx runs fn in a transaction and converts the outcome into an
// affected-row count: 1 when fn committed, 0 when it bailed out with errNoop.
func guardedTx(ctx context.Context, s Session, fn func(tx *sqlx.Tx) error) (int64, error) {
	err := withTx(ctx, s, fn)
	if errors.Is(err, errNoop) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// requireOne turns anything but exactly one affected row into errNoop.
func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return errNoop
	}
	return nil
}

// classify tags driver errors with the taxonomy sentinel callers branch on.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrUniqueConstraint), errors.Is(err, common.ErrConnectivity):
		return err
	case common.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", common.ErrUniqueConstraint, err)
	case common.IsConnectivityFailure(err):
		return fmt.Errorf("%w: %w", common.ErrConnectivity, err)
	}
	return err
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, classify(err))
}

// Times are stored as epoch seconds with microsecond precision.
func toEpoch(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func fromEpoch(f float64) time.Time {
	return time.UnixMicro(int64(math.Round(f * 1e6))).UTC()
}

func fromNullEpoch(f sql.NullFloat64) *time.Time {
	if !f.Valid {
		return nil
	}
	t := fromEpoch(f.Float64)
	return &t
}

func fromNullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
