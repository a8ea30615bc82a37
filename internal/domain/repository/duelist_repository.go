package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

// DuelistRepository owns the rating ledger's membership. Ratings only move
// through duel completion.
type DuelistRepository interface {
	Register(ctx context.Context, userID int64) (int64, error)
	Find(ctx context.Context, userID int64) (*model.Duelist, error)
	List(ctx context.Context) ([]model.Duelist, error)
}

type sqlDuelistRepository struct {
	s Session
}

func NewSQLDuelistRepository(s Session) DuelistRepository {
	return &sqlDuelistRepository{s: s}
}

// Register adds the user at the default rating. Registering twice is a no-op
// that returns 0.
func (r *sqlDuelistRepository) Register(ctx context.Context, userID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), insertIgnoreQuery("duelist", []string{"user_id"}, []string{"user_id", "rating"}),
		userID, model.DefaultDuelRating)
	if err != nil {
		return 0, wrap("sqlDuelistRepository.Register", err)
	}
	return n, nil
}

func (r *sqlDuelistRepository) Find(ctx context.Context, userID int64) (*model.Duelist, error) {
	var d model.Duelist
	found, err := lookupOne(ctx, r.s.DB(), &d, `SELECT user_id, rating FROM duelist WHERE user_id = ?`, userID)
	if err != nil {
		return nil, wrap("sqlDuelistRepository.Find", err)
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

func (r *sqlDuelistRepository) List(ctx context.Context) ([]model.Duelist, error) {
	var ds []model.Duelist
	if err := lookupAll(ctx, r.s.DB(), &ds, `SELECT user_id, rating FROM duelist ORDER BY rating DESC, user_id`); err != nil {
		return nil, wrap("sqlDuelistRepository.List", err)
	}
	return ds, nil
}

// applyRatingDelta is the only writer of duelist.rating. It must run inside the
// transaction that completes the duel and fails unless exactly one row changed.
func applyRatingDelta(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	n, err := exec(ctx, tx, `UPDATE duelist SET rating = rating + ? WHERE user_id = ?`, delta, userID)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("rating update for user %d: %w", userID, common.ErrNotRegistered)
	}
	return nil
}
