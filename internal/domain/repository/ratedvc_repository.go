package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"tle_userdb/internal/domain/model"
)

type RatedVCRepository interface {
	CreateRatedVC(ctx context.Context, contestID int, startTime, finishTime time.Time, guildID int64, participantIDs []int64) (int64, error)
	GetRatedVC(ctx context.Context, id int64) (*model.RatedVC, error)
	ListOngoingIDs(ctx context.Context) ([]int64, error)
	ParticipantIDs(ctx context.Context, vcID int64) ([]int64, error)
	FinishRatedVC(ctx context.Context, id int64) (int64, error)
	RecordRating(ctx context.Context, vcID, userID int64, rating int) (int64, error)
	CurrentRating(ctx context.Context, userID int64, useDefault bool) (int, bool, error)
	RatingHistory(ctx context.Context, userID int64) ([]model.VCRating, error)
	RemoveLastParticipation(ctx context.Context, userID int64) (int64, error)
}

type ratedVCRow struct {
	ID         int64   `db:"id"`
	ContestID  int     `db:"contest_id"`
	StartTime  float64 `db:"start_time"`
	FinishTime float64 `db:"finish_time"`
	Status     int     `db:"status"`
	GuildID    int64   `db:"guild_id"`
}

type sqlRatedVCRepository struct {
	s Session
}

func NewSQLRatedVCRepository(s Session) RatedVCRepository {
	return &sqlRatedVCRepository{s: s}
}

// CreateRatedVC inserts an ONGOING contest and one unrated participation row
// per participant in a single transaction.
func (r *sqlRatedVCRepository) CreateRatedVC(ctx context.Context, contestID int, startTime, finishTime time.Time, guildID int64, participantIDs []int64) (int64, error) {
	var id int64
	err := withTx(ctx, r.s, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO rated_vcs (contest_id, start_time, finish_time, status, guild_id)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
			contestID, toEpoch(startTime), toEpoch(finishTime), int(model.RatedVCOngoing), guildID).Scan(&id)
		if err != nil {
			return classify(err)
		}
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO rated_vc_users (vc_id, user_id) VALUES (?, ?)`))
		if err != nil {
			return classify(err)
		}
		defer stmt.Close()
		for _, userID := range participantIDs {
			if _, err := stmt.ExecContext(ctx, id, userID); err != nil {
				return classify(err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, wrap("sqlRatedVCRepository.CreateRatedVC", err)
	}
	return id, nil
}

func (r *sqlRatedVCRepository) GetRatedVC(ctx context.Context, id int64) (*model.RatedVC, error) {
	var row ratedVCRow
	found, err := lookupOne(ctx, r.s.DB(), &row,
		`SELECT id, contest_id, start_time, finish_time, status, guild_id FROM rated_vcs WHERE id = ?`, id)
	if err != nil {
		return nil, wrap("sqlRatedVCRepository.GetRatedVC", err)
	}
	if !found {
		return nil, nil
	}
	return &model.RatedVC{
		ID:         row.ID,
		ContestID:  row.ContestID,
		StartTime:  fromEpoch(row.StartTime),
		FinishTime: fromEpoch(row.FinishTime),
		Status:     model.RatedVCStatus(row.Status),
		GuildID:    row.GuildID,
	}, nil
}

func (r *sqlRatedVCRepository) ListOngoingIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := lookupAll(ctx, r.s.DB(), &ids, `SELECT id FROM rated_vcs WHERE status = ? ORDER BY id`, int(model.RatedVCOngoing)); err != nil {
		return nil, wrap("sqlRatedVCRepository.ListOngoingIDs", err)
	}
	return ids, nil
}

func (r *sqlRatedVCRepository) ParticipantIDs(ctx context.Context, vcID int64) ([]int64, error) {
	var ids []int64
	if err := lookupAll(ctx, r.s.DB(), &ids, `SELECT user_id FROM rated_vc_users WHERE vc_id = ? ORDER BY user_id`, vcID); err != nil {
		return nil, wrap("sqlRatedVCRepository.ParticipantIDs", err)
	}
	return ids, nil
}

// FinishRatedVC sets the status to FINISHED without checking the current one,
// so finishing twice is harmless. It returns 0 only for an unknown id.
func (r *sqlRatedVCRepository) FinishRatedVC(ctx context.Context, id int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `UPDATE rated_vcs SET status = ? WHERE id = ?`, int(model.RatedVCFinished), id)
	if err != nil {
		return 0, wrap("sqlRatedVCRepository.FinishRatedVC", err)
	}
	return n, nil
}

// RecordRating sets the user's post-contest rating, overwriting an earlier one.
func (r *sqlRatedVCRepository) RecordRating(ctx context.Context, vcID, userID int64, rating int) (int64, error) {
	n, err := upsert(ctx, r.s.DB(), "rated_vc_users", []string{"vc_id", "user_id"},
		[]string{"vc_id", "user_id", "rating"}, vcID, userID, rating)
	if err != nil {
		return 0, wrap("sqlRatedVCRepository.RecordRating", err)
	}
	return n, nil
}

// CurrentRating returns the rating from the user's highest-numbered rated
// contest. Without one it returns DefaultVCRating when useDefault is set and
// ok == false otherwise.
func (r *sqlRatedVCRepository) CurrentRating(ctx context.Context, userID int64, useDefault bool) (int, bool, error) {
	var rating sql.NullInt64
	found, err := lookupOne(ctx, r.s.DB(), &rating,
		`SELECT rating FROM rated_vc_users WHERE user_id = ? AND rating IS NOT NULL ORDER BY vc_id DESC LIMIT 1`, userID)
	if err != nil {
		return 0, false, wrap("sqlRatedVCRepository.CurrentRating", err)
	}
	if found && rating.Valid {
		return int(rating.Int64), true, nil
	}
	if useDefault {
		return model.DefaultVCRating, true, nil
	}
	return 0, false, nil
}

func (r *sqlRatedVCRepository) RatingHistory(ctx context.Context, userID int64) ([]model.VCRating, error) {
	var history []model.VCRating
	err := lookupAll(ctx, r.s.DB(), &history,
		`SELECT vc_id, rating FROM rated_vc_users WHERE user_id = ? AND rating IS NOT NULL ORDER BY vc_id`, userID)
	if err != nil {
		return nil, wrap("sqlRatedVCRepository.RatingHistory", err)
	}
	return history, nil
}

// RemoveLastParticipation deletes the user's row for their highest vc id,
// rated or not.
func (r *sqlRatedVCRepository) RemoveLastParticipation(ctx context.Context, userID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `
		DELETE FROM rated_vc_users
		WHERE user_id = ? AND vc_id = (SELECT MAX(vc_id) FROM rated_vc_users WHERE user_id = ?)`, userID, userID)
	if err != nil {
		return 0, wrap("sqlRatedVCRepository.RemoveLastParticipation", err)
	}
	return n, nil
}
