package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"tle_userdb/internal/domain/model"
)

// ChallengeRepository tracks gitgud practice challenges. Each user has a single
// active slot in user_challenge that a new challenge may only take when empty.
type ChallengeRepository interface {
	IssueChallenge(ctx context.Context, userID int64, issueTime time.Time, problem model.Problem, ratingDelta int) (int64, error)
	ActiveChallenge(ctx context.Context, userID int64) (*model.ActiveChallenge, error)
	Gudgitters(ctx context.Context) ([]model.GudgitterScore, error)
	Howgud(ctx context.Context, userID int64) ([]int, error)
	Noguds(ctx context.Context, userID int64) ([]string, error)
	Gitlog(ctx context.Context, userID int64) ([]model.Challenge, error)
	CompleteChallenge(ctx context.Context, userID, challengeID int64, finishTime time.Time, delta int) (int64, error)
	SkipChallenge(ctx context.Context, userID, challengeID int64, status model.ChallengeStatus) (int64, error)
}

type challengeRow struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	IssueTime   float64         `db:"issue_time"`
	FinishTime  sql.NullFloat64 `db:"finish_time"`
	ProblemName string          `db:"problem_name"`
	ContestID   int             `db:"contest_id"`
	Index       string          `db:"p_index"`
	RatingDelta int             `db:"rating_delta"`
	Status      int             `db:"status"`
}

type sqlChallengeRepository struct {
	s Session
}

func NewSQLChallengeRepository(s Session) ChallengeRepository {
	return &sqlChallengeRepository{s: s}
}

// IssueChallenge records a GITGUD challenge and points the user's slot at it.
// It returns 0 and writes nothing when the slot is already taken.
func (r *sqlChallengeRepository) IssueChallenge(ctx context.Context, userID int64, issueTime time.Time, problem model.Problem, ratingDelta int) (int64, error) {
	n, err := guardedTx(ctx, r.s, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO challenge (user_id, issue_time, problem_name, contest_id, p_index, rating_delta, status)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			userID, toEpoch(issueTime), problem.Name, problem.ContestID, problem.Index, ratingDelta,
			int(model.ChallengeGitGud)).Scan(&id)
		if err != nil {
			return classify(err)
		}
		if _, err := exec(ctx, tx, insertIgnoreQuery("user_challenge", []string{"user_id"},
			[]string{"user_id", "score", "num_completed", "num_skipped"}), userID, 0, 0, 0); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE user_challenge SET active_challenge_id = ?, issue_time = ?
			WHERE user_id = ? AND active_challenge_id IS NULL`), id, toEpoch(issueTime), userID)
		if err != nil {
			return classify(err)
		}
		return requireOne(res)
	})
	if err != nil {
		return 0, wrap("sqlChallengeRepository.IssueChallenge", err)
	}
	return n, nil
}

func (r *sqlChallengeRepository) ActiveChallenge(ctx context.Context, userID int64) (*model.ActiveChallenge, error) {
	var row struct {
		ID          int64   `db:"active_challenge_id"`
		IssueTime   float64 `db:"issue_time"`
		ProblemName string  `db:"problem_name"`
		ContestID   int     `db:"contest_id"`
		Index       string  `db:"p_index"`
		RatingDelta int     `db:"rating_delta"`
	}
	found, err := lookupOne(ctx, r.s.DB(), &row, `
		SELECT uc.active_challenge_id, uc.issue_time, c.problem_name, c.contest_id, c.p_index, c.rating_delta
		FROM user_challenge uc
		JOIN challenge c ON c.id = uc.active_challenge_id
		WHERE uc.user_id = ?`, userID)
	if err != nil {
		return nil, wrap("sqlChallengeRepository.ActiveChallenge", err)
	}
	if !found {
		return nil, nil
	}
	return &model.ActiveChallenge{
		ChallengeID: row.ID,
		IssueTime:   fromEpoch(row.IssueTime),
		Problem:     model.Problem{Name: row.ProblemName, ContestID: row.ContestID, Index: row.Index},
		RatingDelta: row.RatingDelta,
	}, nil
}

func (r *sqlChallengeRepository) Gudgitters(ctx context.Context) ([]model.GudgitterScore, error) {
	var scores []model.GudgitterScore
	if err := lookupAll(ctx, r.s.DB(), &scores, `SELECT user_id, score FROM user_challenge ORDER BY score DESC, user_id`); err != nil {
		return nil, wrap("sqlChallengeRepository.Gudgitters", err)
	}
	return scores, nil
}

// Howgud returns the rating deltas of the user's finished challenges.
func (r *sqlChallengeRepository) Howgud(ctx context.Context, userID int64) ([]int, error) {
	var deltas []int
	err := lookupAll(ctx, r.s.DB(), &deltas,
		`SELECT rating_delta FROM challenge WHERE user_id = ? AND finish_time IS NOT NULL ORDER BY id`, userID)
	if err != nil {
		return nil, wrap("sqlChallengeRepository.Howgud", err)
	}
	return deltas, nil
}

func (r *sqlChallengeRepository) Noguds(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := lookupAll(ctx, r.s.DB(), &names,
		`SELECT problem_name FROM challenge WHERE user_id = ? AND status = ? ORDER BY id`, userID, int(model.ChallengeNoGud))
	if err != nil {
		return nil, wrap("sqlChallengeRepository.Noguds", err)
	}
	return names, nil
}

func (r *sqlChallengeRepository) Gitlog(ctx context.Context, userID int64) ([]model.Challenge, error) {
	var rows []challengeRow
	err := lookupAll(ctx, r.s.DB(), &rows, `
		SELECT id, user_id, issue_time, finish_time, problem_name, contest_id, p_index, rating_delta, status
		FROM challenge WHERE user_id = ? AND status != ? ORDER BY issue_time DESC, id DESC`,
		userID, int(model.ChallengeForcedNoGud))
	if err != nil {
		return nil, wrap("sqlChallengeRepository.Gitlog", err)
	}
	out := make([]model.Challenge, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Challenge{
			ID:          row.ID,
			UserID:      row.UserID,
			IssueTime:   fromEpoch(row.IssueTime),
			FinishTime:  fromNullEpoch(row.FinishTime),
			Problem:     model.Problem{Name: row.ProblemName, ContestID: row.ContestID, Index: row.Index},
			RatingDelta: row.RatingDelta,
			Status:      model.ChallengeStatus(row.Status),
		})
	}
	return out, nil
}

// CompleteChallenge marks the active challenge GOTGUD, frees the slot and adds
// delta to the user's score.
func (r *sqlChallengeRepository) CompleteChallenge(ctx context.Context, userID, challengeID int64, finishTime time.Time, delta int) (int64, error) {
	n, err := guardedTx(ctx, r.s, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE challenge SET finish_time = ?, status = ?
			WHERE id = ? AND user_id = ? AND status = ?`),
			toEpoch(finishTime), int(model.ChallengeGotGud), challengeID, userID, int(model.ChallengeGitGud))
		if err != nil {
			return classify(err)
		}
		if err := requireOne(res); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE user_challenge
			SET score = score + ?, num_completed = num_completed + 1, active_challenge_id = NULL, issue_time = NULL
			WHERE user_id = ? AND active_challenge_id = ?`), delta, userID, challengeID)
		if err != nil {
			return classify(err)
		}
		return requireOne(res)
	})
	if err != nil {
		return 0, wrap("sqlChallengeRepository.CompleteChallenge", err)
	}
	return n, nil
}

// SkipChallenge ends the active challenge as NOGUD or FORCED_NOGUD and frees
// the slot.
func (r *sqlChallengeRepository) SkipChallenge(ctx context.Context, userID, challengeID int64, status model.ChallengeStatus) (int64, error) {
	if status != model.ChallengeNoGud && status != model.ChallengeForcedNoGud {
		return 0, fmt.Errorf("sqlChallengeRepository.SkipChallenge: %s is not a skip: %w", status, model.ErrIllegalTransition)
	}
	n, err := guardedTx(ctx, r.s, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE user_challenge
			SET active_challenge_id = NULL, issue_time = NULL, num_skipped = num_skipped + 1
			WHERE user_id = ? AND active_challenge_id = ?`), userID, challengeID)
		if err != nil {
			return classify(err)
		}
		if err := requireOne(res); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE challenge SET status = ? WHERE id = ? AND status = ?`),
			int(status), challengeID, int(model.ChallengeGitGud))
		if err != nil {
			return classify(err)
		}
		return requireOne(res)
	})
	if err != nil {
		return 0, wrap("sqlChallengeRepository.SkipChallenge", err)
	}
	return n, nil
}
