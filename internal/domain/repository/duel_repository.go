package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

// Transition reports which duel a role-based transition looked at and whether
// it moved. DuelID is 0 when the user had no PENDING duel in that role.
type Transition struct {
	DuelID   int64
	Affected int64
}

type DuelRepository interface {
	CreateDuel(ctx context.Context, challengerID, challengeeID int64, issueTime time.Time, problem model.Problem, typ model.DuelType) (int64, error)
	GetDuel(ctx context.Context, id int64) (*model.Duel, error)
	FindActive(ctx context.Context, userID int64) (*model.Duel, error)
	FindPendingByChallengee(ctx context.Context, challengeeID int64) (*model.Duel, error)
	FindPendingByChallenger(ctx context.Context, challengerID int64) (*model.Duel, error)
	FindOngoing(ctx context.Context, userID int64) (*model.Duel, error)

	AcceptDuel(ctx context.Context, challengeeID int64, startTime time.Time) (Transition, error)
	DeclineDuel(ctx context.Context, challengeeID int64) (Transition, error)
	WithdrawDuel(ctx context.Context, challengerID int64) (Transition, error)
	StartDuel(ctx context.Context, id int64, startTime time.Time) (int64, error)
	CancelDuel(ctx context.Context, id int64, status model.DuelStatus) (int64, error)
	ExpirePending(ctx context.Context, issuedBefore time.Time) (int64, error)
	CompleteDuel(ctx context.Context, c model.DuelCompletion) (int64, error)
	InvalidateDuel(ctx context.Context, id int64) (int64, error)

	Wins(ctx context.Context, userID int64) ([]model.Duel, error)
	UserDuels(ctx context.Context, userID int64) ([]model.Duel, error)
	ProblemNames(ctx context.Context, userID int64) ([]string, error)
	PairDuels(ctx context.Context, userA, userB int64) ([]model.Duel, error)
	RecentDuels(ctx context.Context, limit int) ([]model.Duel, error)
	OngoingDuels(ctx context.Context) ([]model.Duel, error)
	CountCompleted(ctx context.Context, userID int64) (int, error)
	CountWins(ctx context.Context, userID int64) (int, error)
	CountLosses(ctx context.Context, userID int64) (int, error)
	CountDraws(ctx context.Context, userID int64) (int, error)
	CountDeclined(ctx context.Context, userID int64) (int, error)
	CountDeclinedByOthers(ctx context.Context, userID int64) (int, error)
	CompletedOfficialDuels(ctx context.Context) ([]model.Duel, error)
}

const duelColumns = `id, challenger, challengee, issue_time, start_time, finish_time, problem_name, contest_id, p_index, status, winner, type`

type duelRow struct {
	ID          int64           `db:"id"`
	Challenger  int64           `db:"challenger"`
	Challengee  int64           `db:"challengee"`
	IssueTime   float64         `db:"issue_time"`
	StartTime   sql.NullFloat64 `db:"start_time"`
	FinishTime  sql.NullFloat64 `db:"finish_time"`
	ProblemName sql.NullString  `db:"problem_name"`
	ContestID   sql.NullInt64   `db:"contest_id"`
	Index       sql.NullString  `db:"p_index"`
	Status      int             `db:"status"`
	Winner      sql.NullInt64   `db:"winner"`
	Type        int             `db:"type"`
}

func (r duelRow) toModel() model.Duel {
	d := model.Duel{
		ID:           r.ID,
		ChallengerID: r.Challenger,
		ChallengeeID: r.Challengee,
		IssueTime:    fromEpoch(r.IssueTime),
		StartTime:    fromNullEpoch(r.StartTime),
		FinishTime:   fromNullEpoch(r.FinishTime),
		Problem: model.Problem{
			Name:      r.ProblemName.String,
			ContestID: int(r.ContestID.Int64),
			Index:     r.Index.String,
		},
		Status: model.DuelStatus(r.Status),
		Type:   model.DuelType(r.Type),
	}
	if r.Winner.Valid {
		w := model.Winner(r.Winner.Int64)
		d.Winner = &w
	}
	return d
}

type sqlDuelRepository struct {
	s Session
}

func NewSQLDuelRepository(s Session) DuelRepository {
	return &sqlDuelRepository{s: s}
}

// CreateDuel inserts a PENDING duel. It does not check that the parties are
// free; callers run FindActive first, which leaves a window between the check
// and the insert.
func (r *sqlDuelRepository) CreateDuel(ctx context.Context, challengerID, challengeeID int64, issueTime time.Time, problem model.Problem, typ model.DuelType) (int64, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("sqlDuelRepository.CreateDuel: duel type %d: %w", int(typ), common.ErrValidation)
	}
	db := r.s.DB()
	var id int64
	err := db.QueryRowxContext(ctx, db.Rebind(`
		INSERT INTO duel (challenger, challengee, issue_time, problem_name, contest_id, p_index, status, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		challengerID, challengeeID, toEpoch(issueTime), problem.Name, problem.ContestID, problem.Index,
		int(model.DuelPending), int(typ)).Scan(&id)
	if err != nil {
		return 0, wrap("sqlDuelRepository.CreateDuel", err)
	}
	return id, nil
}

func (r *sqlDuelRepository) one(ctx context.Context, op, where string, args ...any) (*model.Duel, error) {
	var row duelRow
	found, err := lookupOne(ctx, r.s.DB(), &row, `SELECT `+duelColumns+` FROM duel WHERE `+where, args...)
	if err != nil {
		return nil, wrap("sqlDuelRepository."+op, err)
	}
	if !found {
		return nil, nil
	}
	d := row.toModel()
	return &d, nil
}

func (r *sqlDuelRepository) many(ctx context.Context, op, where string, args ...any) ([]model.Duel, error) {
	var rows []duelRow
	if err := lookupAll(ctx, r.s.DB(), &rows, `SELECT `+duelColumns+` FROM duel WHERE `+where, args...); err != nil {
		return nil, wrap("sqlDuelRepository."+op, err)
	}
	duels := make([]model.Duel, 0, len(rows))
	for _, row := range rows {
		duels = append(duels, row.toModel())
	}
	return duels, nil
}

func (r *sqlDuelRepository) GetDuel(ctx context.Context, id int64) (*model.Duel, error) {
	return r.one(ctx, "GetDuel", `id = ?`, id)
}

func (r *sqlDuelRepository) FindActive(ctx context.Context, userID int64) (*model.Duel, error) {
	return r.one(ctx, "FindActive", `(challenger = ? OR challengee = ?) AND status IN (?, ?) ORDER BY id DESC LIMIT 1`,
		userID, userID, int(model.DuelPending), int(model.DuelOngoing))
}

func (r *sqlDuelRepository) FindPendingByChallengee(ctx context.Context, challengeeID int64) (*model.Duel, error) {
	return r.one(ctx, "FindPendingByChallengee", `challengee = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		challengeeID, int(model.DuelPending))
}

func (r *sqlDuelRepository) FindPendingByChallenger(ctx context.Context, challengerID int64) (*model.Duel, error) {
	return r.one(ctx, "FindPendingByChallenger", `challenger = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		challengerID, int(model.DuelPending))
}

func (r *sqlDuelRepository) FindOngoing(ctx context.Context, userID int64) (*model.Duel, error) {
	return r.one(ctx, "FindOngoing", `(challenger = ? OR challengee = ?) AND status = ? ORDER BY id DESC LIMIT 1`,
		userID, userID, int(model.DuelOngoing))
}

// transitionDuel applies a guarded from -> to update. set holds extra
// assignments (", col = ?") whose args come before the id.
func transitionDuel(ctx context.Context, ext sqlx.ExtContext, id int64, from, to model.DuelStatus, set string, args ...any) (int64, error) {
	if err := model.CheckDuelTransition(from, to); err != nil {
		return 0, err
	}
	all := make([]any, 0, len(args)+3)
	all = append(all, int(to))
	all = append(all, args...)
	all = append(all, id, int(from))
	return exec(ctx, ext, `UPDATE duel SET status = ?`+set+` WHERE id = ? AND status = ?`, all...)
}

// actOnPending finds the user's PENDING duel in the given role and moves it to
// next inside one transaction.
func (r *sqlDuelRepository) actOnPending(ctx context.Context, op, role string, userID int64, next model.DuelStatus, set string, args ...any) (Transition, error) {
	var t Transition
	n, err := guardedTx(ctx, r.s, func(tx *sqlx.Tx) error {
		found, err := lookupOne(ctx, tx, &t.DuelID,
			`SELECT id FROM duel WHERE `+role+` = ? AND status = ? ORDER BY id DESC LIMIT 1`, userID, int(model.DuelPending))
		if err != nil {
			return err
		}
		if !found {
			return errNoop
		}
		n, err := transitionDuel(ctx, tx, t.DuelID, model.DuelPending, next, set, args...)
		if err != nil {
			return err
		}
		if n != 1 {
			return errNoop
		}
		return nil
	})
	if err != nil {
		return Transition{}, wrap("sqlDuelRepository."+op, err)
	}
	t.Affected = n
	return t, nil
}

func (r *sqlDuelRepository) AcceptDuel(ctx context.Context, challengeeID int64, startTime time.Time) (Transition, error) {
	return r.actOnPending(ctx, "AcceptDuel", "challengee", challengeeID, model.DuelOngoing, `, start_time = ?`, toEpoch(startTime))
}

func (r *sqlDuelRepository) DeclineDuel(ctx context.Context, challengeeID int64) (Transition, error) {
	return r.actOnPending(ctx, "DeclineDuel", "challengee", challengeeID, model.DuelDeclined, "")
}

func (r *sqlDuelRepository) WithdrawDuel(ctx context.Context, challengerID int64) (Transition, error) {
	return r.actOnPending(ctx, "WithdrawDuel", "challenger", challengerID, model.DuelWithdrawn, "")
}

// StartDuel moves a known PENDING duel to ONGOING. The status guard sits in the
// same statement as the assignment.
func (r *sqlDuelRepository) StartDuel(ctx context.Context, id int64, startTime time.Time) (int64, error) {
	n, err := transitionDuel(ctx, r.s.DB(), id, model.DuelPending, model.DuelOngoing, `, start_time = ?`, toEpoch(startTime))
	if err != nil {
		return 0, wrap("sqlDuelRepository.StartDuel", err)
	}
	return n, nil
}

// CancelDuel ends a PENDING duel as DECLINED, WITHDRAWN or EXPIRED.
func (r *sqlDuelRepository) CancelDuel(ctx context.Context, id int64, status model.DuelStatus) (int64, error) {
	if status == model.DuelOngoing {
		return 0, fmt.Errorf("sqlDuelRepository.CancelDuel: %s is not a cancellation: %w", status, model.ErrIllegalTransition)
	}
	n, err := transitionDuel(ctx, r.s.DB(), id, model.DuelPending, status, "")
	if err != nil {
		return 0, wrap("sqlDuelRepository.CancelDuel", err)
	}
	return n, nil
}

func (r *sqlDuelRepository) ExpirePending(ctx context.Context, issuedBefore time.Time) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `UPDATE duel SET status = ? WHERE status = ? AND issue_time < ?`,
		int(model.DuelExpired), int(model.DuelPending), toEpoch(issuedBefore))
	if err != nil {
		return 0, wrap("sqlDuelRepository.ExpirePending", err)
	}
	return n, nil
}

// CompleteDuel flips ONGOING -> COMPLETE and, for an official duel, moves
// Delta from the loser to the winner. All three writes commit together or not
// at all; a missing duelist row rolls the status flip back.
func (r *sqlDuelRepository) CompleteDuel(ctx context.Context, c model.DuelCompletion) (int64, error) {
	if !c.Winner.Valid() || !c.Type.Valid() {
		return 0, fmt.Errorf("sqlDuelRepository.CompleteDuel: winner %d type %d: %w", int(c.Winner), int(c.Type), common.ErrValidation)
	}
	if c.Type == model.DuelOfficial && c.WinnerID == c.LoserID {
		return 0, fmt.Errorf("sqlDuelRepository.CompleteDuel: winner and loser are both %d: %w", c.WinnerID, common.ErrValidation)
	}
	n, err := guardedTx(ctx, r.s, func(tx *sqlx.Tx) error {
		n, err := transitionDuel(ctx, tx, c.DuelID, model.DuelOngoing, model.DuelComplete,
			`, finish_time = ?, winner = ?`, toEpoch(c.FinishTime), int(c.Winner))
		if err != nil {
			return err
		}
		if n != 1 {
			return errNoop
		}
		if c.Type != model.DuelOfficial {
			return nil
		}
		if err := applyRatingDelta(ctx, tx, c.WinnerID, c.Delta); err != nil {
			return err
		}
		return applyRatingDelta(ctx, tx, c.LoserID, -c.Delta)
	})
	if err != nil {
		return 0, wrap("sqlDuelRepository.CompleteDuel", err)
	}
	return n, nil
}

func (r *sqlDuelRepository) InvalidateDuel(ctx context.Context, id int64) (int64, error) {
	n, err := transitionDuel(ctx, r.s.DB(), id, model.DuelOngoing, model.DuelInvalid, "")
	if err != nil {
		return 0, wrap("sqlDuelRepository.InvalidateDuel", err)
	}
	return n, nil
}

func (r *sqlDuelRepository) Wins(ctx context.Context, userID int64) ([]model.Duel, error) {
	return r.many(ctx, "Wins", `status = ? AND ((challenger = ? AND winner = ?) OR (challengee = ? AND winner = ?))
		ORDER BY start_time DESC`,
		int(model.DuelComplete), userID, int(model.WinnerChallenger), userID, int(model.WinnerChallengee))
}

func (r *sqlDuelRepository) UserDuels(ctx context.Context, userID int64) ([]model.Duel, error) {
	return r.many(ctx, "UserDuels", `(challenger = ? OR challengee = ?) AND status = ? ORDER BY start_time DESC`,
		userID, userID, int(model.DuelComplete))
}

// ProblemNames lists the problems the user has already dueled on, so they are
// not handed out again.
func (r *sqlDuelRepository) ProblemNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := lookupAll(ctx, r.s.DB(), &names,
		`SELECT problem_name FROM duel WHERE (challenger = ? OR challengee = ?) AND status IN (?, ?) AND problem_name IS NOT NULL`,
		userID, userID, int(model.DuelComplete), int(model.DuelInvalid))
	if err != nil {
		return nil, wrap("sqlDuelRepository.ProblemNames", err)
	}
	return names, nil
}

func (r *sqlDuelRepository) PairDuels(ctx context.Context, userA, userB int64) ([]model.Duel, error) {
	return r.many(ctx, "PairDuels", `status = ? AND ((challenger = ? AND challengee = ?) OR (challenger = ? AND challengee = ?))
		ORDER BY start_time DESC`,
		int(model.DuelComplete), userA, userB, userB, userA)
}

func (r *sqlDuelRepository) RecentDuels(ctx context.Context, limit int) ([]model.Duel, error) {
	return r.many(ctx, "RecentDuels", `status = ? ORDER BY start_time DESC LIMIT ?`, int(model.DuelComplete), limit)
}

func (r *sqlDuelRepository) OngoingDuels(ctx context.Context) ([]model.Duel, error) {
	return r.many(ctx, "OngoingDuels", `status = ? ORDER BY start_time DESC`, int(model.DuelOngoing))
}

func (r *sqlDuelRepository) CompletedOfficialDuels(ctx context.Context) ([]model.Duel, error) {
	return r.many(ctx, "CompletedOfficialDuels", `status = ? AND type = ? ORDER BY finish_time ASC`,
		int(model.DuelComplete), int(model.DuelOfficial))
}

func (r *sqlDuelRepository) countWhere(ctx context.Context, op, where string, args ...any) (int, error) {
	n, err := count(ctx, r.s.DB(), `SELECT COUNT(*) FROM duel WHERE `+where, args...)
	if err != nil {
		return 0, wrap("sqlDuelRepository."+op, err)
	}
	return n, nil
}

func (r *sqlDuelRepository) CountCompleted(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, "CountCompleted", `(challenger = ? OR challengee = ?) AND status = ?`,
		userID, userID, int(model.DuelComplete))
}

func (r *sqlDuelRepository) CountWins(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, "CountWins", `status = ? AND ((challenger = ? AND winner = ?) OR (challengee = ? AND winner = ?))`,
		int(model.DuelComplete), userID, int(model.WinnerChallenger), userID, int(model.WinnerChallengee))
}

func (r *sqlDuelRepository) CountLosses(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, "CountLosses", `status = ? AND ((challenger = ? AND winner = ?) OR (challengee = ? AND winner = ?))`,
		int(model.DuelComplete), userID, int(model.WinnerChallengee), userID, int(model.WinnerChallenger))
}

func (r *sqlDuelRepository) CountDraws(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, "CountDraws", `(challenger = ? OR challengee = ?) AND status = ? AND winner = ?`,
		userID, userID, int(model.DuelComplete), int(model.WinnerDraw))
}

// CountDeclined counts challenges the user turned down.
func (r *sqlDuelRepository) CountDeclined(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, "CountDeclined", `challengee = ? AND status = ?`, userID, int(model.DuelDeclined))
}

// CountDeclinedByOthers counts the user's challenges that were turned down.
func (r *sqlDuelRepository) CountDeclinedByOthers(ctx context.Context, userID int64) (int, error) {
	return r.countWhere(ctx, "CountDeclinedByOthers", `challenger = ? AND status = ?`, userID, int(model.DuelDeclined))
}
