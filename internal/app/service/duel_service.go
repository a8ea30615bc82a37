package service

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
	"tle_userdb/internal/domain/repository"
	"tle_userdb/internal/platform/lock"
	"tle_userdb/internal/platform/logging"
	"tle_userdb/internal/platform/metrics"
)

// Locker serializes work on the same users across bot instances.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (lock.Release, error)
}

type DuelService struct {
	duels    repository.DuelRepository
	duelists repository.DuelistRepository
	locker   Locker
	now      func() time.Time
	log      *logrus.Entry
}

func NewDuelService(duels repository.DuelRepository, duelists repository.DuelistRepository, locker Locker) *DuelService {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	return &DuelService{
		duels:    duels,
		duelists: duelists,
		locker:   locker,
		now:      time.Now,
		log:      logging.For("duel_service"),
	}
}

type IssueDuelRequest struct {
	ChallengerID int64          `json:"challenger_id"`
	ChallengeeID int64          `json:"challengee_id"`
	Problem      model.Problem  `json:"problem"`
	Type         model.DuelType `json:"type"`
}

func (s *DuelService) record(transition string, affected int64, err error) {
	result := metrics.Result(affected, err)
	metrics.DuelTransitions.WithLabelValues(transition, result).Inc()
	entry := s.log.WithFields(logrus.Fields{"transition": transition, "result": result})
	if err != nil {
		entry.WithError(err).Warn("Duel transition failed")
		return
	}
	entry.Debug("Duel transition")
}

// Register makes the user a duelist. It reports whether this call created them.
func (s *DuelService) Register(ctx context.Context, userID int64) (bool, error) {
	n, err := s.duelists.Register(ctx, userID)
	if err != nil {
		return false, common.Errorf("failed to register duelist: %w", err)
	}
	return n == 1, nil
}

// Issue creates a PENDING duel after checking neither party is already in one.
// The check and the insert are separate statements; the optional lock narrows
// but does not close the window between them.
func (s *DuelService) Issue(ctx context.Context, req IssueDuelRequest) (int64, error) {
	if req.ChallengerID == req.ChallengeeID {
		return 0, common.Errorf("cannot challenge yourself: %w", common.ErrValidation)
	}
	for _, userID := range []int64{req.ChallengerID, req.ChallengeeID} {
		d, err := s.duelists.Find(ctx, userID)
		if err != nil {
			return 0, common.Errorf("failed to look up duelist %d: %w", userID, err)
		}
		if d == nil {
			return 0, common.Errorf("user %d: %w", userID, common.ErrNotRegistered)
		}
	}

	release, err := s.locker.Acquire(ctx, userKey(req.ChallengerID), userKey(req.ChallengeeID))
	if err != nil {
		s.record("issue", 0, err)
		return 0, err
	}
	defer release(ctx)

	for _, userID := range []int64{req.ChallengerID, req.ChallengeeID} {
		active, err := s.duels.FindActive(ctx, userID)
		if err != nil {
			return 0, common.Errorf("failed to check active duels: %w", err)
		}
		if active != nil {
			s.record("issue", 0, nil)
			return 0, common.Errorf("user %d in duel %d: %w", userID, active.ID, common.ErrActiveDuel)
		}
	}

	id, err := s.duels.CreateDuel(ctx, req.ChallengerID, req.ChallengeeID, s.now(), req.Problem, req.Type)
	s.record("issue", 1, err)
	if err != nil {
		return 0, common.Errorf("failed to create duel: %w", err)
	}
	s.log.WithFields(logrus.Fields{"duel_id": id, "challenger": req.ChallengerID, "challengee": req.ChallengeeID}).Info("Duel issued")
	return id, nil
}

func userKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// Accept starts the challengee's pending duel and returns it.
func (s *DuelService) Accept(ctx context.Context, challengeeID int64) (*model.Duel, error) {
	tr, err := s.duels.AcceptDuel(ctx, challengeeID, s.now())
	s.record("accept", tr.Affected, err)
	if err != nil {
		return nil, common.Errorf("failed to accept duel: %w", err)
	}
	if tr.Affected == 0 {
		return nil, common.Errorf("no pending duel to accept: %w", common.ErrPreconditionFailed)
	}
	return s.duels.GetDuel(ctx, tr.DuelID)
}

// Decline returns the id of the declined duel.
func (s *DuelService) Decline(ctx context.Context, challengeeID int64) (int64, error) {
	tr, err := s.duels.DeclineDuel(ctx, challengeeID)
	s.record("decline", tr.Affected, err)
	if err != nil {
		return 0, common.Errorf("failed to decline duel: %w", err)
	}
	if tr.Affected == 0 {
		return 0, common.Errorf("no pending duel to decline: %w", common.ErrPreconditionFailed)
	}
	return tr.DuelID, nil
}

func (s *DuelService) Withdraw(ctx context.Context, challengerID int64) (int64, error) {
	tr, err := s.duels.WithdrawDuel(ctx, challengerID)
	s.record("withdraw", tr.Affected, err)
	if err != nil {
		return 0, common.Errorf("failed to withdraw duel: %w", err)
	}
	if tr.Affected == 0 {
		return 0, common.Errorf("no pending duel to withdraw: %w", common.ErrPreconditionFailed)
	}
	return tr.DuelID, nil
}

// Complete finishes an ONGOING duel. For an official duel the winner gains
// delta and the loser loses it; on a draw the challenger is credited with
// delta, which the rating calculator may make zero or negative.
func (s *DuelService) Complete(ctx context.Context, duelID int64, winner model.Winner, delta int) (*model.Duel, error) {
	d, err := s.duels.GetDuel(ctx, duelID)
	if err != nil {
		return nil, common.Errorf("failed to load duel: %w", err)
	}
	if d == nil {
		return nil, common.Errorf("duel %d: %w", duelID, common.ErrNotFound)
	}

	winnerID, loserID := d.ChallengerID, d.ChallengeeID
	if winner == model.WinnerChallengee {
		winnerID, loserID = d.ChallengeeID, d.ChallengerID
	}
	n, err := s.duels.CompleteDuel(ctx, model.DuelCompletion{
		DuelID:     duelID,
		Winner:     winner,
		FinishTime: s.now(),
		WinnerID:   winnerID,
		LoserID:    loserID,
		Delta:      delta,
		Type:       d.Type,
	})
	s.record("complete", n, err)
	if err != nil {
		return nil, common.Errorf("failed to complete duel: %w", err)
	}
	if n == 0 {
		return nil, common.Errorf("duel %d is %s, not ONGOING: %w", duelID, d.Status, common.ErrPreconditionFailed)
	}
	s.log.WithFields(logrus.Fields{"duel_id": duelID, "winner": winner.String(), "delta": delta, "type": d.Type.String()}).Info("Duel completed")
	return s.duels.GetDuel(ctx, duelID)
}

func (s *DuelService) Draw(ctx context.Context, duelID int64, delta int) (*model.Duel, error) {
	return s.Complete(ctx, duelID, model.WinnerDraw, delta)
}

func (s *DuelService) Invalidate(ctx context.Context, duelID int64) error {
	n, err := s.duels.InvalidateDuel(ctx, duelID)
	s.record("invalidate", n, err)
	if err != nil {
		return common.Errorf("failed to invalidate duel: %w", err)
	}
	if n == 0 {
		return common.Errorf("duel %d is not ONGOING: %w", duelID, common.ErrPreconditionFailed)
	}
	return nil
}

// Expire moves every PENDING duel issued more than ttl before now to EXPIRED.
func (s *DuelService) Expire(ctx context.Context, now time.Time, ttl time.Duration) (int64, error) {
	n, err := s.duels.ExpirePending(ctx, now.Add(-ttl))
	s.record("expire", n, err)
	if err != nil {
		return 0, common.Errorf("failed to expire pending duels: %w", err)
	}
	return n, nil
}

func (s *DuelService) Stats(ctx context.Context, userID int64) (*model.DuelStats, error) {
	stats := &model.DuelStats{UserID: userID}
	d, err := s.duelists.Find(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to look up duelist: %w", err)
	}
	if d != nil {
		stats.Rating = &d.Rating
	}

	counters := []struct {
		dst *int
		fn  func(context.Context, int64) (int, error)
	}{
		{&stats.Completed, s.duels.CountCompleted},
		{&stats.Wins, s.duels.CountWins},
		{&stats.Losses, s.duels.CountLosses},
		{&stats.Draws, s.duels.CountDraws},
		{&stats.Declined, s.duels.CountDeclined},
		{&stats.GotDeclined, s.duels.CountDeclinedByOthers},
	}
	for _, c := range counters {
		if *c.dst, err = c.fn(ctx, userID); err != nil {
			return nil, common.Errorf("failed to count duels: %w", err)
		}
	}
	return stats, nil
}

func (s *DuelService) Recent(ctx context.Context, limit int) ([]model.Duel, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.duels.RecentDuels(ctx, limit)
}

func (s *DuelService) Ongoing(ctx context.Context) ([]model.Duel, error) {
	return s.duels.OngoingDuels(ctx)
}

func (s *DuelService) History(ctx context.Context, userID int64) ([]model.Duel, error) {
	return s.duels.UserDuels(ctx, userID)
}

func (s *DuelService) Ranklist(ctx context.Context) ([]model.Duelist, error) {
	return s.duelists.List(ctx)
}
