package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
	"tle_userdb/internal/domain/repository"
	"tle_userdb/internal/platform/logging"
	"tle_userdb/internal/platform/metrics"
)

type GitgudService struct {
	challenges repository.ChallengeRepository
	now        func() time.Time
	log        *logrus.Entry
}

func NewGitgudService(challenges repository.ChallengeRepository) *GitgudService {
	return &GitgudService{challenges: challenges, now: time.Now, log: logging.For("gitgud_service")}
}

func (s *GitgudService) record(op string, affected int64, err error) {
	metrics.GitgudOperations.WithLabelValues(op, metrics.Result(affected, err)).Inc()
}

func (s *GitgudService) Issue(ctx context.Context, userID int64, problem model.Problem, ratingDelta int) error {
	n, err := s.challenges.IssueChallenge(ctx, userID, s.now(), problem, ratingDelta)
	s.record("issue", n, err)
	if err != nil {
		return common.Errorf("failed to issue challenge: %w", err)
	}
	if n == 0 {
		return common.Errorf("user %d: %w", userID, common.ErrActiveChallenge)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "problem": problem.Name}).Info("Challenge issued")
	return nil
}

// Complete credits the user's active challenge and returns it.
func (s *GitgudService) Complete(ctx context.Context, userID int64) (*model.ActiveChallenge, error) {
	active, err := s.active(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := s.challenges.CompleteChallenge(ctx, userID, active.ChallengeID, s.now(), active.RatingDelta)
	s.record("complete", n, err)
	if err != nil {
		return nil, common.Errorf("failed to complete challenge: %w", err)
	}
	if n == 0 {
		return nil, common.Errorf("challenge %d is no longer active: %w", active.ChallengeID, common.ErrPreconditionFailed)
	}
	return active, nil
}

// Skip gives up the active challenge. A forced skip hides it from the gitlog.
func (s *GitgudService) Skip(ctx context.Context, userID int64, force bool) error {
	active, err := s.active(ctx, userID)
	if err != nil {
		return err
	}
	status, op := model.ChallengeNoGud, "skip"
	if force {
		status, op = model.ChallengeForcedNoGud, "force_skip"
	}
	n, err := s.challenges.SkipChallenge(ctx, userID, active.ChallengeID, status)
	s.record(op, n, err)
	if err != nil {
		return common.Errorf("failed to skip challenge: %w", err)
	}
	if n == 0 {
		return common.Errorf("challenge %d is no longer active: %w", active.ChallengeID, common.ErrPreconditionFailed)
	}
	return nil
}

func (s *GitgudService) active(ctx context.Context, userID int64) (*model.ActiveChallenge, error) {
	active, err := s.challenges.ActiveChallenge(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to load active challenge: %w", err)
	}
	if active == nil {
		return nil, common.Errorf("user %d has no active challenge: %w", userID, common.ErrNotFound)
	}
	return active, nil
}

func (s *GitgudService) Gudgitters(ctx context.Context) ([]model.GudgitterScore, error) {
	return s.challenges.Gudgitters(ctx)
}

func (s *GitgudService) Gitlog(ctx context.Context, userID int64) ([]model.Challenge, error) {
	return s.challenges.Gitlog(ctx, userID)
}
