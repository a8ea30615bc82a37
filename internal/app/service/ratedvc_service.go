package service

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
	"tle_userdb/internal/domain/repository"
	"tle_userdb/internal/platform/logging"
	"tle_userdb/internal/platform/metrics"
)

type RatedVCService struct {
	vcs repository.RatedVCRepository
	log *logrus.Entry
}

func NewRatedVCService(vcs repository.RatedVCRepository) *RatedVCService {
	return &RatedVCService{vcs: vcs, log: logging.For("ratedvc_service")}
}

func (s *RatedVCService) record(op string, affected int64, err error) {
	metrics.RatedVCOperations.WithLabelValues(op, metrics.Result(affected, err)).Inc()
}

// Start creates an ONGOING contest for the deduplicated roster.
func (s *RatedVCService) Start(ctx context.Context, contestID int, start, finish time.Time, guildID int64, participants []int64) (int64, error) {
	roster := slices.Clone(participants)
	slices.Sort(roster)
	roster = slices.Compact(roster)
	if len(roster) == 0 {
		return 0, common.Errorf("rated vc needs at least one participant: %w", common.ErrValidation)
	}
	if !finish.After(start) {
		return 0, common.Errorf("rated vc must finish after it starts: %w", common.ErrValidation)
	}

	id, err := s.vcs.CreateRatedVC(ctx, contestID, start, finish, guildID, roster)
	s.record("start", 1, err)
	if err != nil {
		return 0, common.Errorf("failed to create rated vc: %w", err)
	}
	s.log.WithFields(logrus.Fields{"vc_id": id, "contest_id": contestID, "guild_id": guildID, "participants": len(roster)}).Info("Rated VC started")
	return id, nil
}

// Finish records every computed rating and then marks the contest FINISHED.
// Both steps overwrite, so a sweep that dies halfway can simply run again.
func (s *RatedVCService) Finish(ctx context.Context, vcID int64, ratings map[int64]int) error {
	vc, err := s.vcs.GetRatedVC(ctx, vcID)
	if err != nil {
		return common.Errorf("failed to load rated vc: %w", err)
	}
	if vc == nil {
		return common.Errorf("rated vc %d: %w", vcID, common.ErrNotFound)
	}

	userIDs := make([]int64, 0, len(ratings))
	for userID := range ratings {
		userIDs = append(userIDs, userID)
	}
	slices.Sort(userIDs)
	for _, userID := range userIDs {
		if _, err := s.vcs.RecordRating(ctx, vcID, userID, ratings[userID]); err != nil {
			s.record("record_rating", 0, err)
			return common.Errorf("failed to record rating of user %d: %w", userID, err)
		}
	}

	n, err := s.vcs.FinishRatedVC(ctx, vcID)
	s.record("finish", n, err)
	if err != nil {
		return common.Errorf("failed to finish rated vc: %w", err)
	}
	s.log.WithFields(logrus.Fields{"vc_id": vcID, "ratings": len(ratings)}).Info("Rated VC finished")
	return nil
}

// CurrentRating falls back to model.DefaultVCRating for unrated users.
func (s *RatedVCService) CurrentRating(ctx context.Context, userID int64) (int, error) {
	rating, _, err := s.vcs.CurrentRating(ctx, userID, true)
	if err != nil {
		return 0, common.Errorf("failed to read vc rating: %w", err)
	}
	return rating, nil
}

func (s *RatedVCService) History(ctx context.Context, userID int64) ([]model.VCRating, error) {
	return s.vcs.RatingHistory(ctx, userID)
}

func (s *RatedVCService) Ongoing(ctx context.Context) ([]int64, error) {
	return s.vcs.ListOngoingIDs(ctx)
}

// Undo drops the user's most recent participation row.
func (s *RatedVCService) Undo(ctx context.Context, userID int64) error {
	n, err := s.vcs.RemoveLastParticipation(ctx, userID)
	s.record("undo", n, err)
	if err != nil {
		return common.Errorf("failed to remove participation: %w", err)
	}
	if n == 0 {
		return common.Errorf("user %d has no vc participation: %w", userID, common.ErrNotFound)
	}
	s.log.WithField("user_id", userID).Warn("Removed last rated VC participation")
	return nil
}
