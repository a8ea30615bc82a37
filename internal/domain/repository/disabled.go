package repository

import (
	"context"
	"time"

	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

// disabledStore stands in for every repository when the bot runs without a
// database. Every call fails with common.ErrDatabaseDisabled.
type disabledStore struct{}

var errDisabled = common.ErrDatabaseDisabled

// NewDisabled returns repositories that refuse every operation.
func NewDisabled() *Repositories {
	d := disabledStore{}
	return &Repositories{
		Handles:    d,
		Profiles:   d,
		Duelists:   d,
		Duels:      d,
		Challenges: d,
		RatedVCs:   d,
		Settings:   d,
	}
}

var (
	_ HandleRepository    = disabledStore{}
	_ ProfileRepository   = disabledStore{}
	_ DuelistRepository   = disabledStore{}
	_ DuelRepository      = disabledStore{}
	_ ChallengeRepository = disabledStore{}
	_ RatedVCRepository   = disabledStore{}
	_ SettingsRepository  = disabledStore{}
)

func (disabledStore) SetHandle(context.Context, int64, int64, string) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) SetInactive(context.Context, []model.GuildUser) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) GetHandle(context.Context, int64, int64) (string, bool, error) {
	return "", false, errDisabled
}
func (disabledStore) GetUserID(context.Context, string, int64) (int64, bool, error) {
	return 0, false, errDisabled
}
func (disabledStore) RemoveHandle(context.Context, int64, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) HandlesForGuild(context.Context, int64) ([]model.UserHandle, error) {
	return nil, errDisabled
}
func (disabledStore) ProfilesForGuild(context.Context, int64) ([]model.GuildProfile, error) {
	return nil, errDisabled
}
func (disabledStore) ResetStatus(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) UpdateStatus(context.Context, int64, []int64) (int64, error) {
	return 0, errDisabled
}

func (disabledStore) CacheProfile(context.Context, model.Profile) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) CacheProfiles(context.Context, []model.Profile) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) FetchProfile(context.Context, string) (*model.Profile, error) {
	return nil, errDisabled
}

func (disabledStore) Register(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) Find(context.Context, int64) (*model.Duelist, error) {
	return nil, errDisabled
}
func (disabledStore) List(context.Context) ([]model.Duelist, error) {
	return nil, errDisabled
}

func (disabledStore) CreateDuel(context.Context, int64, int64, time.Time, model.Problem, model.DuelType) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) GetDuel(context.Context, int64) (*model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) FindActive(context.Context, int64) (*model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) FindPendingByChallengee(context.Context, int64) (*model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) FindPendingByChallenger(context.Context, int64) (*model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) FindOngoing(context.Context, int64) (*model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) AcceptDuel(context.Context, int64, time.Time) (Transition, error) {
	return Transition{}, errDisabled
}
func (disabledStore) DeclineDuel(context.Context, int64) (Transition, error) {
	return Transition{}, errDisabled
}
func (disabledStore) WithdrawDuel(context.Context, int64) (Transition, error) {
	return Transition{}, errDisabled
}
func (disabledStore) StartDuel(context.Context, int64, time.Time) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) CancelDuel(context.Context, int64, model.DuelStatus) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) ExpirePending(context.Context, time.Time) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) CompleteDuel(context.Context, model.DuelCompletion) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) InvalidateDuel(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) Wins(context.Context, int64) ([]model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) UserDuels(context.Context, int64) ([]model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) ProblemNames(context.Context, int64) ([]string, error) {
	return nil, errDisabled
}
func (disabledStore) PairDuels(context.Context, int64, int64) ([]model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) RecentDuels(context.Context, int) ([]model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) OngoingDuels(context.Context) ([]model.Duel, error) {
	return nil, errDisabled
}
func (disabledStore) CountCompleted(context.Context, int64) (int, error)        { return 0, errDisabled }
func (disabledStore) CountWins(context.Context, int64) (int, error)             { return 0, errDisabled }
func (disabledStore) CountLosses(context.Context, int64) (int, error)           { return 0, errDisabled }
func (disabledStore) CountDraws(context.Context, int64) (int, error)            { return 0, errDisabled }
func (disabledStore) CountDeclined(context.Context, int64) (int, error)         { return 0, errDisabled }
func (disabledStore) CountDeclinedByOthers(context.Context, int64) (int, error) { return 0, errDisabled }
func (disabledStore) CompletedOfficialDuels(context.Context) ([]model.Duel, error) {
	return nil, errDisabled
}

func (disabledStore) IssueChallenge(context.Context, int64, time.Time, model.Problem, int) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) ActiveChallenge(context.Context, int64) (*model.ActiveChallenge, error) {
	return nil, errDisabled
}
func (disabledStore) Gudgitters(context.Context) ([]model.GudgitterScore, error) {
	return nil, errDisabled
}
func (disabledStore) Howgud(context.Context, int64) ([]int, error) {
	return nil, errDisabled
}
func (disabledStore) Noguds(context.Context, int64) ([]string, error) {
	return nil, errDisabled
}
func (disabledStore) Gitlog(context.Context, int64) ([]model.Challenge, error) {
	return nil, errDisabled
}
func (disabledStore) CompleteChallenge(context.Context, int64, int64, time.Time, int) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) SkipChallenge(context.Context, int64, int64, model.ChallengeStatus) (int64, error) {
	return 0, errDisabled
}

func (disabledStore) CreateRatedVC(context.Context, int, time.Time, time.Time, int64, []int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) GetRatedVC(context.Context, int64) (*model.RatedVC, error) {
	return nil, errDisabled
}
func (disabledStore) ListOngoingIDs(context.Context) ([]int64, error) {
	return nil, errDisabled
}
func (disabledStore) ParticipantIDs(context.Context, int64) ([]int64, error) {
	return nil, errDisabled
}
func (disabledStore) FinishRatedVC(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) RecordRating(context.Context, int64, int64, int) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) CurrentRating(context.Context, int64, bool) (int, bool, error) {
	return 0, false, errDisabled
}
func (disabledStore) RatingHistory(context.Context, int64) ([]model.VCRating, error) {
	return nil, errDisabled
}
func (disabledStore) RemoveLastParticipation(context.Context, int64) (int64, error) {
	return 0, errDisabled
}

func (disabledStore) GetReminder(context.Context, int64) (*model.ReminderSettings, error) {
	return nil, errDisabled
}
func (disabledStore) SetReminder(context.Context, model.ReminderSettings) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) ClearReminder(context.Context, int64) (int64, error) { return 0, errDisabled }
func (disabledStore) GetStarboard(context.Context, int64) (int64, bool, error) {
	return 0, false, errDisabled
}
func (disabledStore) SetStarboard(context.Context, int64, int64) (int64, error) { return 0, errDisabled }
func (disabledStore) ClearStarboard(context.Context, int64) (int64, error)      { return 0, errDisabled }
func (disabledStore) AddStarboardMessage(context.Context, model.StarboardMessage) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) StarboardMessageExists(context.Context, int64) (bool, error) {
	return false, errDisabled
}
func (disabledStore) RemoveStarboardMessageByOriginal(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) RemoveStarboardMessageByStarboard(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) ClearStarboardMessages(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) GetRankupChannel(context.Context, int64) (int64, bool, error) {
	return 0, false, errDisabled
}
func (disabledStore) SetRankupChannel(context.Context, int64, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) ClearRankupChannel(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) EnableAutoRoleUpdate(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) DisableAutoRoleUpdate(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) IsAutoRoleUpdateEnabled(context.Context, int64) (bool, error) {
	return false, errDisabled
}
func (disabledStore) GetRatedVCChannel(context.Context, int64) (int64, bool, error) {
	return 0, false, errDisabled
}
func (disabledStore) SetRatedVCChannel(context.Context, int64, int64) (int64, error) {
	return 0, errDisabled
}
func (disabledStore) ClearRatedVCChannel(context.Context, int64) (int64, error) {
	return 0, errDisabled
}
