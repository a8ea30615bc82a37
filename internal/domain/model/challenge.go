package model

import (
	"fmt"
	"time"
)

// ChallengeStatus is the state of a gitgud practice challenge.
type ChallengeStatus int

const (
	ChallengeGotGud ChallengeStatus = iota
	ChallengeGitGud
	ChallengeNoGud
	ChallengeForcedNoGud
)

func (s ChallengeStatus) Valid() bool {
	return s >= ChallengeGotGud && s <= ChallengeForcedNoGud
}

func (s ChallengeStatus) Terminal() bool {
	return s.Valid() && s != ChallengeGitGud
}

func (s ChallengeStatus) CanTransitionTo(next ChallengeStatus) bool {
	return s == ChallengeGitGud && next.Terminal()
}

func (s ChallengeStatus) String() string {
	switch s {
	case ChallengeGotGud:
		return "GOTGUD"
	case ChallengeGitGud:
		return "GITGUD"
	case ChallengeNoGud:
		return "NOGUD"
	case ChallengeForcedNoGud:
		return "FORCED_NOGUD"
	}
	return fmt.Sprintf("ChallengeStatus(%d)", int(s))
}

type Challenge struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	IssueTime   time.Time       `json:"issue_time"`
	FinishTime  *time.Time      `json:"finish_time,omitempty"`
	Problem     Problem         `json:"problem"`
	RatingDelta int             `json:"rating_delta"`
	Status      ChallengeStatus `json:"status"`
}

// ActiveChallenge is the challenge currently occupying a user's slot.
type ActiveChallenge struct {
	ChallengeID int64     `json:"challenge_id"`
	IssueTime   time.Time `json:"issue_time"`
	Problem     Problem   `json:"problem"`
	RatingDelta int       `json:"rating_delta"`
}

type GudgitterScore struct {
	UserID int64 `json:"user_id" db:"user_id"`
	Score  int   `json:"score" db:"score"`
}
