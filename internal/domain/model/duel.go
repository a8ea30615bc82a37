package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrIllegalTransition is returned before any SQL runs when code asks for a
// state change the transition table does not allow.
var ErrIllegalTransition = errors.New("illegal state transition")

const DefaultDuelRating = 1500

type DuelStatus int

const (
	DuelPending DuelStatus = iota
	DuelDeclined
	DuelWithdrawn
	DuelExpired
	DuelOngoing
	DuelComplete
	DuelInvalid
)

var duelTransitions = map[DuelStatus][]DuelStatus{
	DuelPending: {DuelDeclined, DuelWithdrawn, DuelExpired, DuelOngoing},
	DuelOngoing: {DuelComplete, DuelInvalid},
}

func (s DuelStatus) Valid() bool {
	return s >= DuelPending && s <= DuelInvalid
}

func (s DuelStatus) Terminal() bool {
	return s.Valid() && len(duelTransitions[s]) == 0
}

func (s DuelStatus) CanTransitionTo(next DuelStatus) bool {
	for _, allowed := range duelTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s DuelStatus) String() string {
	switch s {
	case DuelPending:
		return "PENDING"
	case DuelDeclined:
		return "DECLINED"
	case DuelWithdrawn:
		return "WITHDRAWN"
	case DuelExpired:
		return "EXPIRED"
	case DuelOngoing:
		return "ONGOING"
	case DuelComplete:
		return "COMPLETE"
	case DuelInvalid:
		return "INVALID"
	}
	return fmt.Sprintf("DuelStatus(%d)", int(s))
}

// CheckDuelTransition returns ErrIllegalTransition unless from -> to is in the table.
func CheckDuelTransition(from, to DuelStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("duel %s -> %s: %w", from, to, ErrIllegalTransition)
	}
	return nil
}

type Winner int

const (
	WinnerDraw Winner = iota
	WinnerChallenger
	WinnerChallengee
)

func (w Winner) Valid() bool {
	return w >= WinnerDraw && w <= WinnerChallengee
}

func (w Winner) String() string {
	switch w {
	case WinnerDraw:
		return "DRAW"
	case WinnerChallenger:
		return "CHALLENGER"
	case WinnerChallengee:
		return "CHALLENGEE"
	}
	return fmt.Sprintf("Winner(%d)", int(w))
}

type DuelType int

const (
	DuelUnofficial DuelType = iota
	DuelOfficial
)

func (t DuelType) Valid() bool {
	return t == DuelUnofficial || t == DuelOfficial
}

func (t DuelType) String() string {
	switch t {
	case DuelUnofficial:
		return "UNOFFICIAL"
	case DuelOfficial:
		return "OFFICIAL"
	}
	return fmt.Sprintf("DuelType(%d)", int(t))
}

// Problem identifies a judge problem by contest and index.
type Problem struct {
	Name      string `json:"name"`
	ContestID int    `json:"contest_id"`
	Index     string `json:"index"`
}

type Duel struct {
	ID           int64      `json:"id"`
	ChallengerID int64      `json:"challenger_id"`
	ChallengeeID int64      `json:"challengee_id"`
	IssueTime    time.Time  `json:"issue_time"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	FinishTime   *time.Time `json:"finish_time,omitempty"`
	Problem      Problem    `json:"problem"`
	Status       DuelStatus `json:"status"`
	Winner       *Winner    `json:"winner,omitempty"`
	Type         DuelType   `json:"type"`
}

// Opponent returns the other party of the duel.
func (d *Duel) Opponent(userID int64) int64 {
	if d.ChallengerID == userID {
		return d.ChallengeeID
	}
	return d.ChallengerID
}

// DuelCompletion carries everything CompleteDuel needs. For an official duel
// WinnerID gains Delta and LoserID loses it.
type DuelCompletion struct {
	DuelID     int64
	Winner     Winner
	FinishTime time.Time
	WinnerID   int64
	LoserID    int64
	Delta      int
	Type       DuelType
}

type Duelist struct {
	UserID int64 `json:"user_id" db:"user_id"`
	Rating int   `json:"rating" db:"rating"`
}

type DuelStats struct {
	UserID      int64 `json:"user_id"`
	Rating      *int  `json:"rating,omitempty"`
	Completed   int   `json:"completed"`
	Wins        int   `json:"wins"`
	Losses      int   `json:"losses"`
	Draws       int   `json:"draws"`
	Declined    int   `json:"declined"`
	GotDeclined int   `json:"got_declined"`
}
