package model

import (
	"fmt"
	"time"
)

const DefaultVCRating = 1500

type RatedVCStatus int

const (
	RatedVCOngoing RatedVCStatus = iota
	RatedVCFinished
)

func (s RatedVCStatus) Valid() bool {
	return s == RatedVCOngoing || s == RatedVCFinished
}

func (s RatedVCStatus) Terminal() bool {
	return s == RatedVCFinished
}

func (s RatedVCStatus) CanTransitionTo(next RatedVCStatus) bool {
	return s == RatedVCOngoing && next == RatedVCFinished
}

func (s RatedVCStatus) String() string {
	switch s {
	case RatedVCOngoing:
		return "ONGOING"
	case RatedVCFinished:
		return "FINISHED"
	}
	return fmt.Sprintf("RatedVCStatus(%d)", int(s))
}

// RatedVC is one replay of a past contest rated for a guild roster.
type RatedVC struct {
	ID         int64         `json:"id"`
	ContestID  int           `json:"contest_id"`
	StartTime  time.Time     `json:"start_time"`
	FinishTime time.Time     `json:"finish_time"`
	Status     RatedVCStatus `json:"status"`
	GuildID    int64         `json:"guild_id"`
}

// VCRating is one point of a user's rating history.
type VCRating struct {
	VCID   int64 `json:"vc_id" db:"vc_id"`
	Rating int   `json:"rating" db:"rating"`
}
