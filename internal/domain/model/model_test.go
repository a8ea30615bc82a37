package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuelTransitionTable(t *testing.T) {
	allowed := map[DuelStatus][]DuelStatus{
		DuelPending: {DuelDeclined, DuelWithdrawn, DuelExpired, DuelOngoing},
		DuelOngoing: {DuelComplete, DuelInvalid},
	}
	for from := DuelPending; from <= DuelInvalid; from++ {
		for to := DuelPending; to <= DuelInvalid; to++ {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
			if want {
				assert.NoError(t, CheckDuelTransition(from, to))
			} else {
				assert.ErrorIs(t, CheckDuelTransition(from, to), ErrIllegalTransition)
			}
		}
	}
}

func TestDuelTerminalStates(t *testing.T) {
	for _, s := range []DuelStatus{DuelDeclined, DuelWithdrawn, DuelExpired, DuelComplete, DuelInvalid} {
		assert.True(t, s.Terminal(), s.String())
	}
	assert.False(t, DuelPending.Terminal())
	assert.False(t, DuelOngoing.Terminal())
	assert.False(t, DuelStatus(42).Valid())
	assert.Equal(t, "DuelStatus(42)", DuelStatus(42).String())
}

func TestDuelOpponent(t *testing.T) {
	d := Duel{ChallengerID: 1, ChallengeeID: 2}
	assert.Equal(t, int64(2), d.Opponent(1))
	assert.Equal(t, int64(1), d.Opponent(2))
}

func TestRatedVCTransitions(t *testing.T) {
	assert.True(t, RatedVCOngoing.CanTransitionTo(RatedVCFinished))
	assert.False(t, RatedVCFinished.CanTransitionTo(RatedVCOngoing))
	assert.False(t, RatedVCFinished.CanTransitionTo(RatedVCFinished))
	assert.True(t, RatedVCFinished.Terminal())
}

func TestChallengeTransitions(t *testing.T) {
	for _, next := range []ChallengeStatus{ChallengeGotGud, ChallengeNoGud, ChallengeForcedNoGud} {
		assert.True(t, ChallengeGitGud.CanTransitionTo(next))
		assert.False(t, next.CanTransitionTo(ChallengeGitGud))
	}
	assert.False(t, ChallengeGitGud.CanTransitionTo(ChallengeGitGud))
	assert.Equal(t, "FORCED_NOGUD", ChallengeForcedNoGud.String())
}

func TestEnumCodesMatchStoredValues(t *testing.T) {
	assert.Equal(t, 0, int(DuelPending))
	assert.Equal(t, 4, int(DuelOngoing))
	assert.Equal(t, 6, int(DuelInvalid))
	assert.Equal(t, 2, int(WinnerChallengee))
	assert.Equal(t, 1, int(DuelOfficial))
	assert.Equal(t, 1, int(ChallengeGitGud))
	assert.Equal(t, 1, int(RatedVCFinished))
}
