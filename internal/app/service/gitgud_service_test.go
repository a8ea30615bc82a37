package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

func newGitgudService(t *testing.T) *GitgudService {
	t.Helper()
	svc := NewGitgudService(newTestRepos(t).Challenges)
	svc.now = fixedClock(start)
	return svc
}

func TestGitgudIssueWhileActive(t *testing.T) {
	svc := newGitgudService(t)
	ctx := context.Background()
	p := model.Problem{Name: "Way Too Long Words", ContestID: 71, Index: "A"}

	require.NoError(t, svc.Issue(ctx, 1, p, 25))
	assert.ErrorIs(t, svc.Issue(ctx, 1, p, 25), common.ErrActiveChallenge)
	assert.NoError(t, svc.Issue(ctx, 2, p, 25), "slots are per user")
}

func TestGitgudComplete(t *testing.T) {
	svc := newGitgudService(t)
	ctx := context.Background()

	_, err := svc.Complete(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.Issue(ctx, 1, model.Problem{Name: "Team", ContestID: 231, Index: "A"}, 40))
	done, err := svc.Complete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, done.RatingDelta)

	scores, err := svc.Gudgitters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.GudgitterScore{{UserID: 1, Score: 40}}, scores)

	require.NoError(t, svc.Issue(ctx, 1, model.Problem{Name: "Bit++", ContestID: 282, Index: "A"}, 10), "slot is free again")
}

func TestGitgudSkip(t *testing.T) {
	svc := newGitgudService(t)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, 1, model.Problem{Name: "Soldier and Bananas", ContestID: 546, Index: "A"}, 10))
	require.NoError(t, svc.Skip(ctx, 1, false))
	require.NoError(t, svc.Issue(ctx, 1, model.Problem{Name: "Petya and Strings", ContestID: 112, Index: "A"}, 10))
	require.NoError(t, svc.Skip(ctx, 1, true))
	assert.ErrorIs(t, svc.Skip(ctx, 1, false), common.ErrNotFound)

	log, err := svc.Gitlog(ctx, 1)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "Soldier and Bananas", log[0].Problem.Name)
	assert.Equal(t, model.ChallengeNoGud, log[0].Status)
}
