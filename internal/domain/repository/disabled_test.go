package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

func TestDisabledStoreRefusesEverything(t *testing.T) {
	repos := NewDisabled()
	ctx := context.Background()

	_, err := repos.Handles.SetHandle(ctx, 1, 1, "x")
	assert.ErrorIs(t, err, common.ErrDatabaseDisabled)
	_, err = repos.Duels.CompleteDuel(ctx, model.DuelCompletion{})
	assert.ErrorIs(t, err, common.ErrDatabaseDisabled)
	_, err = repos.Duels.AcceptDuel(ctx, 1, time.Now())
	assert.ErrorIs(t, err, common.ErrDatabaseDisabled)
	_, _, err = repos.RatedVCs.CurrentRating(ctx, 1, true)
	assert.ErrorIs(t, err, common.ErrDatabaseDisabled)
	_, err = repos.Challenges.Gudgitters(ctx)
	assert.ErrorIs(t, err, common.ErrDatabaseDisabled)
	_, err = repos.Settings.IsAutoRoleUpdateEnabled(ctx, 1)
	assert.ErrorIs(t, err, common.ErrDatabaseDisabled)
	_, err = repos.Duelists.Register(ctx, 1)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	assert.Equal(t, 503, common.HTTPStatusFromError(err))
}
