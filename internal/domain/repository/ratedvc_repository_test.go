package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

func createVC(t *testing.T, repo RatedVCRepository, participants ...int64) int64 {
	t.Helper()
	start := time.Date(2024, 6, 1, 14, 35, 0, 0, time.UTC)
	id, err := repo.CreateRatedVC(context.Background(), 1900, start, start.Add(2*time.Hour), 77, participants)
	require.NoError(t, err)
	return id
}

func TestCreateRatedVC(t *testing.T) {
	repo := New(newTestSession(t)).RatedVCs
	ctx := context.Background()

	id := createVC(t, repo, 5, 3, 4)
	vc, err := repo.GetRatedVC(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, vc)
	assert.Equal(t, model.RatedVCOngoing, vc.Status)
	assert.Equal(t, 1900, vc.ContestID)
	assert.Equal(t, int64(77), vc.GuildID)
	assert.Equal(t, 2*time.Hour, vc.FinishTime.Sub(vc.StartTime))

	ids, err := repo.ParticipantIDs(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, ids)

	ongoing, err := repo.ListOngoingIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ongoing)

	missing, err := repo.GetRatedVC(ctx, id+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateRatedVCDuplicateParticipantRollsBack(t *testing.T) {
	repo := New(newTestSession(t)).RatedVCs
	ctx := context.Background()

	_, err := repo.CreateRatedVC(ctx, 1, time.Now(), time.Now(), 1, []int64{8, 8})
	assert.ErrorIs(t, err, common.ErrUniqueConstraint)

	ongoing, err := repo.ListOngoingIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ongoing)
}

func TestFinishRatedVCTwice(t *testing.T) {
	repo := New(newTestSession(t)).RatedVCs
	ctx := context.Background()
	id := createVC(t, repo, 1)

	for i := 0; i < 2; i++ {
		_, err := repo.FinishRatedVC(ctx, id)
		require.NoError(t, err)
		vc, err := repo.GetRatedVC(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.RatedVCFinished, vc.Status)
	}

	ongoing, err := repo.ListOngoingIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ongoing)
}

func TestRecordRatingOverwrites(t *testing.T) {
	conn := newTestSession(t)
	repo := New(conn).RatedVCs
	ctx := context.Background()
	id := createVC(t, repo, 1)

	_, err := repo.RecordRating(ctx, id, 1, 1550)
	require.NoError(t, err)
	_, err = repo.RecordRating(ctx, id, 1, 1620)
	require.NoError(t, err)

	n, err := count(ctx, conn.DB(), `SELECT COUNT(*) FROM rated_vc_users WHERE vc_id = ? AND user_id = ?`, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	history, err := repo.RatingHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.VCRating{{VCID: id, Rating: 1620}}, history)
}

func TestCurrentRatingUsesHighestRatedVC(t *testing.T) {
	repo := New(newTestSession(t)).RatedVCs
	ctx := context.Background()

	rating, ok, err := repo.CurrentRating(ctx, 42, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.DefaultVCRating, rating)

	_, ok, err = repo.CurrentRating(ctx, 42, false)
	require.NoError(t, err)
	assert.False(t, ok)

	var ids []int64
	for i := 0; i < 8; i++ {
		ids = append(ids, createVC(t, repo))
	}
	require.Equal(t, int64(3), ids[2])
	require.Equal(t, int64(7), ids[6])

	_, err = repo.RecordRating(ctx, 7, 42, 1450)
	require.NoError(t, err)
	_, err = repo.RecordRating(ctx, 3, 42, 1600)
	require.NoError(t, err)
	// Unrated roster rows do not count.
	_, err = repo.CreateRatedVC(ctx, 1, time.Now(), time.Now(), 77, []int64{42})
	require.NoError(t, err)

	rating, ok, err = repo.CurrentRating(ctx, 42, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1450, rating)

	history, err := repo.RatingHistory(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []model.VCRating{{VCID: 3, Rating: 1600}, {VCID: 7, Rating: 1450}}, history)
}

func TestRemoveLastParticipation(t *testing.T) {
	repo := New(newTestSession(t)).RatedVCs
	ctx := context.Background()
	first := createVC(t, repo, 1)
	second := createVC(t, repo, 1)
	_, err := repo.RecordRating(ctx, first, 1, 1510)
	require.NoError(t, err)
	_, err = repo.RecordRating(ctx, second, 1, 1530)
	require.NoError(t, err)

	n, err := repo.RemoveLastParticipation(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rating, _, err := repo.CurrentRating(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1510, rating)

	n, err = repo.RemoveLastParticipation(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, n)
}
