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

var (
	issued  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	problem = model.Problem{Name: "Two Buttons", ContestID: 520, Index: "B"}
)

type duelFixture struct {
	duels    DuelRepository
	duelists DuelistRepository
}

func newDuelFixture(t *testing.T) (*duelFixture, *Repositories) {
	repos := New(newTestSession(t))
	return &duelFixture{duels: repos.Duels, duelists: repos.Duelists}, repos
}

func (f *duelFixture) ongoing(t *testing.T, challenger, challengee int64, typ model.DuelType) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.duels.CreateDuel(ctx, challenger, challengee, issued, problem, typ)
	require.NoError(t, err)
	tr, err := f.duels.AcceptDuel(ctx, challengee, issued.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, Transition{DuelID: id, Affected: 1}, tr)
	return id
}

func (f *duelFixture) rating(t *testing.T, userID int64) int {
	t.Helper()
	d, err := f.duelists.Find(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d.Rating
}

func TestCreateAndGetDuel(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	id, err := f.duels.CreateDuel(ctx, 1, 2, issued, problem, model.DuelOfficial)
	require.NoError(t, err)
	assert.Positive(t, id)

	d, err := f.duels.GetDuel(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, model.DuelPending, d.Status)
	assert.Equal(t, problem, d.Problem)
	assert.True(t, issued.Equal(d.IssueTime))
	assert.Nil(t, d.StartTime)
	assert.Nil(t, d.Winner)

	missing, err := f.duels.GetDuel(ctx, id+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRoleTransitionsWithoutPendingDuel(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	tr, err := f.duels.AcceptDuel(ctx, 2, issued)
	require.NoError(t, err)
	assert.Equal(t, Transition{}, tr)

	_, err = f.duels.CreateDuel(ctx, 1, 2, issued, problem, model.DuelUnofficial)
	require.NoError(t, err)

	// Only the challengee may decline and only the challenger may withdraw.
	tr, err = f.duels.DeclineDuel(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, tr.Affected)
	tr, err = f.duels.WithdrawDuel(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, tr.Affected)

	tr, err = f.duels.WithdrawDuel(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tr.Affected)

	tr, err = f.duels.DeclineDuel(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, tr.Affected)
}

func TestStartDuelRequiresPending(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	id, err := f.duels.CreateDuel(ctx, 1, 2, issued, problem, model.DuelUnofficial)
	require.NoError(t, err)
	n, err := f.duels.CancelDuel(ctx, id, model.DuelDeclined)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = f.duels.StartDuel(ctx, id, issued)
	require.NoError(t, err)
	assert.Zero(t, n)

	d, err := f.duels.GetDuel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.DuelDeclined, d.Status)
}

func TestCancelDuelRejectsNonCancellation(t *testing.T) {
	f, _ := newDuelFixture(t)
	_, err := f.duels.CancelDuel(context.Background(), 1, model.DuelOngoing)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	_, err = f.duels.CancelDuel(context.Background(), 1, model.DuelComplete)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
}

func TestCompleteOnlyFromOngoing(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	pending, err := f.duels.CreateDuel(ctx, 3, 4, issued, problem, model.DuelUnofficial)
	require.NoError(t, err)
	n, err := f.duels.CompleteDuel(ctx, model.DuelCompletion{DuelID: pending, Winner: model.WinnerDraw, FinishTime: issued, Type: model.DuelUnofficial})
	require.NoError(t, err)
	assert.Zero(t, n)

	id := f.ongoing(t, 1, 2, model.DuelUnofficial)
	c := model.DuelCompletion{DuelID: id, Winner: model.WinnerChallengee, FinishTime: issued.Add(time.Hour), WinnerID: 2, LoserID: 1, Type: model.DuelUnofficial}
	n, err = f.duels.CompleteDuel(ctx, c)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.duels.CompleteDuel(ctx, c)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = f.duels.InvalidateDuel(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	d, err := f.duels.GetDuel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.DuelComplete, d.Status)
	require.NotNil(t, d.Winner)
	assert.Equal(t, model.WinnerChallengee, *d.Winner)
	require.NotNil(t, d.FinishTime)
}

func TestOfficialCompletionMovesRatings(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()
	for _, u := range []int64{1, 2} {
		_, err := f.duelists.Register(ctx, u)
		require.NoError(t, err)
	}

	id := f.ongoing(t, 1, 2, model.DuelOfficial)
	n, err := f.duels.CompleteDuel(ctx, model.DuelCompletion{
		DuelID: id, Winner: model.WinnerChallenger, FinishTime: issued.Add(time.Hour),
		WinnerID: 1, LoserID: 2, Delta: 24, Type: model.DuelOfficial,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, model.DefaultDuelRating+24, f.rating(t, 1))
	assert.Equal(t, model.DefaultDuelRating-24, f.rating(t, 2))
}

func TestUnofficialCompletionLeavesRatings(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()
	for _, u := range []int64{1, 2} {
		_, err := f.duelists.Register(ctx, u)
		require.NoError(t, err)
	}
	id := f.ongoing(t, 1, 2, model.DuelUnofficial)
	_, err := f.duels.CompleteDuel(ctx, model.DuelCompletion{
		DuelID: id, Winner: model.WinnerChallenger, FinishTime: issued, WinnerID: 1, LoserID: 2, Delta: 24, Type: model.DuelUnofficial,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDuelRating, f.rating(t, 1))
	assert.Equal(t, model.DefaultDuelRating, f.rating(t, 2))
}

func TestLedgerFailureKeepsDuelOngoing(t *testing.T) {
	conn := newTestSession(t)
	repos := New(conn)
	f := &duelFixture{duels: repos.Duels, duelists: repos.Duelists}
	ctx := context.Background()
	for _, u := range []int64{1, 2} {
		_, err := f.duelists.Register(ctx, u)
		require.NoError(t, err)
	}
	_, err := conn.DB().ExecContext(ctx, `
		CREATE TRIGGER ledger_down BEFORE UPDATE ON duelist WHEN NEW.user_id = 2
		BEGIN SELECT RAISE(ABORT, 'ledger down'); END`)
	require.NoError(t, err)

	id := f.ongoing(t, 1, 2, model.DuelOfficial)
	n, err := f.duels.CompleteDuel(ctx, model.DuelCompletion{
		DuelID: id, Winner: model.WinnerChallenger, FinishTime: issued, WinnerID: 1, LoserID: 2, Delta: 30, Type: model.DuelOfficial,
	})
	require.Error(t, err)
	assert.Zero(t, n)

	d, err := f.duels.GetDuel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.DuelOngoing, d.Status)
	assert.Nil(t, d.Winner)
	assert.Equal(t, model.DefaultDuelRating, f.rating(t, 1))
	assert.Equal(t, model.DefaultDuelRating, f.rating(t, 2))
}

func TestOfficialCompletionWithUnregisteredLoserRollsBack(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()
	_, err := f.duelists.Register(ctx, 1)
	require.NoError(t, err)

	id := f.ongoing(t, 1, 2, model.DuelOfficial)
	_, err = f.duels.CompleteDuel(ctx, model.DuelCompletion{
		DuelID: id, Winner: model.WinnerChallenger, FinishTime: issued, WinnerID: 1, LoserID: 2, Delta: 10, Type: model.DuelOfficial,
	})
	assert.ErrorIs(t, err, common.ErrNotRegistered)

	d, err := f.duels.GetDuel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.DuelOngoing, d.Status)
	assert.Equal(t, model.DefaultDuelRating, f.rating(t, 1))
}

func TestExpirePending(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	old, err := f.duels.CreateDuel(ctx, 1, 2, issued, problem, model.DuelUnofficial)
	require.NoError(t, err)
	fresh, err := f.duels.CreateDuel(ctx, 3, 4, issued.Add(10*time.Minute), problem, model.DuelUnofficial)
	require.NoError(t, err)

	n, err := f.duels.ExpirePending(ctx, issued.Add(5*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	d, err := f.duels.GetDuel(ctx, old)
	require.NoError(t, err)
	assert.Equal(t, model.DuelExpired, d.Status)
	d, err = f.duels.GetDuel(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, model.DuelPending, d.Status)
}

func TestFindActive(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	d, err := f.duels.FindActive(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, d)

	id, err := f.duels.CreateDuel(ctx, 1, 2, issued, problem, model.DuelUnofficial)
	require.NoError(t, err)
	for _, u := range []int64{1, 2} {
		d, err = f.duels.FindActive(ctx, u)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, id, d.ID)
	}

	pending, err := f.duels.FindPendingByChallenger(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, pending)
	none, err := f.duels.FindPendingByChallengee(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = f.duels.AcceptDuel(ctx, 2, issued)
	require.NoError(t, err)
	ongoing, err := f.duels.FindOngoing(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, ongoing)
	assert.Equal(t, id, ongoing.ID)
}

func TestDuelQueriesAndCounts(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	complete := func(challenger, challengee int64, w model.Winner) {
		id := f.ongoing(t, challenger, challengee, model.DuelUnofficial)
		_, err := f.duels.CompleteDuel(ctx, model.DuelCompletion{DuelID: id, Winner: w, FinishTime: issued.Add(time.Hour), Type: model.DuelUnofficial})
		require.NoError(t, err)
	}
	complete(1, 2, model.WinnerChallenger)
	complete(2, 1, model.WinnerChallenger)
	complete(1, 3, model.WinnerDraw)

	declined, err := f.duels.CreateDuel(ctx, 1, 2, issued, problem, model.DuelUnofficial)
	require.NoError(t, err)
	tr, err := f.duels.DeclineDuel(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, declined, tr.DuelID)

	counts := map[string]func(context.Context, int64) (int, error){
		"completed": f.duels.CountCompleted,
		"wins":      f.duels.CountWins,
		"losses":    f.duels.CountLosses,
		"draws":     f.duels.CountDraws,
	}
	want := map[string]int{"completed": 3, "wins": 1, "losses": 1, "draws": 1}
	for name, fn := range counts {
		got, err := fn(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, want[name], got, name)
	}

	n, err := f.duels.CountDeclined(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.duels.CountDeclinedByOthers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	wins, err := f.duels.Wins(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, wins, 1)

	pair, err := f.duels.PairDuels(ctx, 2, 1)
	require.NoError(t, err)
	assert.Len(t, pair, 2)

	recent, err := f.duels.RecentDuels(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	names, err := f.duels.ProblemNames(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{problem.Name}, names)

	official, err := f.duels.CompletedOfficialDuels(ctx)
	require.NoError(t, err)
	assert.Empty(t, official)
}

func TestOngoingDuels(t *testing.T) {
	f, _ := newDuelFixture(t)
	first := f.ongoing(t, 1, 2, model.DuelUnofficial)
	second := f.ongoing(t, 3, 4, model.DuelUnofficial)

	ds, err := f.duels.OngoingDuels(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.ElementsMatch(t, []int64{first, second}, []int64{ds[0].ID, ds[1].ID})
}

func TestDuelistRegisterIsIdempotent(t *testing.T) {
	f, _ := newDuelFixture(t)
	ctx := context.Background()

	n, err := f.duelists.Register(ctx, 9)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = f.duelists.Register(ctx, 9)
	require.NoError(t, err)
	assert.Zero(t, n)

	d, err := f.duelists.Find(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, d)

	all, err := f.duelists.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Duelist{{UserID: 9, Rating: model.DefaultDuelRating}}, all)
}
