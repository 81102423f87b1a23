package historystor

import (
	"testing"
	"time"

	"integral-solver/api"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func event(expr, method string, success bool, at time.Time) api.SolveEvent {
	resp := &api.SolveResponse{Success: success, Method: method, Result: "r"}
	if !success {
		resp = api.Failure("Error: nope")
	}
	return api.SolveEvent{
		ID:         uuid.New().String(),
		Request:    api.SolveRequest{Expression: expr},
		Response:   resp,
		DurationMS: 3,
		At:         at,
	}
}

func TestCreateAndFind(t *testing.T) {
	repo := setupRepo(t)
	ev := event("x*sin(x)", "Integration by Parts", true, time.Now())
	require.NoError(t, repo.Create(FromEvent(ev)))

	got, err := repo.FindByID(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "x*sin(x)", got.Expression)
	assert.Equal(t, "x", got.Variable)
	assert.Equal(t, "Integration by Parts", got.Method)
	assert.True(t, got.Success)

	h := got.API()
	assert.Equal(t, ev.ID, h.ID)
	assert.Equal(t, int64(3), h.DurationMS)

	_, err = repo.FindByID(uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentNewestFirst(t *testing.T) {
	repo := setupRepo(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, expr := range []string{"x", "x^2", "x^3"} {
		require.NoError(t, repo.Create(FromEvent(event(expr, "Power Rule", true, base.Add(time.Duration(i)*time.Minute)))))
	}

	entries, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "x^3", entries[0].Expression)
	assert.Equal(t, "x^2", entries[1].Expression)

	entries, err = repo.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCountByMethod(t *testing.T) {
	repo := setupRepo(t)
	now := time.Now()
	require.NoError(t, repo.Create(FromEvent(event("x", "Power Rule", true, now))))
	require.NoError(t, repo.Create(FromEvent(event("x^2", "Power Rule", true, now))))
	require.NoError(t, repo.Create(FromEvent(event("sin(x)", "Trigonometric Integration", true, now))))
	require.NoError(t, repo.Create(FromEvent(event("sin(x^2)", "", false, now))))

	counts, err := repo.CountByMethod()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Power Rule": 2, "Trigonometric Integration": 1}, counts)
}

func TestFromEventFailure(t *testing.T) {
	e := FromEvent(event("sin(x^2)", "", false, time.Now()))
	assert.False(t, e.Success)
	assert.Equal(t, "Error: nope", e.Error)
}
