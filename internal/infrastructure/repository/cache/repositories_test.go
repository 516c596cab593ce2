package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	teammock "github.com/riskibarqy/gridiron-stats/internal/mocks/domain/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTeamRepositoryLoadsListOnce(t *testing.T) {
	t.Parallel()

	next := teammock.NewRepository(t)
	next.On("List", mock.Anything).Return([]team.Team{
		{Abbr: "BAL", Name: "Baltimore Ravens"},
		{Abbr: "KC", Name: "Kansas City Chiefs"},
	}, nil).Once()

	repo := NewTeamRepository(next, 0)
	ctx := context.Background()

	kc, ok, err := repo.GetByAbbr(ctx, " kc ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Kansas City Chiefs", kc.Name)

	_, ok, err = repo.GetByAbbr(ctx, "SF")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	list[0].Name = "mutated"

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Baltimore Ravens", again[0].Name, "callers get copies")
}

func TestTeamRepositoryForgetReloads(t *testing.T) {
	t.Parallel()

	next := teammock.NewRepository(t)
	next.On("List", mock.Anything).Return([]team.Team{{Abbr: "KC"}}, nil).Once()
	next.On("List", mock.Anything).Return([]team.Team{{Abbr: "KC"}, {Abbr: "SF"}}, nil).Once()

	repo := NewTeamRepository(next, 0)
	_, ok, err := repo.GetByAbbr(context.Background(), "SF")
	require.NoError(t, err)
	assert.False(t, ok)

	repo.Forget()
	_, ok, err = repo.GetByAbbr(context.Background(), "SF")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTeamRepositoryDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("teams unavailable")
	next := teammock.NewRepository(t)
	next.On("List", mock.Anything).Return(nil, boom).Once()
	next.On("List", mock.Anything).Return([]team.Team{{Abbr: "KC"}}, nil).Once()

	repo := NewTeamRepository(next, 0)
	_, err := repo.List(context.Background())
	require.ErrorIs(t, err, boom)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
