package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (m *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	return m.Called(ctx, game).Error(0)
}

func (m *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGameRepo) IncrementResult(ctx context.Context, result string) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockGameRepo) GetScoreboard(ctx context.Context) (*repository.Scoreboard, error) {
	args := m.Called(ctx)
	return args.Get(0).(*repository.Scoreboard), args.Error(1)
}

func playGame(t *testing.T, moves ...int) *entity.Game {
	t.Helper()

	game, err := entity.NewGame("g1", 3, entity.PlayerX)
	require.NoError(t, err)
	for _, move := range moves {
		require.NoError(t, game.MakeTurn(move-1))
	}

	return game
}

func TestHistoryService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a won game and counts the winner", func(t *testing.T) {
		// Given: a game X has won
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 4, 3, 7)

		repo.On("GetByID", ctx, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		repo.On("CreateOrUpdate", ctx, game).Return(nil).Once()
		repo.On("IncrementResult", ctx, entity.PlayerX).Return(nil).Once()
		repo.On("GetScoreboard", ctx).Return(&repository.Scoreboard{XWins: 1}, nil).Once()

		// When: the game is recorded
		scoreboard, err := historyService.Record(ctx, game)

		// Then: the updated scoreboard is returned
		require.NoError(t, err)
		assert.Equal(t, &repository.Scoreboard{XWins: 1}, scoreboard)
		repo.AssertExpectations(t)
	})

	t.Run("Counts a tie", func(t *testing.T) {
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 3, 5, 4, 6, 8, 7, 9)

		repo.On("GetByID", ctx, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		repo.On("CreateOrUpdate", ctx, game).Return(nil).Once()
		repo.On("IncrementResult", ctx, repository.ResultTie).Return(nil).Once()
		repo.On("GetScoreboard", ctx).Return(&repository.Scoreboard{Ties: 3}, nil).Once()

		scoreboard, err := historyService.Record(ctx, game)

		require.NoError(t, err)
		assert.Equal(t, 3, scoreboard.Ties)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects an unfinished game", func(t *testing.T) {
		// Given: a game still in progress
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1)

		// When: it is recorded
		_, err := historyService.Record(ctx, game)

		// Then: ErrGameNotFinished is returned and storage is untouched
		require.ErrorIs(t, err, apperror.ErrGameNotFinished)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Storage failure", func(t *testing.T) {
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 4, 3, 7)

		repo.On("GetByID", ctx, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		repo.On("CreateOrUpdate", ctx, game).Return(errRedisDown).Once()

		_, err := historyService.Record(ctx, game)

		require.ErrorIs(t, err, errRedisDown)
		repo.AssertNotCalled(t, "IncrementResult", mock.Anything, mock.Anything)
	})

	t.Run("Game already recorded is not counted again", func(t *testing.T) {
		// Given: the game is already in storage
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 4, 3, 7)

		repo.On("GetByID", ctx, "g1").Return(game, nil).Once()
		repo.On("GetScoreboard", ctx).Return(&repository.Scoreboard{XWins: 1}, nil).Once()

		// When: it is recorded again
		scoreboard, err := historyService.Record(ctx, game)

		// Then: the current scoreboard is returned without storing or counting
		require.NoError(t, err)
		assert.Equal(t, 1, scoreboard.XWins)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "IncrementResult", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("Lookup failure", func(t *testing.T) {
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 4, 3, 7)

		repo.On("GetByID", ctx, "g1").Return(&entity.Game{}, errRedisDown).Once()

		_, err := historyService.Record(ctx, game)

		require.ErrorIs(t, err, errRedisDown)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Count failure removes the stored game", func(t *testing.T) {
		// Given: storing succeeds but the counter update fails
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 3, 5, 4, 6, 8, 7, 9)

		repo.On("GetByID", ctx, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		repo.On("CreateOrUpdate", ctx, game).Return(nil).Once()
		repo.On("IncrementResult", ctx, repository.ResultTie).Return(errRedisDown).Once()
		repo.On("DeleteByID", ctx, "g1").Return(nil).Once()

		// When: the game is recorded
		_, err := historyService.Record(ctx, game)

		// Then: the error is returned and the stored game is deleted so a retry counts it
		require.ErrorIs(t, err, errRedisDown)
		repo.AssertExpectations(t)
	})

	t.Run("Count and cleanup both fail", func(t *testing.T) {
		errDelete := errors.New("delete failed")
		repo := &mockGameRepo{}
		historyService := NewHistoryService(repo)
		game := playGame(t, 1, 2, 4, 3, 7)

		repo.On("GetByID", ctx, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		repo.On("CreateOrUpdate", ctx, game).Return(nil).Once()
		repo.On("IncrementResult", ctx, entity.PlayerX).Return(errRedisDown).Once()
		repo.On("DeleteByID", ctx, "g1").Return(errDelete).Once()

		_, err := historyService.Record(ctx, game)

		require.ErrorIs(t, err, errRedisDown)
		require.ErrorIs(t, err, errDelete)
	})
}
