package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository"
)

type HistoryService interface {
	Record(ctx context.Context, game *entity.Game) (*repository.Scoreboard, error)
	Scoreboard(ctx context.Context) (*repository.Scoreboard, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	IncrementResult(ctx context.Context, result string) error
	GetScoreboard(ctx context.Context) (*repository.Scoreboard, error)
}

type historyService struct {
	gameRepo gameRepo
}

func NewHistoryService(gameRepo gameRepo) HistoryService {
	return &historyService{
		gameRepo: gameRepo,
	}
}

// Record - stores a finished game, counts its result and returns the updated scoreboard.
// A game already stored under the same ID is counted once.
func (that *historyService) Record(ctx context.Context, game *entity.Game) (*repository.Scoreboard, error) {
	if !game.IsFinished() {
		return nil, fmt.Errorf("%w: game %s is %s", apperror.ErrGameNotFinished, game.ID, game.Status)
	}

	_, err := that.gameRepo.GetByID(ctx, game.ID)
	switch {
	case err == nil:
		return that.Scoreboard(ctx)
	case !errors.Is(err, repository.ErrGameNotFound):
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to store game: %w", err)
	}

	result := repository.ResultTie
	if game.IsWon() {
		result = game.Winner
	}

	if err = that.gameRepo.IncrementResult(ctx, result); err != nil {
		// the stored game would make a retry skip the count
		if delErr := that.gameRepo.DeleteByID(ctx, game.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("failed to count result: %w", err)
	}

	return that.Scoreboard(ctx)
}

func (that *historyService) Scoreboard(ctx context.Context) (*repository.Scoreboard, error) {
	scoreboard, err := that.gameRepo.GetScoreboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve scoreboard from storage: %w", err)
	}
	return scoreboard, nil
}
