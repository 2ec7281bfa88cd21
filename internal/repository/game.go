package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

const (
	scoreboardKey = "scoreboard"

	ResultTie = "tie"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrUnknownResult = errors.New("unknown game result")
)

// Scoreboard - cumulative results of every recorded game.
type Scoreboard struct {
	XWins int `json:"x_wins"`
	OWins int `json:"o_wins"`
	Ties  int `json:"ties"`
}

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	IncrementResult(ctx context.Context, result string) error
	GetScoreboard(ctx context.Context) (*Scoreboard, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + game.ID
	err = that.client.Set(ctx, gameKey, gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	deleted, err := that.client.Del(ctx, gameKey).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	return nil
}

// IncrementResult - bumps the scoreboard field for result: a player mark or ResultTie.
func (that *dbGame) IncrementResult(ctx context.Context, result string) error {
	if !entity.IsPlayerMark(result) && result != ResultTie {
		return fmt.Errorf("%w: %q", ErrUnknownResult, result)
	}

	if err := that.client.HIncrBy(ctx, scoreboardKey, result, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment %s result: %w", result, err)
	}

	return nil
}

func (that *dbGame) GetScoreboard(ctx context.Context) (*Scoreboard, error) {
	fields, err := that.client.HGetAll(ctx, scoreboardKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get scoreboard: %w", err)
	}

	scoreboard := &Scoreboard{}
	for field, target := range map[string]*int{
		entity.PlayerX: &scoreboard.XWins,
		entity.PlayerO: &scoreboard.OWins,
		ResultTie:      &scoreboard.Ties,
	} {
		raw, ok := fields[field]
		if !ok {
			continue
		}

		if *target, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("malformed scoreboard field %s: %w", field, err)
		}
	}

	return scoreboard, nil
}
