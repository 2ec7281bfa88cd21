package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/config"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-cli/internal/service"
	"github.com/rocketscienceinc/tictactoe-cli/internal/telemetry"
	"github.com/rocketscienceinc/tictactoe-cli/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-cli/internal/transport/console"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - plays one game on in/out.
func RunApp(logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app")

	if !entity.IsPlayerMark(conf.FirstPlayer) {
		return fmt.Errorf("invalid first-player setting: %w: %q", entity.ErrUnknownMark, conf.FirstPlayer)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, conf.Telemetry)
	if err != nil {
		log.Warn("Telemetry setup failed, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err = shutdown(context.Background()); err != nil {
				log.Error("could not shut down telemetry", "error", err)
			}
		}()
	}

	var recorder tictactoe.Recorder
	if conf.History.Enabled {
		redisAddrString := conf.History.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		gameRepo := repository.NewGameRepository(redisStorage.Connection)
		recorder = service.NewHistoryService(gameRepo)
	}

	presenter := console.New(out, conf.PlainOutput)
	gameController := tictactoe.NewGameController(logger, presenter, recorder, conf.FirstPlayer)

	game, err := gameController.Run(ctx, in)
	switch {
	case err == nil:
		log.Debug("Session over", "game_id", game.ID, "status", game.Status)
		return nil
	case errors.Is(err, apperror.ErrInputClosed), errors.Is(err, context.Canceled):
		log.Info("Game ended before a result", "reason", err)
		return nil
	default:
		return fmt.Errorf("game failed: %w", err)
	}
}
