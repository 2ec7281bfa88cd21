package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
	"github.com/rocketscienceinc/tictactoe-cli/internal/repository"
	"github.com/rocketscienceinc/tictactoe-cli/internal/telemetry"
)

const (
	welcomeMessage     = "Welcome to Tic Tac Toe!"
	sizePrompt         = "Enter board size (minimum 3): "
	invalidSizeMessage = "Invalid board size. Please enter a size of 3 or greater."
	invalidMoveMessage = "Invalid move"
	tieMessage         = "It's a tie!"
)

// Presenter - display side of the game. The controller never formats the board itself.
type Presenter interface {
	Render(board *entity.Board)
	Announce(msg string)
	Reject(msg string)
	Prompt(msg string)
}

// Recorder - stores finished games and returns the updated scoreboard.
type Recorder interface {
	Record(ctx context.Context, game *entity.Game) (*repository.Scoreboard, error)
}

type GameController struct {
	logger      *slog.Logger
	presenter   Presenter
	recorder    Recorder
	firstPlayer string
	newID       func() string
	tracer      trace.Tracer
}

// NewGameController - recorder may be nil, in which case finished games are not stored.
func NewGameController(logger *slog.Logger, presenter Presenter, recorder Recorder, firstPlayer string) *GameController {
	return &GameController{
		logger:      logger.With("component", "game_controller"),
		presenter:   presenter,
		recorder:    recorder,
		firstPlayer: firstPlayer,
		newID:       uuid.NewString,
		tracer:      telemetry.Tracer("game"),
	}
}

// Run - plays one game reading the board size and moves from in, one per line.
// It returns the finished game, apperror.ErrInputClosed when in runs dry first,
// a wrapped read error when in fails, or the context error when ctx is cancelled.
// A read already blocked on in outlives Run until in yields a line or is closed,
// so in should be owned by the process (stdin) or closed by the caller.
func (that *GameController) Run(ctx context.Context, in io.Reader) (*entity.Game, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctx, span := that.tracer.Start(ctx, "game.session")
	defer span.End()

	lines := readLines(ctx, in)

	that.presenter.Announce(welcomeMessage)

	size, err := that.askBoardSize(ctx, lines)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "board size not chosen")
		return nil, err
	}

	game, err := entity.NewGame(that.newID(), size, that.firstPlayer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not create game")
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	span.SetAttributes(
		attribute.String("game.id", game.ID),
		attribute.Int("board.size", size),
	)
	log := that.logger.With("game_id", game.ID)
	log.Info("Game started", "size", size, "first_player", game.Turn)

	that.presenter.Render(game.Board)

	for game.IsOngoing() {
		that.presenter.Prompt(fmt.Sprintf("Player %s, enter your move (1-%d): ", game.Turn, game.Board.Len()))

		line, err := nextLine(ctx, lines)
		if err == nil {
			err = that.playTurn(ctx, game, line)
		} else if !errors.Is(err, apperror.ErrLineTooLong) {
			log.Warn("Game interrupted", "error", err, "moves", len(game.Moves))
			span.RecordError(err)
			span.SetStatus(codes.Error, "game interrupted")
			return game, err
		}

		if err != nil {
			log.Debug("Move rejected", "player", game.Turn, "input", line, "error", err)
			that.presenter.Reject(invalidMoveMessage)
			continue
		}

		that.presenter.Render(game.Board)
	}

	that.announceResult(game)
	span.SetAttributes(
		attribute.String("game.status", game.Status),
		attribute.String("game.winner", game.Winner),
		attribute.Int("game.moves", len(game.Moves)),
	)
	log.Info("Game finished", "status", game.Status, "winner", game.Winner, "moves", len(game.Moves))

	that.record(ctx, log, game)

	return game, nil
}

func (that *GameController) askBoardSize(ctx context.Context, lines <-chan inputLine) (int, error) {
	for {
		that.presenter.Prompt(sizePrompt)

		line, err := nextLine(ctx, lines)
		if err != nil && !errors.Is(err, apperror.ErrLineTooLong) {
			return 0, err
		}

		var size int
		if err == nil {
			size, err = ParseSize(line)
		}
		if err == nil {
			return size, nil
		}

		that.logger.Debug("Board size rejected", "input", line, "error", err)
		that.presenter.Reject(invalidSizeMessage)
	}
}

// playTurn - one state transition for the player to move. On error the game is unchanged.
func (that *GameController) playTurn(ctx context.Context, game *entity.Game, line string) error {
	_, span := that.tracer.Start(ctx, "game.turn", trace.WithAttributes(
		attribute.String("player", game.Turn),
		attribute.String("input", line),
	))
	defer span.End()

	cell, err := ParseMove(line, game.Board.Len())
	if err == nil {
		span.SetAttributes(attribute.Int("cell", cell))
		err = game.MakeTurn(cell)
	}

	if err != nil {
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid move")
		return err
	}

	span.SetAttributes(attribute.Bool("move.valid", true))
	return nil
}

func (that *GameController) announceResult(game *entity.Game) {
	switch {
	case game.IsWon():
		that.presenter.Announce(fmt.Sprintf("Congratulations! Player %s wins!", game.Winner))
	case game.IsTie():
		that.presenter.Announce(tieMessage)
	}
}

// record - stores the finished game. Failures only cost the history entry.
func (that *GameController) record(ctx context.Context, log *slog.Logger, game *entity.Game) {
	if that.recorder == nil {
		return
	}

	scoreboard, err := that.recorder.Record(ctx, game)
	if err != nil {
		log.Warn("Could not record game result", "error", err)
		return
	}

	that.presenter.Announce(fmt.Sprintf("Scoreboard: X %d, O %d, ties %d", scoreboard.XWins, scoreboard.OWins, scoreboard.Ties))
}
