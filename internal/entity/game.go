package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
)

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusTie        = "tie"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID     string `json:"id"`
	Board  *Board `json:"board"`
	Turn   string `json:"player_turn"`
	Winner string `json:"winner,omitempty"`
	Status string `json:"status"`
	Moves  []int  `json:"moves"`
}

func NewGame(id string, size int, firstPlayer string) (*Game, error) {
	if !IsPlayerMark(firstPlayer) {
		return nil, fmt.Errorf("%w: first player %q", ErrUnknownMark, firstPlayer)
	}

	board, err := NewBoard(size)
	if err != nil {
		return nil, err
	}

	return &Game{
		ID:     id,
		Board:  board,
		Turn:   firstPlayer,
		Status: StatusInProgress,
		Moves:  []int{},
	}, nil
}

// MakeTurn - plays cell (0-based) for the player whose turn it is.
// A rejected move leaves the board and the turn unchanged.
func (that *Game) MakeTurn(cell int) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if err := that.Board.ApplyMove(cell, that.Turn); err != nil {
		return err
	}

	that.Moves = append(that.Moves, cell)
	that.UpdateGameState()

	return nil
}

// UpdateGameState - evaluates the position after the current player has moved.
func (that *Game) UpdateGameState() {
	switch {
	case that.Board.CheckWin(that.Turn):
		that.Winner = that.Turn
		that.Status = StatusWon
	case that.Board.IsFull():
		that.Status = StatusTie
	default:
		that.Turn = Other(that.Turn)
	}
}

func (that *Game) IsFinished() bool {
	return that.IsWon() || that.IsTie()
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsWon() bool {
	return that.Status == StatusWon
}

func (that *Game) IsTie() bool {
	return that.Status == StatusTie
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
