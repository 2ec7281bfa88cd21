package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
)

const (
	MinBoardSize = 3
	MaxBoardSize = 99
)

var (
	ErrInvalidCell  = fmt.Errorf("%w: cell index out of range", apperror.ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", apperror.ErrInvalidMove)
	ErrUnknownMark  = errors.New("unknown player mark")
)

type Board struct {
	Size  int      `json:"size"`
	Cells []string `json:"cells"`
}

func NewBoard(size int) (*Board, error) {
	if size < MinBoardSize {
		return nil, fmt.Errorf("%w: %d is less than %d", apperror.ErrInvalidSize, size, MinBoardSize)
	}

	if size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d is more than %d", apperror.ErrInvalidSize, size, MaxBoardSize)
	}

	return &Board{
		Size:  size,
		Cells: make([]string, size*size),
	}, nil
}

// Len - number of cells on the board.
func (that *Board) Len() int {
	return len(that.Cells)
}

// Cell - returns the mark at row, col.
func (that *Board) Cell(row, col int) string {
	return that.Cells[row*that.Size+col]
}

func (that *Board) IsValidMove(cell int) bool {
	return cell >= 0 && cell < len(that.Cells) && that.Cells[cell] == EmptyCell
}

// ApplyMove - places mark on cell. The board is left untouched on error.
func (that *Board) ApplyMove(cell int, mark string) error {
	if !IsPlayerMark(mark) {
		return fmt.Errorf("%w: %q", ErrUnknownMark, mark)
	}

	if cell < 0 || cell >= len(that.Cells) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that.Cells[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", ErrCellOccupied, cell)
	}

	that.Cells[cell] = mark

	return nil
}

func (that *Board) IsFull() bool {
	for _, cell := range that.Cells {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// CheckWin - reports whether mark fills a whole row, column or diagonal.
// Lines are checked rows first, then columns, then both diagonals.
func (that *Board) CheckWin(mark string) bool {
	if !IsPlayerMark(mark) {
		return false
	}

	n := that.Size

	for row := 0; row < n; row++ {
		if that.lineIs(mark, func(i int) int { return row*n + i }) {
			return true
		}
	}

	for col := 0; col < n; col++ {
		if that.lineIs(mark, func(i int) int { return i*n + col }) {
			return true
		}
	}

	if that.lineIs(mark, func(i int) int { return i*n + i }) {
		return true
	}

	return that.lineIs(mark, func(i int) int { return i*n + (n - 1 - i) })
}

func (that *Board) lineIs(mark string, index func(i int) int) bool {
	for i := 0; i < that.Size; i++ {
		if that.Cells[index(i)] != mark {
			return false
		}
	}
	return true
}

// Render - draws the board as a framed text grid, one line per row plus rules.
func (that *Board) Render() string {
	return that.RenderFunc(func(mark string) string { return mark })
}

// RenderFunc - same grid as Render, with every non-empty mark passed through decorate.
// decorate must keep the visible width of a mark at one column.
func (that *Board) RenderFunc(decorate func(mark string) string) string {
	var sb strings.Builder

	rule := "+" + strings.Repeat("---+", that.Size) + "\n"

	for row := 0; row < that.Size; row++ {
		sb.WriteString(rule)
		sb.WriteString("|")
		for col := 0; col < that.Size; col++ {
			cell := " "
			if mark := that.Cell(row, col); mark != EmptyCell {
				cell = decorate(mark)
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(rule)

	return sb.String()
}
