package apperror

import "errors"

var (
	ErrInvalidSize     = errors.New("invalid board size")
	ErrInvalidMove     = errors.New("invalid move")
	ErrGameFinished    = errors.New("game is already finished")
	ErrGameNotFinished = errors.New("game is not finished")
	ErrInputClosed     = errors.New("input closed before the game ended")
	ErrLineTooLong     = errors.New("input line is too long")
)
