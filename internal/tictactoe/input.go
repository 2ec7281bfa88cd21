package tictactoe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-cli/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

// ParseSize - parses a board size typed by the user.
func ParseSize(input string) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", apperror.ErrInvalidSize, input)
	}

	if size < entity.MinBoardSize {
		return 0, fmt.Errorf("%w: %d is less than %d", apperror.ErrInvalidSize, size, entity.MinBoardSize)
	}

	if size > entity.MaxBoardSize {
		return 0, fmt.Errorf("%w: %d is more than %d", apperror.ErrInvalidSize, size, entity.MaxBoardSize)
	}

	return size, nil
}

// ParseMove - parses a 1-based move in [1, cells] and returns the 0-based cell index.
func ParseMove(input string, cells int) (int, error) {
	move, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", apperror.ErrInvalidMove, input)
	}

	if move < 1 || move > cells {
		return 0, fmt.Errorf("%w: %d is outside 1-%d", apperror.ErrInvalidMove, move, cells)
	}

	return move - 1, nil
}

const maxLineLength = 1024

// inputLine - one line read from the input, or the error that stopped reading.
type inputLine struct {
	text string
	err  error
}

// readLines - forwards input lines until the input is exhausted or ctx is done.
// The channel is closed when no more lines will be sent. A read that is already
// blocked on in is not interrupted by ctx, so the goroutine ends with the next
// line or when in is closed.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)

	go func() {
		defer close(lines)

		reader := bufio.NewReader(in)
		for {
			text, err := readLine(reader)
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil && !errors.Is(err, apperror.ErrLineTooLong) {
				err = fmt.Errorf("failed to read input: %w", err)
			}

			select {
			case lines <- inputLine{text: text, err: err}:
			case <-ctx.Done():
				return
			}

			if err != nil && !errors.Is(err, apperror.ErrLineTooLong) {
				return
			}
		}
	}()

	return lines
}

// readLine - reads up to the next newline. Lines over maxLineLength are consumed
// whole and reported as apperror.ErrLineTooLong.
func readLine(reader *bufio.Reader) (string, error) {
	var (
		line    []byte
		tooLong bool
	)

	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(line) > 0 || tooLong) {
				break
			}
			return "", err
		}

		if len(line)+len(chunk) > maxLineLength {
			tooLong = true
			line = line[:0]
		} else if !tooLong {
			line = append(line, chunk...)
		}

		if !isPrefix {
			break
		}
	}

	if tooLong {
		return "", fmt.Errorf("%w: more than %d bytes", apperror.ErrLineTooLong, maxLineLength)
	}

	return string(line), nil
}

// nextLine - the next input line. apperror.ErrLineTooLong is per line and reading can go on,
// any other error ends the input.
func nextLine(ctx context.Context, lines <-chan inputLine) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lines:
		if !ok {
			return "", apperror.ErrInputClosed
		}
		return line.text, line.err
	}
}
