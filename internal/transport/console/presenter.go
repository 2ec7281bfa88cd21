// Package console renders the game to a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/rocketscienceinc/tictactoe-cli/internal/entity"
)

const title = "Tic Tac Toe"

const (
	ansiReset       = "\033[0m"
	ansiBold        = "\033[1m"
	ansiRedBg       = "\033[41m"
	ansiYellow      = "\033[93m"
	ansiGreen       = "\033[92m"
	ansiCyan        = "\033[96m"
	ansiMagenta     = "\033[95m"
	ansiClearScreen = "\033[H\033[2J"
)

type Presenter struct {
	out         io.Writer
	interactive bool
}

// New - returns a presenter writing to out. Colors and screen clearing are
// used only when out is a terminal and plain is false.
func New(out io.Writer, plain bool) *Presenter {
	return &Presenter{
		out:         out,
		interactive: !plain && isTerminal(out),
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Render - redraws the title and the board.
func (that *Presenter) Render(board *entity.Board) {
	if that.interactive {
		fmt.Fprint(that.out, ansiClearScreen)
	}

	grid := board.RenderFunc(that.colorMark)
	fmt.Fprint(that.out, box(that.style(ansiBold+ansiCyan, title), that.style(ansiMagenta, "")))
	fmt.Fprint(that.out, grid)
}

func (that *Presenter) Announce(msg string) {
	fmt.Fprint(that.out, box(that.style(ansiBold+ansiCyan, msg), that.style(ansiMagenta, "")))
}

func (that *Presenter) Reject(msg string) {
	fmt.Fprintln(that.out, that.style(ansiRedBg, "✖ "+msg))
}

func (that *Presenter) Prompt(msg string) {
	fmt.Fprint(that.out, msg)
}

func (that *Presenter) colorMark(mark string) string {
	switch mark {
	case entity.PlayerX:
		return that.style(ansiBold+ansiYellow, mark)
	case entity.PlayerO:
		return that.style(ansiBold+ansiGreen, mark)
	default:
		return mark
	}
}

// style wraps text in an ANSI sequence when interactive. An empty text yields
// the bare sequence so box borders can be tinted.
func (that *Presenter) style(seq, text string) string {
	if !that.interactive {
		return text
	}
	if text == "" {
		return seq
	}
	return seq + text + ansiReset
}

// box frames text with a single-line border. tint is written before each
// border segment and reset after it; it is empty in plain mode.
func box(text, tint string) string {
	width := utf8.RuneCountInString(stripANSI(text))
	reset := ""
	if tint != "" {
		reset = ansiReset
	}

	horizontal := strings.Repeat("─", width+2)

	var sb strings.Builder
	sb.WriteString(tint + "┌" + horizontal + "┐" + reset + "\n")
	sb.WriteString(tint + "│" + reset + " " + text + " " + tint + "│" + reset + "\n")
	sb.WriteString(tint + "└" + horizontal + "┘" + reset + "\n")

	return sb.String()
}

func stripANSI(s string) string {
	var sb strings.Builder

	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
