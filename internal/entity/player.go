package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// IsPlayerMark - reports whether mark is one of the two player symbols.
func IsPlayerMark(mark string) bool {
	return mark == PlayerX || mark == PlayerO
}

// Other - returns the opponent of the given mark.
func Other(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
