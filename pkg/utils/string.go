package utils

import "github.com/charmbracelet/x/ansi"

// Truncate cuts s to maxLen display cells and appends "..." when it was
// longer. Width is measured in terminal cells, so wide runes and styled
// strings are cut without splitting a rune or an escape sequence.
func Truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "") + "..."
}
