package utils

// TruncateRunes returns s truncated to at most maxRunes characters. Counting
// runes rather than bytes keeps Polish diacritics intact at the cut point.
// If maxRunes is 0 or negative, returns s unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes])
}

// Ellipsize returns s truncated to maxRunes characters with "..." appended
// when truncation occurred. Used for log and CLI display, not for previews.
func Ellipsize(s string, maxRunes int) string {
	t := TruncateRunes(s, maxRunes)
	if t == s {
		return s
	}
	return t + "..."
}
