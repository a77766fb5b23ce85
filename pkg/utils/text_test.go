package utils

import "testing"

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("abcdef", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := TruncateRunes("abc", 10); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := TruncateRunes("abc", 0); got != "abc" {
		t.Errorf("maxRunes=0 should return unchanged, got %q", got)
	}
	// Multi-byte characters count as one.
	if got := TruncateRunes("zażółć", 4); got != "zażó" {
		t.Errorf("got %q", got)
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize("abcdef", 3); got != "abc..." {
		t.Errorf("got %q", got)
	}
	if got := Ellipsize("ab", 3); got != "ab" {
		t.Errorf("got %q", got)
	}
}
