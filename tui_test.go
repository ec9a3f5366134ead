package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// Umlaut-heavy line, as recognized German words are before
	// normalization.
	line := strings.Repeat("größe übung ", 10)

	for width := 3; width < 40; width++ {
		left := truncateLeft(line, width)
		right := truncateRight(line, width)
		if !utf8.ValidString(left) {
			t.Fatalf("truncateLeft(width=%d) split a rune: %q", width, left)
		}
		if !utf8.ValidString(right) {
			t.Fatalf("truncateRight(width=%d) split a rune: %q", width, right)
		}
		if got := utf8.RuneCountInString(left); got != width {
			t.Errorf("truncateLeft(width=%d) = %d runes", width, got)
		}
		if got := utf8.RuneCountInString(right); got != width {
			t.Errorf("truncateRight(width=%d) = %d runes", width, got)
		}
	}
}

func TestTruncateLeftKeepsNewest(t *testing.T) {
	got := truncateLeft("hallo schöne welt", 9)
	if got != "…öne welt" {
		t.Errorf("truncateLeft = %q", got)
	}
}

func TestTruncateShortLinesUntouched(t *testing.T) {
	if got := truncateLeft("übung", 10); got != "übung" {
		t.Errorf("truncateLeft = %q", got)
	}
	if got := truncateRight("übung", 5); got != "übung" {
		t.Errorf("truncateRight = %q", got)
	}
}
