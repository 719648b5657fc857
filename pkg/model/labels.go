package model

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	splitWordsPattern = regexp.MustCompile(`[_\-\s.]+`)
	titleCaser        = cases.Title(language.English)
)

// DefaultLabeler converts a field name into a human-friendly label. It splits
// on underscores, dashes, dots and camelCase boundaries.
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCaser.String(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

// MemberLabel returns the heading shown above the index-th record of a group,
// e.g. "Team Member 2".
func MemberLabel(base string, index int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Member"
	}
	return base + " " + strconv.Itoa(index+1)
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
