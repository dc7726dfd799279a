package typeset

import "strings"

// Wrap breaks text into lines no wider than maxWidth using greedy word
// accumulation. Words are split on any whitespace and never broken: a word
// wider than maxWidth is placed alone on its own line.
//
// Joining the result with single spaces reproduces the whitespace-collapsed
// input. Empty or whitespace-only text yields no lines.
func Wrap(text string, m Measurer, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Measure(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
