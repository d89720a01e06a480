package model

import "strings"

// LearningContext holds the structured fields extracted from the free-form
// context string attached to a call.
type LearningContext struct {
	Topic    string
	Progress string
	Month    string
}

// contextMarkers is the ordered table of known field labels. Extraction is
// marker-delimited: a field's value runs from just after its label to the
// start of the next known marker, or the end of the string. Adding a field
// means adding a row here, not new control flow.
var contextMarkers = []struct {
	label  string
	assign func(*LearningContext, string)
}{
	{"Today's Topic:", func(c *LearningContext, v string) { c.Topic = v }},
	{"Progress:", func(c *LearningContext, v string) { c.Progress = v }},
	{"Month:", func(c *LearningContext, v string) { c.Month = v }},
}

// ParseLearningContext extracts the known fields from a context string.
// Markers may appear in any order or not at all; a missing marker simply
// leaves its field empty. Malformed or empty input is not an error.
func ParseLearningContext(context string) LearningContext {
	var out LearningContext
	for _, m := range contextMarkers {
		idx := strings.Index(context, m.label)
		if idx < 0 {
			continue
		}
		rest := context[idx+len(m.label):]
		end := len(rest)
		for _, other := range contextMarkers {
			if other.label == m.label {
				continue
			}
			if j := strings.Index(rest, other.label); j >= 0 && j < end {
				end = j
			}
		}
		m.assign(&out, strings.TrimSpace(rest[:end]))
	}
	return out
}

// Truncate shortens s to at most n runes for display. Field truncation is
// the caller's concern, not the parser's.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
