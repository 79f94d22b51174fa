package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON is returned when no JSON object can be located in a response
	ErrNoJSON = errors.New("no JSON object found in text")

	jsonFenceRe  = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	plainFenceRe = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
)

// ExtractJSON pulls a JSON object out of LLM response text. Models sometimes
// wrap their output in markdown fences or surround it with prose, so the
// extraction tries three patterns in order: a ```json fence, a plain fence,
// then the outermost brace-matched substring.
func ExtractJSON(text string) (string, error) {
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}
	if m := plainFenceRe.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1], nil
	}

	return "", ErrNoJSON
}
