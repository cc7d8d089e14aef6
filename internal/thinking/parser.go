// Package thinking splits a streamed model response into its reasoning block and the answer.
package thinking

import (
	"regexp"
	"strings"
)

const (
	OpenTag  = "<thinking>"
	CloseTag = "</thinking>"
)

var thinkRegex = regexp.MustCompile(`(?is)<(?:thinking|think)>(.*?)</(?:thinking|think)>`)

type Result struct {
	Thought    string
	HasThought bool
	Answer     string
}

// Parse extracts the first delimited thinking region from raw. Without a complete region the
// raw text is returned untouched as the answer, which is the normal state of an early chunk.
func Parse(raw string) Result {
	loc := thinkRegex.FindStringSubmatchIndex(raw)
	if loc == nil {
		return Result{Answer: raw}
	}
	return Result{
		Thought:    strings.TrimSpace(raw[loc[2]:loc[3]]),
		HasThought: true,
		Answer:     strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:]),
	}
}

// IsThinking reports whether raw has an opened but not yet closed thinking block.
func IsThinking(raw string) bool {
	lower := strings.ToLower(raw)
	open := strings.LastIndex(lower, "<think")
	if open < 0 {
		return false
	}
	return !strings.Contains(lower[open:], "</think")
}
