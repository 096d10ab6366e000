package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports that no structured record could be recovered from a
// response. Callers substitute an empty record and continue; a ParseError
// never aborts a run.
type ParseError struct {
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no JSON object found in response (starts %q)", e.Snippet)
}

var (
	labeledFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// Repair extracts a structured record from a raw generation response. The
// model is asked for bare JSON but wraps it unpredictably, so four attempts
// run in order: the whole text, the first ```json fence, the first generic
// fence, and finally the widest brace-delimited span. The first attempt that
// decodes to a JSON object wins.
func Repair(raw string) (Record, error) {
	trimmed := strings.TrimSpace(raw)

	candidates := make([]string, 0, 4)
	candidates = append(candidates, trimmed)
	if m := labeledFenceRe.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := genericFenceRe.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, m[1])
	}
	if span := braceSpan(trimmed); span != "" {
		candidates = append(candidates, span)
	}

	for _, c := range candidates {
		var obj map[string]any
		if err := json.Unmarshal([]byte(c), &obj); err == nil {
			return Record(obj), nil
		}
	}

	return nil, &ParseError{Snippet: truncate(trimmed, 60)}
}

// braceSpan returns the text between the first '{' and the last '}'.
func braceSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
