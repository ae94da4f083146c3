package gemini

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var errNoJSON = errors.New("no JSON found in model output")

// fencePattern matches a markdown code fence with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// extractJSON returns the JSON document in a model reply. JSON mode replies
// are usually bare, but fenced replies are accepted too.
func extractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		lang := strings.ToLower(m[1])
		if lang != "" && lang != "json" {
			continue
		}
		if body := strings.TrimSpace(m[2]); json.Valid([]byte(body)) {
			return body, nil
		}
	}
	if body, ok := firstBalanced(text); ok {
		return body, nil
	}
	return "", errNoJSON
}

// firstBalanced finds the first bracketed JSON value, honoring strings.
func firstBalanced(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}
	depth, inString, escaped := 0, false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				body := s[start : i+1]
				return body, json.Valid([]byte(body))
			}
		}
	}
	return "", false
}
