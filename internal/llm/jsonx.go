package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeJSON decodes JSON out of model output, tolerating the usual
// formatting quirks: a direct payload, a fenced ```json block, or JSON
// buried in surrounding prose.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	if fenced := stripCodeFence(trimmed); fenced != "" && fenced != trimmed {
		if err := json.Unmarshal([]byte(fenced), target); err == nil {
			return nil
		}
		trimmed = fenced
	}

	if span := firstBalancedSpan(trimmed); span != "" {
		if err := json.Unmarshal([]byte(span), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w (payload snippet: %s)", directErr, payloadSnippet(trimmed))
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	idx := strings.Index(trimmed, "```")
	if idx < 0 {
		return trimmed
	}
	body := trimmed[idx+3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// firstBalancedSpan returns the first complete JSON object or array in
// s, tracking string literals and escapes so braces inside strings do
// not unbalance the scan.
func firstBalancedSpan(s string) string {
	start := -1
	var opener, closer byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			opener = s[i]
			if opener == '{' {
				closer = '}'
			} else {
				closer = ']'
			}
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func payloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
