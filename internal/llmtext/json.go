// Package llmtext extracts machine-readable content from generation
// oracle replies, which routinely wrap their payload in markdown fences
// or explanatory prose.
package llmtext

import (
	"fmt"
	"strings"
)

// ExtractJSON returns the first JSON object found in raw oracle output.
// It tolerates markdown fences and surrounding prose by scanning for the
// first balanced top-level object. String contents are skipped so braces
// inside values do not confuse the balance count.
func ExtractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in oracle response")
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in oracle response")
}
