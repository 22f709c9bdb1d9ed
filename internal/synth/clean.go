package synth

import (
	"strings"
)

// cleanSource strips the markdown framing the oracle tends to wrap
// around code: fenced blocks, prose before the package clause, and
// commentary after the final closing brace. Lines inside the code
// itself are never rewritten.
func cleanSource(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	if fenced, ok := extractFencedBlock(text); ok {
		text = fenced
	}

	lines := strings.Split(text, "\n")
	lines = dropLeadingProse(lines)
	lines = dropTrailingProse(lines)

	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

// extractFencedBlock returns the content of the first ``` fence. The
// opening fence's language tag is discarded.
func extractFencedBlock(text string) (string, bool) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			start = i
			break
		}
	}
	if start == -1 {
		return "", false
	}

	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			return strings.Join(lines[start+1:i], "\n"), true
		}
	}

	// Unterminated fence: take everything after the opening marker.
	return strings.Join(lines[start+1:], "\n"), true
}

// dropLeadingProse removes everything before the first line of code.
// A build-constraint comment or copyright line ahead of the package
// clause survives because it starts with the comment marker.
func dropLeadingProse(lines []string) []string {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") ||
			strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "/*") {
			return lines[i:]
		}
	}
	return lines
}

// dropTrailingProse removes commentary after the final closing brace.
// Nothing is cut unless prose actually follows the code.
func dropTrailingProse(lines []string) []string {
	last := -1
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "}" || strings.HasSuffix(trimmed, "}") {
			last = i
			break
		}
	}
	if last == -1 || last == len(lines)-1 {
		return lines
	}

	for _, line := range lines[last+1:] {
		if strings.TrimSpace(line) != "" {
			return lines[:last+1]
		}
	}
	return lines
}
