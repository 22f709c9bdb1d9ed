// Package result pulls the computed answer out of a sandbox run's
// captured output. Generated programs are told to print their results
// between sentinel marker lines; extraction falls back to the last
// informational log lines when the markers are missing.
package result

import (
	"regexp"
	"strings"
	"time"
)

// Sentinel lines the generated program prints around its results.
const (
	BeginMarker = "BEGIN-RESULTS"
	EndMarker   = "END-RESULTS"
)

// Fallback window when no markers are found: scan the last scanWindow
// raw lines, return at most maxFallbackLines informational ones.
const (
	scanWindow       = 10
	maxFallbackLines = 5
)

// Method records how the result lines were obtained.
type Method string

const (
	MethodMarkers  Method = "markers"
	MethodFallback Method = "fallback"
	MethodNone     Method = "none"
)

// ResultSet is the extracted outcome of a run. Extraction never fails:
// an empty ResultSet with MethodNone is the worst case.
type ResultSet struct {
	Lines       []string
	Method      Method
	ExtractedAt time.Time
}

// Text joins the result lines.
func (r *ResultSet) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Empty reports whether nothing was extracted.
func (r *ResultSet) Empty() bool {
	return len(r.Lines) == 0
}

// logPrefix matches the timestamp/level prefix a structured logger puts
// in front of a line, so results forwarded through the program's logger
// still come out clean.
var logPrefix = regexp.MustCompile(
	`^\s*(?:\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?\s*)?(?:\[?(?:INFO|INF|DEBUG|DBG|WARN|WRN|ERROR|ERR)\]?[:\s]\s*)?`)

var infoMarker = regexp.MustCompile(`\b(?:INFO|INF)\b`)

// Extract pulls result lines from the raw captured log. It never
// returns an error; a run that printed nothing usable yields an empty
// ResultSet.
func Extract(rawLog string) *ResultSet {
	set := &ResultSet{ExtractedAt: time.Now().UTC()}

	lines := strings.Split(strings.ReplaceAll(rawLog, "\r\n", "\n"), "\n")

	if between, ok := betweenMarkers(lines); ok {
		set.Lines = cleanLines(between)
		set.Method = MethodMarkers
		if len(set.Lines) == 0 {
			set.Method = MethodNone
		}
		return set
	}

	fallback := lastInfoLines(lines)
	if len(fallback) > 0 {
		set.Lines = fallback
		set.Method = MethodFallback
		return set
	}

	set.Method = MethodNone
	return set
}

// betweenMarkers returns the lines between the first begin marker and
// the next end marker. A begin marker with no end marker captures
// through the end of the log.
func betweenMarkers(lines []string) ([]string, bool) {
	begin := -1
	for i, line := range lines {
		if strings.Contains(line, BeginMarker) {
			begin = i
			break
		}
	}
	if begin == -1 {
		return nil, false
	}

	for i := begin + 1; i < len(lines); i++ {
		if strings.Contains(lines[i], EndMarker) {
			return lines[begin+1 : i], true
		}
	}
	return lines[begin+1:], true
}

// lastInfoLines scans the tail of the log for informational lines.
func lastInfoLines(lines []string) []string {
	start := len(lines) - scanWindow
	if start < 0 {
		start = 0
	}

	var out []string
	for _, line := range lines[start:] {
		if infoMarker.MatchString(line) {
			out = append(out, stripLogPrefix(line))
		}
	}

	if len(out) > maxFallbackLines {
		out = out[len(out)-maxFallbackLines:]
	}
	return out
}

func cleanLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		cleaned := strings.TrimRight(stripLogPrefix(line), " \t")
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func stripLogPrefix(line string) string {
	return logPrefix.ReplaceAllString(line, "")
}
