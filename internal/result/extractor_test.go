package result

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Markers(t *testing.T) {
	raw := strings.Join([]string{
		"2026-08-26T10:00:00Z INFO starting up",
		BeginMarker,
		"ratio: 1.25",
		"inputs: 1000 / 800",
		EndMarker,
		"2026-08-26T10:00:01Z INFO done",
	}, "\n")

	set := Extract(raw)

	assert.Equal(t, MethodMarkers, set.Method)
	assert.Equal(t, []string{"ratio: 1.25", "inputs: 1000 / 800"}, set.Lines)
	assert.Equal(t, "ratio: 1.25\ninputs: 1000 / 800", set.Text())
}

func TestExtract_MarkersStripLogPrefixes(t *testing.T) {
	// Results forwarded through the program's own logger carry a
	// timestamp and level prefix that must not survive extraction.
	raw := strings.Join([]string{
		BeginMarker,
		"2026-08-26T10:00:00Z INFO: ratio: 1.25",
		EndMarker,
	}, "\n")

	set := Extract(raw)

	require.Equal(t, MethodMarkers, set.Method)
	assert.Equal(t, []string{"ratio: 1.25"}, set.Lines)
}

func TestExtract_UnterminatedMarkerCapturesTail(t *testing.T) {
	raw := strings.Join([]string{
		"INFO warming up",
		BeginMarker,
		"ratio: 1.25",
	}, "\n")

	set := Extract(raw)

	assert.Equal(t, MethodMarkers, set.Method)
	assert.Equal(t, []string{"ratio: 1.25"}, set.Lines)
}

func TestExtract_FallbackToLastInfoLines(t *testing.T) {
	raw := strings.Join([]string{
		"INFO step 1 done",
		"INFO step 2 done",
		"DEBUG internal detail",
		"INFO ratio computed: 1.25",
	}, "\n")

	set := Extract(raw)

	assert.Equal(t, MethodFallback, set.Method)
	assert.Equal(t, []string{
		"step 1 done",
		"step 2 done",
		"ratio computed: 1.25",
	}, set.Lines)
}

func TestExtract_FallbackWindowLimits(t *testing.T) {
	// Twenty INFO lines: only the last ten are scanned, and at most
	// five are returned.
	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines, "INFO line "+string(rune('a'+i-1)))
	}

	set := Extract(strings.Join(lines, "\n"))

	require.Equal(t, MethodFallback, set.Method)
	assert.Len(t, set.Lines, 5)
	assert.Equal(t, "line t", set.Lines[4])
}

func TestExtract_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty log", raw: ""},
		{name: "only noise", raw: "panic: runtime error\ngoroutine 1 [running]:"},
		{name: "markers with nothing inside", raw: BeginMarker + "\n" + EndMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Extract(tt.raw)
			assert.True(t, set.Empty())
			assert.Equal(t, MethodNone, set.Method)
		})
	}
}
