package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple filename", input: "recording.mp4", expected: "recording.mp4"},
		{name: "spaces and dots", input: "sprint demo.v2.mov", expected: "sprint demo.v2.mov"},
		{name: "unicode is kept", input: "démo écran.webm", expected: "démo écran.webm"},
		{name: "double quote", input: `screen"cap.mp4`, expected: "screen_cap.mp4"},
		{name: "backslash", input: `screen\cap.mp4`, expected: "screen_cap.mp4"},
		{name: "CRLF", input: "screen\r\ncap.mp4", expected: "screen__cap.mp4"},
		{name: "NUL", input: "screen\x00cap.mp4", expected: "screen_cap.mp4"},
		{name: "DEL", input: "screen\x7Fcap.mp4", expected: "screen_cap.mp4"},
		{name: "colon", input: "10:30 standup.mkv", expected: "10_30 standup.mkv"},
		{name: "path traversal", input: "../../etc/passwd", expected: ".._.._etc_passwd"},
		{name: "windows traversal", input: `..\..\secret.mp4`, expected: ".._.._secret.mp4"},
		{name: "empty", input: "", expected: "recording"},
		{name: "whitespace only", input: "   ", expected: "recording"},
		{name: "unsafe only", input: `"/\:`, expected: "recording"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_LongNames(t *testing.T) {
	t.Run("extension is preserved", func(t *testing.T) {
		got := SanitizeFilename(strings.Repeat("a", 300) + ".webm")
		assert.Len(t, got, maxFilenameLength)
		assert.True(t, strings.HasSuffix(got, ".webm"))
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		got := SanitizeFilename(strings.Repeat("é", 200) + ".mp4")
		assert.LessOrEqual(t, len(got), maxFilenameLength)
		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, ".mp4"))
	})

	t.Run("no extension", func(t *testing.T) {
		got := SanitizeFilename(strings.Repeat("b", 400))
		assert.Len(t, got, maxFilenameLength)
	})
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `inline; filename="summary.mp4"`, ContentDisposition("summary.mp4", true))
	assert.Equal(t, `attachment; filename="summary.mp4"`, ContentDisposition("summary.mp4", false))
	assert.Equal(t, `attachment; filename="bad_name.mp4"`, ContentDisposition(`bad"name.mp4`, false))
	assert.Equal(t, `inline; filename="recording"`, ContentDisposition("", true))
}

func TestContentDisposition_NoHeaderInjection(t *testing.T) {
	for _, name := range []string{
		`injection"; evil=header`,
		"header\r\nX-Injected: value",
		`"both".mp4`,
	} {
		t.Run(name, func(t *testing.T) {
			got := ContentDisposition(name, true)
			value := strings.TrimSuffix(strings.TrimPrefix(got, `inline; filename="`), `"`)
			assert.NotContains(t, value, `"`)
			assert.NotContains(t, got, "\r")
			assert.NotContains(t, got, "\n")
		})
	}
}
