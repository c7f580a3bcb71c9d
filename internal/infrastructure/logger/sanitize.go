package logger

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFieldLength bounds collaborator payloads (ffmpeg stderr, detector
// responses) written to the log.
const MaxFieldLength = 512

var escapes = map[rune]string{
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
}

// SanitizeForLog rewrites control characters as visible escapes so that
// filenames, transcripts and tool output cannot forge log lines or drive
// the terminal. Printable Unicode is kept as is.
func SanitizeForLog(s string) string {
	clean := true
	for _, r := range s {
		if isControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case !isControl(r):
			b.WriteRune(r)
		case escapes[r] != "":
			b.WriteString(escapes[r])
		default:
			fmt.Fprintf(&b, `\x%02x`, r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// Truncate sanitizes s and cuts it to at most limit runes, marking the cut.
func Truncate(s string, limit int) string {
	s = SanitizeForLog(s)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s...(%d more)", string(runes[:limit]), len(runes)-limit)
}
