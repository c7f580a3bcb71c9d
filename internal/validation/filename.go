package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const maxFilenameLength = 255

// Characters that break Content-Disposition quoting or act as path
// separators.
var unsafeChars = map[rune]bool{
	'"':  true,
	'\\': true,
	'/':  true,
	':':  true,
}

// SanitizeFilename makes a client-supplied name safe to log, to record in the
// job log and to send back in a Content-Disposition header. Unsafe and
// control characters become underscores, Unicode is kept, and the result is
// capped at 255 bytes with its extension preserved. Names with nothing left
// become "recording".
func SanitizeFilename(name string) string {
	result := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 || unsafeChars[r] {
			return '_'
		}
		return r
	}, name)
	result = strings.TrimSpace(result)

	if strings.Trim(result, "_") == "" {
		return "recording"
	}
	if len(result) > maxFilenameLength {
		result = truncatePreservingExtension(result)
	}
	return result
}

func truncatePreservingExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) >= maxFilenameLength {
		return truncateToBytes(name, maxFilenameLength)
	}
	base := strings.TrimSuffix(name, ext)
	return truncateToBytes(base, maxFilenameLength-len(ext)) + ext
}

// truncateToBytes cuts s to at most n bytes on a rune boundary.
func truncateToBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ContentDisposition formats a header value for serving a job artifact.
func ContentDisposition(filename string, inline bool) string {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	return fmt.Sprintf("%s; filename=%q", disposition, SanitizeFilename(filename))
}
