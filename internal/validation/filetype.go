// Package validation checks recording uploads before they enter the pipeline.
package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrDisallowedFileType  = errors.New("file type not allowed")
	ErrDisallowedExtension = errors.New("file extension not allowed")
)

// Only screen-recording containers are accepted.
var allowedMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/avi":        true,
}

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

const magicBytesBufferSize = 512

// ValidateMagicBytes sniffs the container from the first bytes of reader and
// rewinds it. It reports the detected MIME type and whether it is accepted.
func ValidateMagicBytes(reader io.ReadSeeker) (mime string, allowed bool, err error) {
	buf := make([]byte, magicBytesBufferSize)
	n, err := io.ReadFull(reader, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}
	if n == 0 {
		return "application/octet-stream", false, nil
	}
	buf = buf[:n]

	mime = detectContainer(buf)
	if mime == "" {
		mime = http.DetectContentType(buf)
	}
	return mime, allowedMIMETypes[mime], nil
}

func detectContainer(buf []byte) string {
	if len(buf) < 4 {
		return ""
	}

	// EBML header. The doctype follows a few bytes later.
	if buf[0] == 0x1A && buf[1] == 0x45 && buf[2] == 0xDF && buf[3] == 0xA3 {
		if strings.Contains(string(buf[:min(len(buf), 64)]), "matroska") {
			return "video/x-matroska"
		}
		return "video/webm"
	}

	// RIFF....AVI
	if len(buf) >= 12 && string(buf[0:4]) == "RIFF" && string(buf[8:12]) == "AVI " {
		return "video/avi"
	}

	// ISO base media: [size]["ftyp"][brand]
	if len(buf) >= 12 && string(buf[4:8]) == "ftyp" {
		switch string(buf[8:12]) {
		case "qt  ":
			return "video/quicktime"
		case "M4A ", "M4B ":
			return "audio/mp4"
		default:
			return "video/mp4"
		}
	}

	return ""
}

// ValidateExtension checks the extension of the name the client supplied.
func ValidateExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrDisallowedExtension, ext)
	}
	return nil
}

// ValidateVideoFile checks both the extension of name and the magic bytes of
// the file at path.
func ValidateVideoFile(path, name string) error {
	if err := ValidateExtension(name); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mime, allowed, err := ValidateMagicBytes(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrDisallowedFileType, mime)
	}
	return nil
}
