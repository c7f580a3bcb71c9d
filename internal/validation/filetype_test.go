package validation

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mp4Magic  = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	movMagic  = []byte{0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p', 'q', 't', ' ', ' '}
	webmMagic = append([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x82, 0x84}, []byte("webm")...)
	mkvMagic  = append([]byte{0x1A, 0x45, 0xDF, 0xA3, 0xA3, 0x42, 0x82, 0x88}, []byte("matroska")...)
	aviMagic  = []byte{'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00, 'A', 'V', 'I', ' '}

	jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	wavMagic  = []byte{'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00, 'W', 'A', 'V', 'E'}
	m4aMagic  = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'M', '4', 'A', ' '}
	exeMagic  = []byte{0x4D, 0x5A, 0x90, 0x00, 0x03, 0x00, 0x00, 0x00}
)

// header pads a container signature to the sniffing window.
func header(magic []byte) []byte {
	buf := make([]byte, max(len(magic), magicBytesBufferSize))
	copy(buf, magic)
	return buf
}

func TestValidateMagicBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		mime    string
		allowed bool
	}{
		{"obs mp4", header(mp4Magic), "video/mp4", true},
		{"macos screen capture", header(movMagic), "video/quicktime", true},
		{"browser recorder webm", header(webmMagic), "video/webm", true},
		{"matroska", header(mkvMagic), "video/x-matroska", true},
		{"avi", header(aviMagic), "video/avi", true},
		{"jpeg screenshot", header(jpegMagic), "", false},
		{"wav audio", header(wavMagic), "", false},
		{"m4a audio", header(m4aMagic), "", false},
		{"windows exe", header(exeMagic), "", false},
		{"html page", []byte("<!DOCTYPE html><html><body></body></html>"), "", false},
		{"moments json", []byte(`{"moments": []}`), "", false},
		{"empty upload", nil, "application/octet-stream", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, allowed, err := ValidateMagicBytes(bytes.NewReader(tt.data))

			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
			assert.NotEmpty(t, mime)
			if tt.mime != "" {
				assert.Equal(t, tt.mime, mime)
			}
		})
	}
}

func TestValidateMagicBytes_ReaderPositionReset(t *testing.T) {
	data := append(header(mp4Magic), make([]byte, 1536)...)
	reader := bytes.NewReader(data)

	_, _, err := ValidateMagicBytes(reader)
	require.NoError(t, err)

	pos, err := reader.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestValidateMagicBytes_ShortFile(t *testing.T) {
	mime, allowed, err := ValidateMagicBytes(bytes.NewReader(mp4Magic))

	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, "video/mp4", mime)
}

func TestValidateExtension(t *testing.T) {
	for _, name := range []string{"a.mp4", "b.MOV", "c.webm", "d.mkv", "e.avi", "f.m4v"} {
		assert.NoError(t, ValidateExtension(name), name)
	}
	for _, name := range []string{"a.wav", "b.exe", "c", "d.mp4.php"} {
		assert.ErrorIs(t, ValidateExtension(name), ErrDisallowedExtension, name)
	}
}

func TestValidateVideoFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "upload.bin")
	require.NoError(t, os.WriteFile(good, header(mp4Magic), 0644))
	assert.NoError(t, ValidateVideoFile(good, "screen.mp4"))

	assert.ErrorIs(t, ValidateVideoFile(good, "screen.txt"), ErrDisallowedExtension)

	bad := filepath.Join(dir, "fake.mp4")
	require.NoError(t, os.WriteFile(bad, []byte("<?php system($_GET['c']); ?>"), 0644))
	assert.ErrorIs(t, ValidateVideoFile(bad, "fake.mp4"), ErrDisallowedFileType)

	assert.Error(t, ValidateVideoFile(filepath.Join(dir, "missing.mp4"), "missing.mp4"))
}
