package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout resolves every per-job artifact path under the data directory.
// The job id is embedded in each name; it is the only collision guard.
type Layout struct {
	root string
}

func NewLayout(dataDir string) Layout {
	return Layout{root: dataDir}
}

func (l Layout) Root() string       { return l.root }
func (l Layout) Uploads() string    { return filepath.Join(l.root, "uploads") }
func (l Layout) Temp() string       { return filepath.Join(l.root, "temp") }
func (l Layout) Segments() string   { return filepath.Join(l.root, "segments") }
func (l Layout) Output() string     { return filepath.Join(l.root, "output") }
func (l Layout) Logs() string       { return filepath.Join(l.root, "logs") }
func (l Layout) Thumbnails() string { return filepath.Join(l.root, "thumbnails") }

// Ensure creates the top-level directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Uploads(), l.Temp(), l.Segments(), l.Output(), l.Logs(), l.Thumbnails()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (l Layout) UploadPath(jobID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return filepath.Join(l.Uploads(), jobID+ext)
}

func (l Layout) AudioPath(jobID string) string {
	return filepath.Join(l.Temp(), jobID+"_audio.wav")
}

// TempFiles lists every temp file a job may leave behind. The transcriber
// writes its JSON next to the audio file.
func (l Layout) TempFiles(jobID string) []string {
	return []string{
		l.AudioPath(jobID),
		filepath.Join(l.Temp(), jobID+"_audio.transcript.json"),
	}
}

func (l Layout) SegmentDir(jobID string) string {
	return filepath.Join(l.Segments(), jobID)
}

func (l Layout) ThumbnailDir(jobID string) string {
	return filepath.Join(l.Thumbnails(), jobID)
}

func (l Layout) SummaryPath(jobID string) string {
	return filepath.Join(l.Output(), "summary_"+jobID+".mp4")
}

func (l Layout) PreviewPath(jobID string) string {
	return filepath.Join(l.Output(), "summary_"+jobID+"_preview.mp4")
}

// SegmentFilename is the name of the index-th extracted clip (1-based).
func SegmentFilename(index int, title string) string {
	slug := slugify(title)
	if slug == "" {
		return fmt.Sprintf("segment_%02d.mp4", index)
	}
	return fmt.Sprintf("segment_%02d_%s.mp4", index, slug)
}

func ThumbnailFilename(index int) string {
	return fmt.Sprintf("segment_%02d.jpg", index)
}

const maxSlugLength = 40

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}
