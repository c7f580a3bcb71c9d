package service

import (
	"fmt"
	"strings"

	"github.com/bnema/recap/internal/domain"
)

// Fallback reasons recorded in DetectionResult.FallbackReason.
const (
	FallbackNotConfigured = "detector_not_configured"
	FallbackParseError    = "parse_error"
	FallbackNoMoments     = "no_valid_moments"
)

const (
	minSectionSeconds  = 5.0
	maxHeuristicTitle  = 8
	maxHeuristicDetail = 200
)

// Phrases that usually open a new topic in a narrated screen recording.
var topicMarkers = []string{
	"first", "next", "now", "then", "let's", "lets", "let me", "step",
	"moving on", "another", "finally", "okay so", "ok so", "so now",
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{domain.CategoryProblemSolving, []string{"error", "bug", "fix", "issue", "problem", "broken", "fails"}},
	{domain.CategoryDemonstration, []string{"show", "demo", "click", "open", "here we", "you can see"}},
	{domain.CategoryExplanation, []string{"because", "explain", "means", "basically", "the reason"}},
	{domain.CategoryInsight, []string{"important", "note", "tip", "trick", "remember"}},
}

// HeuristicMoments builds moments without the detector. It splits the
// transcript where a segment opens with a topic marker; when that yields
// fewer than two usable sections it splits the recording into three equal
// parts.
func HeuristicMoments(tr domain.Transcript, videoDuration float64) ([]domain.Moment, domain.MomentSummary) {
	end := videoDuration
	if _, spanEnd := tr.Span(); end <= 0 {
		end = spanEnd
	}

	moments := topicSections(tr, end)
	primary := "topic sections"
	if len(moments) < 2 {
		moments = equalThirds(end)
		primary = "equal thirds"
	}

	return moments, domain.MomentSummary{
		Overview:        fmt.Sprintf("Heuristic selection of %d sections from the transcript", len(moments)),
		TotalMoments:    len(moments),
		PrimaryWorkflow: primary,
	}
}

func topicSections(tr domain.Transcript, end float64) []domain.Moment {
	var starts []int
	for i, seg := range tr.Segments {
		if i == 0 || opensTopic(seg.Text) {
			starts = append(starts, i)
		}
	}
	if len(starts) < 2 {
		return nil
	}

	var moments []domain.Moment
	for n, i := range starts {
		start := tr.Segments[i].Start
		stop := end
		if n+1 < len(starts) {
			stop = tr.Segments[starts[n+1]].Start
		}
		if stop > end {
			stop = end
		}
		if stop-start < minSectionSeconds {
			continue
		}

		var text []string
		last := len(tr.Segments)
		if n+1 < len(starts) {
			last = starts[n+1]
		}
		for _, seg := range tr.Segments[i:last] {
			text = append(text, strings.TrimSpace(seg.Text))
		}
		body := strings.Join(text, " ")

		importance := 7
		if len(moments) == 0 || n == len(starts)-1 {
			importance = 8
		}
		moments = append(moments, domain.Moment{
			Title:       sectionTitle(len(moments)+1, tr.Segments[i].Text),
			Description: clip(body, maxHeuristicDetail),
			StartTime:   start,
			EndTime:     stop,
			Importance:  importance,
			Category:    categorize(body),
			Reason:      "topic change in narration",
		})
	}
	return moments
}

func equalThirds(end float64) []domain.Moment {
	if end <= 0 {
		return nil
	}
	third := end / 3
	parts := []struct {
		title      string
		category   string
		importance int
	}{
		{"Opening", domain.CategoryOverview, 6},
		{"Main content", domain.CategoryWorkflow, 8},
		{"Wrap-up", domain.CategoryInsight, 7},
	}
	moments := make([]domain.Moment, 0, len(parts))
	for i, p := range parts {
		stop := third * float64(i+1)
		if i == len(parts)-1 {
			stop = end
		}
		moments = append(moments, domain.Moment{
			Title:      p.title,
			StartTime:  third * float64(i),
			EndTime:    stop,
			Importance: p.importance,
			Category:   p.category,
			Reason:     "equal split of the recording",
		})
	}
	return moments
}

func opensTopic(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, marker := range topicMarkers {
		if strings.HasPrefix(t, marker+" ") || strings.HasPrefix(t, marker+",") {
			return true
		}
	}
	return false
}

func categorize(text string) string {
	t := strings.ToLower(text)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(t, w) {
				return c.category
			}
		}
	}
	return domain.CategoryWorkflow
}

func sectionTitle(n int, text string) string {
	words := strings.Fields(text)
	if len(words) > maxHeuristicTitle {
		words = words[:maxHeuristicTitle]
	}
	if len(words) == 0 {
		return fmt.Sprintf("Section %d", n)
	}
	return fmt.Sprintf("Section %d: %s", n, strings.Join(words, " "))
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
