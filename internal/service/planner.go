package service

import (
	"cmp"
	"math"
	"slices"

	"github.com/bnema/recap/internal/domain"
)

// PlanComposition estimates the composed duration: the sum of segment
// durations, divided by the speed factor, plus one transition between each
// pair of segments, plus the intro card.
func PlanComposition(segments []domain.Segment, opts domain.CompositionOptions) domain.CompositionPlan {
	var total float64
	for _, s := range segments {
		total += s.Duration
	}
	if opts.Speed.Enabled && opts.Speed.Factor > 0 {
		total /= opts.Speed.Factor
	}
	if opts.Transitions.Enabled {
		total += float64(max(len(segments)-1, 0)) * opts.Transitions.Duration
	}
	if opts.Intro.Enabled {
		total += opts.Intro.Duration
	}

	return domain.CompositionPlan{
		TotalSegments:     len(segments),
		EstimatedDuration: total,
		Transitions:       opts.Transitions,
		Intro:             opts.Intro,
		Speed:             opts.Speed,
		Quality:           opts.Quality,
		Audio:             opts.Audio,
	}
}

// SortSegments returns a sorted copy. The default policy keeps extraction
// order.
func SortSegments(segments []domain.Segment, policy domain.SortPolicy) []domain.Segment {
	out := slices.Clone(segments)
	switch policy {
	case domain.SortPolicyImportance:
		slices.SortStableFunc(out, func(a, b domain.Segment) int {
			return cmp.Compare(b.Importance, a.Importance)
		})
	case domain.SortPolicyDuration:
		slices.SortStableFunc(out, func(a, b domain.Segment) int {
			return cmp.Compare(b.Duration, a.Duration)
		})
	case domain.SortPolicyChronological:
		slices.SortStableFunc(out, func(a, b domain.Segment) int {
			return cmp.Compare(a.OriginalStartTime, b.OriginalStartTime)
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Segment) int {
			return cmp.Compare(a.Index, b.Index)
		})
	}
	return out
}

// CompressionRatio is the percentage saved by the composition, rounded to
// two decimals. It is negative when transitions or the intro make the result
// longer than its inputs, and 0 when original is not positive.
func CompressionRatio(original, final float64) float64 {
	if original <= 0 {
		return 0
	}
	return math.Round((original-final)/original*100*100) / 100
}
