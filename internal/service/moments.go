package service

import (
	"cmp"
	"slices"

	"github.com/bnema/recap/internal/domain"
)

// FilterMoments selects and orders moments. Criteria apply in a fixed order:
// minimum importance, categories, maximum duration, then truncation to the
// most important MaxMoments, then the final sort. The input is not modified
// and an empty result is not an error.
func FilterMoments(moments []domain.Moment, opts domain.FilterOptions) []domain.Moment {
	out := make([]domain.Moment, 0, len(moments))
	for _, m := range moments {
		if opts.MinImportance != nil && m.Importance < *opts.MinImportance {
			continue
		}
		if len(opts.IncludeCategories) > 0 && !slices.Contains(opts.IncludeCategories, m.Category) {
			continue
		}
		if opts.MaxMomentDuration != nil && m.Duration() > *opts.MaxMomentDuration {
			continue
		}
		out = append(out, m)
	}

	if opts.MaxMoments != nil {
		limit := max(*opts.MaxMoments, 0)
		if len(out) > limit {
			slices.SortStableFunc(out, byImportanceDesc)
			out = out[:limit]
		}
	}

	SortMoments(out, opts.SortMomentsBy)
	return out
}

// SortMoments sorts in place. Unknown or empty orders sort chronologically.
func SortMoments(moments []domain.Moment, order domain.SortOrder) {
	switch order {
	case domain.SortImportance:
		slices.SortStableFunc(moments, byImportanceDesc)
	case domain.SortDuration:
		slices.SortStableFunc(moments, func(a, b domain.Moment) int {
			return cmp.Compare(b.Duration(), a.Duration())
		})
	default:
		slices.SortStableFunc(moments, func(a, b domain.Moment) int {
			return cmp.Compare(a.StartTime, b.StartTime)
		})
	}
}

func byImportanceDesc(a, b domain.Moment) int {
	return cmp.Compare(b.Importance, a.Importance)
}

// NormalizeMoments repairs raw detector output: timestamps in (1, 10) are
// read as minutes, then moments outside [0, videoDuration] or failing the
// moment schema are dropped. It returns the kept moments and the number
// discarded.
func NormalizeMoments(moments []domain.Moment, videoDuration float64) ([]domain.Moment, int) {
	kept := make([]domain.Moment, 0, len(moments))
	for _, m := range moments {
		m.StartTime = domain.CorrectTimestamp(m.StartTime)
		m.EndTime = domain.CorrectTimestamp(m.EndTime)
		if !m.InRange(videoDuration) {
			continue
		}
		if err := domain.Validate(m); err != nil {
			continue
		}
		kept = append(kept, m)
	}
	return kept, len(moments) - len(kept)
}
