package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/recap/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func moment(title string, start, end float64, importance int, category string) domain.Moment {
	return domain.Moment{Title: title, StartTime: start, EndTime: end, Importance: importance, Category: category}
}

func titles(moments []domain.Moment) []string {
	out := make([]string, 0, len(moments))
	for _, m := range moments {
		out = append(out, m.Title)
	}
	return out
}

func importances(moments []domain.Moment) []int {
	out := make([]int, 0, len(moments))
	for _, m := range moments {
		out = append(out, m.Importance)
	}
	return out
}

// eight moments, one every 20s, with importances 9,3,7,8,2,6,5,4
func rankedMoments() []domain.Moment {
	var moments []domain.Moment
	for i, imp := range []int{9, 3, 7, 8, 2, 6, 5, 4} {
		start := float64(i * 20)
		moments = append(moments, moment(string(rune('a'+i)), start, start+15, imp, domain.CategoryWorkflow))
	}
	return moments
}

func TestFilterMoments_MinImportanceMaxMomentsByImportance(t *testing.T) {
	got := FilterMoments(rankedMoments(), domain.FilterOptions{
		MinImportance: ptr(5),
		MaxMoments:    ptr(3),
		SortMomentsBy: domain.SortImportance,
	})

	assert.Equal(t, []int{9, 8, 7}, importances(got))
}

func TestFilterMoments_DefaultSortIsChronological(t *testing.T) {
	got := FilterMoments(rankedMoments(), domain.FilterOptions{MinImportance: ptr(5), MaxMoments: ptr(3)})

	// the three most important, back in timeline order
	assert.Equal(t, []string{"a", "c", "d"}, titles(got))
}

func TestFilterMoments_Categories(t *testing.T) {
	moments := []domain.Moment{
		moment("setup", 0, 10, 5, domain.CategoryWorkflow),
		moment("bug", 20, 40, 8, domain.CategoryProblemSolving),
		moment("why", 50, 60, 6, domain.CategoryExplanation),
	}

	got := FilterMoments(moments, domain.FilterOptions{
		IncludeCategories: []string{domain.CategoryProblemSolving, domain.CategoryExplanation},
	})

	assert.Equal(t, []string{"bug", "why"}, titles(got))
}

func TestFilterMoments_MaxMomentDuration(t *testing.T) {
	moments := []domain.Moment{
		moment("short", 0, 10, 5, ""),
		moment("exact", 20, 50, 5, ""),
		moment("long", 60, 120, 9, ""),
	}

	got := FilterMoments(moments, domain.FilterOptions{MaxMomentDuration: ptr(30.0)})

	assert.Equal(t, []string{"short", "exact"}, titles(got))
}

func TestFilterMoments_DurationSort(t *testing.T) {
	moments := []domain.Moment{
		moment("ten", 0, 10, 5, ""),
		moment("forty", 20, 60, 5, ""),
		moment("twenty", 70, 90, 5, ""),
	}

	got := FilterMoments(moments, domain.FilterOptions{SortMomentsBy: domain.SortDuration})

	assert.Equal(t, []string{"forty", "twenty", "ten"}, titles(got))
}

func TestFilterMoments_TruncationIsStableOnTies(t *testing.T) {
	moments := []domain.Moment{
		moment("first", 0, 5, 7, ""),
		moment("second", 10, 15, 7, ""),
		moment("third", 20, 25, 7, ""),
	}

	got := FilterMoments(moments, domain.FilterOptions{MaxMoments: ptr(2)})

	assert.Equal(t, []string{"first", "second"}, titles(got))
}

func TestFilterMoments_Idempotent(t *testing.T) {
	opts := []domain.FilterOptions{
		{},
		{MinImportance: ptr(4), MaxMoments: ptr(4), SortMomentsBy: domain.SortImportance},
		{MaxMoments: ptr(5), SortMomentsBy: domain.SortDuration},
		{MinImportance: ptr(6), SortMomentsBy: domain.SortChronological},
	}

	for _, o := range opts {
		once := FilterMoments(rankedMoments(), o)
		twice := FilterMoments(once, o)
		assert.Equal(t, once, twice)
	}
}

func TestFilterMoments_EmptyResultAndInputUntouched(t *testing.T) {
	input := rankedMoments()
	before := append([]domain.Moment(nil), input...)

	got := FilterMoments(input, domain.FilterOptions{MinImportance: ptr(10), SortMomentsBy: domain.SortImportance})

	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, before, input)
}

func TestNormalizeMoments_CorrectsMinuteTimestamps(t *testing.T) {
	raw := []domain.Moment{moment("intro", 1.5, 3.2, 6, "")}

	got, discarded := NormalizeMoments(raw, 300)

	require.Len(t, got, 1)
	assert.Equal(t, 0, discarded)
	assert.InDelta(t, 90, got[0].StartTime, 1e-9)
	assert.InDelta(t, 192, got[0].EndTime, 1e-9)
}

func TestNormalizeMoments_DiscardsInvalid(t *testing.T) {
	raw := []domain.Moment{
		moment("ok", 0, 12, 5, ""),
		moment("past end", 100, 130, 5, ""),
		moment("reversed", 40, 20, 5, ""),
		moment("", 10, 20, 5, ""),
		moment("too important", 10, 20, 11, ""),
		moment("negative", -5, 20, 5, ""),
		moment("boundary", 0.5, 1, 3, ""),
	}

	got, discarded := NormalizeMoments(raw, 120)

	assert.Equal(t, []string{"ok", "boundary"}, titles(got))
	assert.Equal(t, 5, discarded)
}
