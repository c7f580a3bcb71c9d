package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bnema/recap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_AppendAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "job-1", domain.ActivityProcessingStarted, map[string]any{"file": "demo.mp4"})
	require.NoError(t, err)
	_, err = store.Append(ctx, "job-1", domain.ActivityMetadataExtracted, map[string]any{"duration": 120.5})
	require.NoError(t, err)
	_, err = store.Append(ctx, "job-2", domain.ActivityProcessingStarted, nil)
	require.NoError(t, err)

	events, err := store.Query(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ActivityProcessingStarted, events[0].Activity)
	assert.Equal(t, "demo.mp4", events[0].Details["file"])
	assert.Equal(t, domain.ActivityMetadataExtracted, events[1].Activity)
	assert.Equal(t, 120.5, events[1].Details["duration"])
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestStore_SeqFollowsAppendOrderPerJob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, "job-1", domain.ActivityProcessingStarted, nil)
	require.NoError(t, err)
	other, err := store.Append(ctx, "job-2", domain.ActivityProcessingStarted, nil)
	require.NoError(t, err)
	second, err := store.Append(ctx, "job-1", domain.ActivityMetadataExtracted, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 1, other.Seq)
	assert.Equal(t, 2, second.Seq)

	events, err := store.Query(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []int{1, 2}, []int{events[0].Seq, events[1].Seq})
}

func TestStore_Query_UnknownJobIsEmpty(t *testing.T) {
	store := newTestStore(t)

	events, err := store.Query(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestStore_FindLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "job-1", domain.ActivityTranscriptionCompleted, map[string]any{"attempt": 1})
	require.NoError(t, err)
	_, err = store.Append(ctx, "job-1", domain.ActivityTranscriptionFailed, map[string]any{"error": "boom"})
	require.NoError(t, err)
	_, err = store.Append(ctx, "job-1", domain.ActivityTranscriptionCompleted, map[string]any{"attempt": 2})
	require.NoError(t, err)

	latest, err := store.FindLatest(ctx, "job-1", domain.ActivityTranscriptionCompleted)
	require.NoError(t, err)
	assert.Equal(t, float64(2), latest.Details["attempt"])

	_, err = store.FindLatest(ctx, "job-1", domain.ActivityMomentAnalysisCompleted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Append_RejectsInvalidInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "../etc", domain.ActivityProcessingStarted, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidJobID)

	_, err = store.Append(ctx, "job-1", domain.Activity("made_up"), nil)
	assert.Error(t, err)

	events, err := store.Query(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_StateTracksEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.State(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, a := range []domain.Activity{
		domain.ActivityProcessingStarted,
		domain.ActivityMetadataExtracted,
		domain.ActivityAudioExtractionCompleted,
	} {
		_, err := store.Append(ctx, "job-1", a, nil)
		require.NoError(t, err)
	}

	st, err := store.State(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateAudioExtracted, st.State)
	assert.Equal(t, 3, st.EventCount)
	assert.Equal(t, domain.ActivityAudioExtractionCompleted, st.LastActivity)

	_, err = store.Append(ctx, "job-1", domain.ActivityTranscriptionFailed, map[string]any{"error": "whisper crashed"})
	require.NoError(t, err)

	st, err = store.State(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, st.State)
	assert.Equal(t, "whisper crashed", st.LastError)

	events, err := store.Query(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeriveState(events), st.State)
}

func TestStore_ListJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "job-a", domain.ActivityProcessingStarted, nil)
	require.NoError(t, err)
	_, err = store.Append(ctx, "job-b", domain.ActivityProcessingStarted, nil)
	require.NoError(t, err)

	jobs, err := store.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	ids := []string{jobs[0].JobID, jobs[1].JobID}
	assert.ElementsMatch(t, []string{"job-a", "job-b"}, ids)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.Append(ctx, "job-1", domain.ActivityProcessingStarted, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	events, err := reopened.Query(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStore_ConcurrentAppendsForDifferentJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const jobs, perJob = 4, 10
	var wg sync.WaitGroup
	for j := 0; j < jobs; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			for i := 0; i < perJob; i++ {
				_, err := store.Append(ctx, fmt.Sprintf("job-%d", j), domain.ActivityTranscriptionStarted, map[string]any{"seq": i})
				assert.NoError(t, err)
			}
		}(j)
	}
	wg.Wait()

	for j := 0; j < jobs; j++ {
		events, err := store.Query(ctx, fmt.Sprintf("job-%d", j))
		require.NoError(t, err)
		require.Len(t, events, perJob)
		for i, e := range events {
			assert.Equal(t, float64(i), e.Details["seq"])
		}
	}
}
