package sqlite

import (
	"testing"

	"github.com/bnema/recap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunQueue_EnqueueClaimComplete(t *testing.T) {
	q := NewRunQueue(newTestStore(t))

	queued, err := q.Enqueue(&domain.Run{
		JobID:        "job-1",
		Mode:         domain.RunModeFull,
		SourcePath:   "/data/uploads/job-1.mp4",
		OriginalName: "demo.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPending, queued.Status)
	assert.Equal(t, "{}", queued.OptionsJSON)

	claimed, err := q.Claim()
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, queued.ID, claimed.ID)
	assert.Equal(t, domain.RunStatusRunning, claimed.Status)
	assert.Equal(t, int64(1), claimed.Attempts)
	assert.True(t, claimed.StartedAt.Valid)

	next, err := q.Claim()
	require.NoError(t, err)
	assert.Nil(t, next)

	require.NoError(t, q.Complete(claimed.ID))

	runs, err := q.ListByJob("job-1")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusDone, runs[0].Status)
	assert.True(t, runs[0].CompletedAt.Valid)
}

func TestRunQueue_ClaimIsFIFO(t *testing.T) {
	q := NewRunQueue(newTestStore(t))

	first, err := q.Enqueue(&domain.Run{JobID: "job-1", Mode: domain.RunModeFull, SourcePath: "a.mp4"})
	require.NoError(t, err)
	_, err = q.Enqueue(&domain.Run{JobID: "job-2", Mode: domain.RunModeSummarize, SourcePath: "b.mp4"})
	require.NoError(t, err)

	claimed, err := q.Claim()
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID)
}

func TestRunQueue_FailAndResetStalled(t *testing.T) {
	q := NewRunQueue(newTestStore(t))

	_, err := q.Enqueue(&domain.Run{JobID: "job-1", Mode: domain.RunModeFull, SourcePath: "a.mp4"})
	require.NoError(t, err)
	_, err = q.Enqueue(&domain.Run{JobID: "job-2", Mode: domain.RunModeFull, SourcePath: "b.mp4"})
	require.NoError(t, err)

	failed, err := q.Claim()
	require.NoError(t, err)
	require.NoError(t, q.Fail(failed.ID, "ffmpeg: exit status 1"))

	stalled, err := q.Claim()
	require.NoError(t, err)
	require.NotNil(t, stalled)

	require.NoError(t, q.ResetStalled())

	again, err := q.Claim()
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, stalled.ID, again.ID)
	assert.Equal(t, int64(2), again.Attempts)

	runs, err := q.ListByJob("job-1")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	assert.Equal(t, "ffmpeg: exit status 1", runs[0].ErrorMessage)
}

func TestRunQueue_Enqueue_RejectsInvalidJobID(t *testing.T) {
	q := NewRunQueue(newTestStore(t))

	_, err := q.Enqueue(&domain.Run{JobID: "bad id", Mode: domain.RunModeFull})

	assert.ErrorIs(t, err, domain.ErrInvalidJobID)
}
