package httpdetector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "moments": [
    {"title": "Set up project", "description": "init", "startTime": 12, "endTime": 40, "importance": 8,
     "category": "workflow", "reason": "core setup", "workflowContext": "bootstrap"}
  ],
  "summary": {"overview": "Bootstrapping a service", "totalMoments": 1, "primaryWorkflow": "setup"}
}`

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job-1.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o600))
	return path
}

func detectionRequest(t *testing.T) domain.DetectionRequest {
	return domain.DetectionRequest{
		JobID:         "job-1",
		VideoPath:     writeVideo(t),
		VideoDuration: 120,
		Transcript: domain.Transcript{
			Text:     "hello world",
			Segments: []domain.TranscriptSegment{{Start: 0, End: 2, Text: "hello world"}},
		},
		Options: domain.DetectionOptions{Prompt: "focus on commands", MaxMoments: 5},
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantParse bool
		wantCount int
	}{
		{name: "plain document", input: validDoc, wantCount: 1},
		{name: "json code fence", input: "```json\n" + validDoc + "\n```", wantCount: 1},
		{name: "bare code fence", input: "```\n" + validDoc + "\n```", wantCount: 1},
		{name: "empty moments is valid", input: `{"moments": []}`, wantCount: 0},
		{name: "extra fields are ignored", input: `{"model": "x", "moments": [{"title": "a", "startTime": 1, "endTime": 2, "importance": 5, "confidence": 0.9}]}`, wantCount: 1},
		{name: "empty body", input: "   ", wantParse: true},
		{name: "prose", input: "Here are the moments I found: ...", wantParse: true},
		{name: "missing moments", input: `{"summary": {"overview": "x"}}`, wantParse: true},
		{name: "wrong moment shape", input: `{"moments": [{"startTime": "soon"}]}`, wantParse: true},
		{name: "trailing prose", input: validDoc + " hope this helps", wantParse: true},
		{name: "truncated", input: validDoc[:60], wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode([]byte(tt.input))
			if tt.wantParse {
				assert.True(t, domain.IsParse(err), "expected ParseError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Moments, tt.wantCount)
			assert.Equal(t, domain.DetectionSourceDetector, result.Source)
		})
	}
}

func TestDecode_FillsTotalMoments(t *testing.T) {
	result, err := Decode([]byte(`{"moments": [{"title": "a", "startTime": 1, "endTime": 2, "importance": 5}]}`))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.TotalMoments)
}

func TestClient_Detect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "job-1", r.FormValue("jobId"))
		assert.Equal(t, "120.000", r.FormValue("duration"))
		assert.Equal(t, "5", r.FormValue("maxMoments"))

		var tr domain.Transcript
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("transcript")), &tr))
		assert.Equal(t, "hello world", tr.Text)

		f, _, err := r.FormFile("video")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "fake video bytes", string(data))

		_, _ = w.Write([]byte("```json\n" + validDoc + "\n```"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 5*time.Second)
	result, err := client.Detect(context.Background(), detectionRequest(t))

	require.NoError(t, err)
	require.Len(t, result.Moments, 1)
	assert.Equal(t, "Set up project", result.Moments[0].Title)
	assert.Equal(t, "setup", result.Summary.PrimaryWorkflow)
}

func TestClient_Detect_StatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		body       string
		wantStatus domain.CollaboratorStatus
		wantMsg    string
	}{
		{name: "rate limited", code: 429, body: `{"error": {"message": "quota exceeded"}}`, wantStatus: domain.StatusRateLimited, wantMsg: "quota exceeded"},
		{name: "unauthorized", code: 401, body: `{"error": "invalid api key"}`, wantStatus: domain.StatusAuthenticationFailed, wantMsg: "invalid api key"},
		{name: "forbidden", code: 403, body: "denied", wantStatus: domain.StatusAuthenticationFailed, wantMsg: "denied"},
		{name: "unavailable", code: 503, body: "", wantStatus: domain.StatusUnavailable, wantMsg: "Service Unavailable"},
		{name: "server error", code: 500, body: `{"message": "model crashed"}`, wantStatus: domain.StatusFailed, wantMsg: "model crashed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", time.Second).Detect(context.Background(), detectionRequest(t))

			ce, ok := domain.AsCollaborator(err)
			require.True(t, ok, "expected CollaboratorError, got %v", err)
			assert.Equal(t, tt.wantStatus, ce.Status)
			assert.Contains(t, ce.Message, tt.wantMsg)
		})
	}
}

func TestClient_Detect_MalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte("I could not analyze this video."))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Detect(context.Background(), detectionRequest(t))

	assert.True(t, domain.IsParse(err))
}

func TestClient_Detect_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 50*time.Millisecond).Detect(context.Background(), detectionRequest(t))

	ce, ok := domain.AsCollaborator(err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusTimeout, ce.Status)
}
