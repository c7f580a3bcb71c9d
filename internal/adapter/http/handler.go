package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/service"
	"github.com/bnema/recap/internal/validation"
)

const (
	maxOptionsBytes = 1 << 20
	multipartMemory = 32 << 20
)

// PipelineService is the synchronous side of the pipeline.
type PipelineService interface {
	RunStage(ctx context.Context, jobID string, stage domain.Stage, rawOpts []byte) (any, error)
	Status(ctx context.Context, jobID string) (*service.JobView, error)
	ListJobs(ctx context.Context) ([]domain.JobStatus, error)
	Cleanup(ctx context.Context, jobID string) (*domain.CleanupReport, error)
}

// JobService queues uploaded recordings for the worker pool.
type JobService interface {
	Submit(sub service.Submission) (*domain.Run, error)
	Runs(jobID string) ([]domain.Run, error)
}

type Handlers struct {
	pipeline  PipelineService
	jobs      JobService
	layout    service.Layout
	maxUpload int64
}

func NewHandlers(pipeline PipelineService, jobs JobService, layout service.Layout, maxUpload int64) *Handlers {
	return &Handlers{
		pipeline:  pipeline,
		jobs:      jobs,
		layout:    layout,
		maxUpload: maxUpload,
	}
}

type RunReply struct {
	ID           int64            `json:"id"`
	JobID        string           `json:"jobId"`
	Mode         domain.RunMode   `json:"mode"`
	OriginalName string           `json:"originalName"`
	Status       domain.RunStatus `json:"status"`
	Error        string           `json:"error,omitempty"`
	Attempts     int64            `json:"attempts"`
}

func (RunReply) Render(http.ResponseWriter, *http.Request) error { return nil }

func newRunReply(run domain.Run) RunReply {
	return RunReply{
		ID:           run.ID,
		JobID:        run.JobID,
		Mode:         run.Mode,
		OriginalName: run.OriginalName,
		Status:       run.Status,
		Error:        run.ErrorMessage,
		Attempts:     run.Attempts,
	}
}

type JobReply struct {
	*service.JobView
	Runs []RunReply `json:"runs"`
}

func (JobReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type JobListReply struct {
	Jobs []domain.JobStatus `json:"jobs"`
}

func (JobListReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type StageReply struct {
	JobID  string       `json:"jobId"`
	Stage  domain.Stage `json:"stage"`
	Result any          `json:"result"`
}

func (StageReply) Render(http.ResponseWriter, *http.Request) error { return nil }

// Submit accepts a multipart upload ("file", optional "jobId", "mode" and
// JSON "options") and queues a run. It answers 202 with the queued run.
func (h *Handlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxOptionsBytes)

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = render.Render(w, r, errStatus(http.StatusRequestEntityTooLarge, "file too large"))
				return
			}
			_ = render.Render(w, r, errStatus(http.StatusBadRequest, "invalid multipart form"))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			_ = render.Render(w, r, errStatus(http.StatusBadRequest, "missing file"))
			return
		}
		defer file.Close() //nolint:errcheck

		if header.Size > h.maxUpload {
			_ = render.Render(w, r, errStatus(http.StatusRequestEntityTooLarge, "file too large"))
			return
		}

		opts := domain.DefaultRunOptions()
		if raw := r.FormValue("options"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &opts); err != nil {
				renderError(w, r, domain.NewValidationError("options", "%v", err))
				return
			}
		}

		tmpPath, err := h.saveUpload(file)
		if err != nil {
			logger.Error.Printf("failed to save upload %s: %v", logger.SanitizeForLog(header.Filename), err)
			_ = render.Render(w, r, errStatus(http.StatusInternalServerError, "failed to save upload"))
			return
		}

		run, err := h.jobs.Submit(service.Submission{
			JobID:        r.FormValue("jobId"),
			OriginalName: header.Filename,
			TempPath:     tmpPath,
			Mode:         domain.RunMode(r.FormValue("mode")),
			Options:      opts,
		})
		if err != nil {
			_ = os.Remove(tmpPath)
			renderError(w, r, err)
			return
		}

		render.Status(r, http.StatusAccepted)
		_ = render.Render(w, r, newRunReply(*run))
	}
}

// saveUpload copies the upload next to its final location so Submit can
// rename it.
func (h *Handlers) saveUpload(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.layout.Uploads(), 0755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(h.layout.Uploads(), "upload-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (h *Handlers) ListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := h.pipeline.ListJobs(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		if jobs == nil {
			jobs = []domain.JobStatus{}
		}
		_ = render.Render(w, r, JobListReply{Jobs: jobs})
	}
}

// Job returns the derived state, the event history and the queued runs. A job
// whose run has not been picked up yet has runs but no events.
func (h *Handlers) Job() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		runs, err := h.jobs.Runs(id)
		if err != nil {
			renderError(w, r, err)
			return
		}
		replies := make([]RunReply, 0, len(runs))
		for _, run := range runs {
			replies = append(replies, newRunReply(run))
		}

		view, err := h.pipeline.Status(r.Context(), id)
		switch {
		case errors.Is(err, domain.ErrNotFound) && len(runs) > 0:
			view = &service.JobView{
				Status: domain.JobStatus{JobID: id},
				Events: []domain.StageEvent{},
			}
		case err != nil:
			renderError(w, r, err)
			return
		}

		_ = render.Render(w, r, JobReply{JobView: view, Runs: replies})
	}
}

// RunStage runs one discrete stage. The request body holds the stage options
// as JSON and may be empty.
func (h *Handlers) RunStage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		stage, ok := domain.ParseStage(chi.URLParam(r, "stage"))
		if !ok {
			renderError(w, r, domain.NewValidationError("stage", "unknown stage %q", chi.URLParam(r, "stage")))
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxOptionsBytes))
		if err != nil {
			_ = render.Render(w, r, errStatus(http.StatusBadRequest, "failed to read options"))
			return
		}

		result, err := h.pipeline.RunStage(r.Context(), id, stage, raw)
		if err != nil {
			renderError(w, r, err)
			return
		}
		_ = render.Render(w, r, StageReply{JobID: id, Stage: stage, Result: result})
	}
}

// Summary streams the composed summary, or its preview with ?preview=1.
func (h *Handlers) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := domain.ValidateJobID(id); err != nil {
			renderError(w, r, domain.NewValidationError("jobId", "%v", err))
			return
		}

		path := h.layout.SummaryPath(id)
		name := fmt.Sprintf("summary_%s.mp4", id)
		if r.URL.Query().Get("preview") == "1" {
			path = h.layout.PreviewPath(id)
			name = fmt.Sprintf("summary_%s_preview.mp4", id)
		}

		f, err := os.Open(path)
		if err != nil {
			_ = render.Render(w, r, errStatus(http.StatusNotFound, "summary not found"))
			return
		}
		defer f.Close() //nolint:errcheck

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			_ = render.Render(w, r, errStatus(http.StatusNotFound, "summary not found"))
			return
		}

		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Disposition", validation.ContentDisposition(name, r.URL.Query().Get("download") != "1"))
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

func (h *Handlers) Cleanup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := h.pipeline.Cleanup(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		_ = render.Render(w, r, cleanupReply{report})
	}
}

type cleanupReply struct {
	*domain.CleanupReport
}

func (cleanupReply) Render(http.ResponseWriter, *http.Request) error { return nil }

func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
