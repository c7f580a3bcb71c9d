package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/service"
)

const keepAliveInterval = 15 * time.Second

// EventSource is where the SSE handler subscribes to live stage events.
type EventSource interface {
	Subscribe(jobID string) chan domain.StageEvent
	Unsubscribe(jobID string, ch chan domain.StageEvent)
}

type SSEHandler struct {
	events   EventSource
	pipeline PipelineService
}

func NewSSEHandler(events EventSource, pipeline PipelineService) *SSEHandler {
	return &SSEHandler{events: events, pipeline: pipeline}
}

// sseWrite writes an SSE event, handling multi-line data correctly.
func sseWrite(w http.ResponseWriter, eventName string, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\n", eventName)
	for _, line := range strings.Split(data, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sseJSON(w http.ResponseWriter, eventName string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	sseWrite(w, eventName, string(data))
	return nil
}

// sendKeepAlive writes an SSE comment to keep the connection active.
func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// sendStatus emits a "status" event unless the job has not moved since last.
// It returns the status the client now holds.
func sendStatus(w http.ResponseWriter, status domain.JobStatus, last *domain.JobStatus) (*domain.JobStatus, error) {
	if last != nil && last.EventCount == status.EventCount && last.State == status.State {
		return last, nil
	}
	if err := sseJSON(w, "status", status); err != nil {
		return last, err
	}
	return &status, nil
}

// Events replays the job history as "stage" events, then streams new ones as
// they are appended. Each stage event is followed by the updated "status".
func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := domain.ValidateJobID(id); err != nil {
			renderError(w, r, domain.NewValidationError("jobId", "%v", err))
			return
		}

		// Subscribe first so nothing appended during the replay is lost.
		ch := h.events.Subscribe(id)
		defer h.events.Unsubscribe(id, ch)

		view, err := h.pipeline.Status(r.Context(), id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			renderError(w, r, err)
			return
		}
		if view == nil {
			view = &service.JobView{Status: domain.JobStatus{JobID: id}}
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		var last *domain.JobStatus
		for _, e := range view.Events {
			_ = sseJSON(w, "stage", e)
		}
		current := view.Status
		last, _ = sendStatus(w, current, last)
		seen := len(view.Events)

		ctx := r.Context()
		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case event, ok := <-ch:
				if !ok {
					return
				}
				// Events published while the history was read are already sent.
				if event.Seq > 0 && event.Seq <= seen {
					continue
				}
				_ = sseJSON(w, "stage", event)

				current.Apply(event)
				last, _ = sendStatus(w, current, last)
			}
		}
	}
}
