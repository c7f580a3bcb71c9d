package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
)

// ErrResponse is the JSON body of every failed request.
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	Message        string `json:"error"`
	Field          string `json:"field,omitempty"`
	Collaborator   string `json:"collaborator,omitempty"`
	Status         string `json:"status,omitempty"`
	Required       string `json:"required,omitempty"`
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errStatus(code int, msg string) *ErrResponse {
	return &ErrResponse{HTTPStatusCode: code, Message: msg}
}

// errResponse maps the error taxonomy of the pipeline onto HTTP statuses.
func errResponse(err error) *ErrResponse {
	var (
		ve *domain.ValidationError
		pe *domain.PrerequisiteMissingError
	)
	switch {
	case errors.As(err, &ve):
		return &ErrResponse{HTTPStatusCode: http.StatusBadRequest, Message: ve.Message, Field: ve.Field}
	case errors.As(err, &pe):
		return &ErrResponse{HTTPStatusCode: http.StatusConflict, Message: pe.Error(), Required: string(pe.Required)}
	case errors.Is(err, domain.ErrNotFound):
		return errStatus(http.StatusNotFound, "job not found")
	case domain.IsParse(err):
		return errStatus(http.StatusBadGateway, err.Error())
	}

	if ce, ok := domain.AsCollaborator(err); ok {
		resp := &ErrResponse{
			HTTPStatusCode: http.StatusBadGateway,
			Message:        err.Error(),
			Collaborator:   ce.Collaborator,
			Status:         string(ce.Status),
		}
		switch ce.Status {
		case domain.StatusRateLimited:
			resp.HTTPStatusCode = http.StatusTooManyRequests
		case domain.StatusTimeout:
			resp.HTTPStatusCode = http.StatusGatewayTimeout
		case domain.StatusUnavailable:
			resp.HTTPStatusCode = http.StatusServiceUnavailable
		}
		return resp
	}

	logger.Error.Printf("unhandled request error: %v", err)
	return errStatus(http.StatusInternalServerError, "internal error")
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	_ = render.Render(w, r, errResponse(err))
}
