package httpdetector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/port"
)

const (
	collaborator    = "moment-detector"
	maxResponseSize = 8 << 20
)

// Client sends the video and its timestamped transcript to a multimodal
// moment detection service over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Detect(ctx context.Context, req domain.DetectionRequest) (*domain.DetectionResult, error) {
	video, err := os.Open(req.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer video.Close()

	body, contentType := streamForm(video, req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build detector request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, data)
	}

	result, err := Decode(data)
	if err != nil {
		logger.Warn.Printf("detector response for job %s not decodable: %s", req.JobID, logger.Truncate(string(data), logger.MaxFieldLength))
		return nil, err
	}
	return result, nil
}

// streamForm writes the multipart body through a pipe so the video is never
// buffered in memory.
func streamForm(video *os.File, req domain.DetectionRequest) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeForm(mw, video, req)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func writeForm(mw *multipart.Writer, video io.Reader, req domain.DetectionRequest) error {
	transcript, err := json.Marshal(req.Transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	fields := map[string]string{
		"jobId":      req.JobID,
		"duration":   strconv.FormatFloat(req.VideoDuration, 'f', 3, 64),
		"transcript": string(transcript),
		"prompt":     req.Options.Prompt,
	}
	if req.Options.MaxMoments > 0 {
		fields["maxMoments"] = strconv.Itoa(req.Options.MaxMoments)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile("video", filepath.Base(req.VideoPath))
	if err != nil {
		return fmt.Errorf("create video part: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return fmt.Errorf("copy video: %w", err)
	}
	return nil
}

func transportError(err error) error {
	status := domain.StatusUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		status = domain.StatusTimeout
	}
	return &domain.CollaboratorError{
		Collaborator: collaborator,
		Op:           "detect",
		Status:       status,
		Message:      err.Error(),
		Err:          err,
	}
}

// ClassifyStatus maps an HTTP status code onto a collaborator status.
func ClassifyStatus(code int) domain.CollaboratorStatus {
	switch code {
	case http.StatusTooManyRequests:
		return domain.StatusRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.StatusAuthenticationFailed
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return domain.StatusTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return domain.StatusUnavailable
	}
	return domain.StatusFailed
}

func statusError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var envelope struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		switch e := envelope.Error.(type) {
		case string:
			msg = e
		case map[string]any:
			if m, ok := e["message"].(string); ok {
				msg = m
			}
		}
		if envelope.Message != "" {
			msg = envelope.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &domain.CollaboratorError{
		Collaborator: collaborator,
		Op:           "detect",
		Status:       ClassifyStatus(code),
		Message:      fmt.Sprintf("HTTP %d: %s", code, msg),
	}
}

type response struct {
	Moments *[]domain.Moment     `json:"moments"`
	Summary domain.MomentSummary `json:"summary"`
}

// Decode strictly decodes a detector response. Markdown code fences around
// the document are tolerated; anything else that is not a single JSON object
// with a "moments" array is a *domain.ParseError.
func Decode(data []byte) (*domain.DetectionResult, error) {
	doc := stripFences(data)
	if len(doc) == 0 {
		return nil, &domain.ParseError{Source: collaborator, Reason: "empty response"}
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	var resp response
	if err := dec.Decode(&resp); err != nil {
		return nil, &domain.ParseError{Source: collaborator, Reason: "response is not a moment document", Err: err}
	}
	if dec.More() {
		return nil, &domain.ParseError{Source: collaborator, Reason: "trailing data after moment document"}
	}
	if resp.Moments == nil {
		return nil, &domain.ParseError{Source: collaborator, Reason: `missing "moments" array`}
	}

	result := &domain.DetectionResult{
		Moments: *resp.Moments,
		Summary: resp.Summary,
		Source:  domain.DetectionSourceDetector,
	}
	if result.Summary.TotalMoments == 0 {
		result.Summary.TotalMoments = len(result.Moments)
	}
	return result, nil
}

func stripFences(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

var _ port.MomentDetector = (*Client)(nil)
