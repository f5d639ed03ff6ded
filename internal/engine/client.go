// Package engine talks to the external image-analysis engine over HTTP.
// The engine is a black box: work is submitted once, then observed by
// polling until it reports a terminal status.
package engine

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
	"net/textproto"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
	"github.com/google/uuid"
)

// Sentinel errors for engine client failures. Unreachable and timeout are
// transient: callers must keep polling rather than treat them as job failure.
var (
	ErrEngineUnreachable = errors.New("analysis engine unreachable")
	ErrEngineTimeout     = errors.New("analysis engine timeout")
	ErrSubmitRejected    = errors.New("analysis engine rejected submission")
	ErrJobUnknown        = errors.New("analysis engine does not know this job")
)

// Client is the interface for the analysis engine boundary.
type Client interface {
	Submit(ctx context.Context, payload io.Reader, contentType, filename string) (uuid.UUID, error)
	Status(ctx context.Context, jobID uuid.UUID) (StatusResponse, error)
	Ready(ctx context.Context) error
}

// StatusResponse is one observation of a remote job.
type StatusResponse struct {
	Status   string             `json:"status"`
	Progress int                `json:"progress"`
	Message  string             `json:"message"`
	Result   *models.ScanResult `json:"result,omitempty"`
}

// HTTPClient implements Client against the engine's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new engine HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Submit uploads a scan and returns the job id minted by the engine.
// A non-2xx response means the submission was rejected outright and no job
// exists; transport failures are classified as transient.
func (c *HTTPClient) Submit(ctx context.Context, payload io.Reader, contentType, filename string) (uuid.UUID, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, payload); err != nil {
		return uuid.Nil, fmt.Errorf("copying payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return uuid.Nil, fmt.Errorf("closing multipart body: %w", err)
	}

	u := c.baseURL + "/analyze"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return uuid.Nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return uuid.Nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return uuid.Nil, fmt.Errorf("%w: status %d", ErrSubmitRejected, resp.StatusCode)
	}

	var submitResp struct {
		JobID uuid.UUID `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return uuid.Nil, fmt.Errorf("decoding submit response: %w", err)
	}
	if submitResp.JobID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: missing job_id", ErrSubmitRejected)
	}

	return submitResp.JobID, nil
}

// Status fetches the engine's current view of a job. Read-only and safe to
// call concurrently and repeatedly.
func (c *HTTPClient) Status(ctx context.Context, jobID uuid.UUID) (StatusResponse, error) {
	u := fmt.Sprintf("%s/analyze/status/%s", c.baseURL, jobID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return StatusResponse{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return StatusResponse{}, ErrJobUnknown
	}
	if resp.StatusCode != http.StatusOK {
		return StatusResponse{}, fmt.Errorf("%w: status %d", ErrEngineUnreachable, resp.StatusCode)
	}

	var statusResp StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return StatusResponse{}, fmt.Errorf("decoding status response: %w", err)
	}
	statusResp.Status = normalizeStatus(statusResp.Status)

	return statusResp, nil
}

func (c *HTTPClient) Ready(ctx context.Context) error {
	u := c.baseURL + "/ready"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: engine not ready (status %d)", ErrEngineUnreachable, resp.StatusCode)
	}

	return nil
}

// normalizeStatus maps engine status spellings onto the job model's states.
// Some engine builds report "processing" instead of "running".
func normalizeStatus(status string) string {
	switch status {
	case "processing", models.JobStatusRunning:
		return models.JobStatusRunning
	case models.JobStatusPending, models.JobStatusCompleted, models.JobStatusFailed:
		return status
	default:
		return models.JobStatusRunning
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
