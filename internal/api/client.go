// Package api is the HTTP client for the nlw-ai video service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guiibarros/nlw-ai/internal/domain"
	"github.com/guiibarros/nlw-ai/internal/logging"
)

// audioFileName is the fixed multipart filename for the uploaded track.
const audioFileName = "audio.mp3"

// Error is a submission failure against one of the service endpoints.
// StatusCode is zero when the request never produced a response.
type Error struct {
	Op         string `json:"op"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error formats submission failures for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %s (status=%d)", e.Op, e.Message, e.StatusCode)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Client submits audio tracks and transcription requests to the service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient builds a client for the given base URL. A zero timeout leaves
// requests unbounded; audio uploads can be large and slow.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.WithComponent("api"),
	}
}

// createVideoResponse mirrors the service payload for POST /videos.
type createVideoResponse struct {
	Video struct {
		ID string `json:"id"`
	} `json:"video"`
}

// CreateVideo uploads one audio track and returns the server-assigned
// video id. The id is required for the follow-up transcription request.
func (c *Client) CreateVideo(ctx context.Context, audio domain.AudioAsset) (string, error) {
	const op = "create video"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", audioFileName)
	if err != nil {
		return "", &Error{Op: op, Message: "failed to build multipart body", Err: err}
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", &Error{Op: op, Message: "failed to build multipart body", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &Error{Op: op, Message: "failed to finalize multipart body", Err: err}
	}

	url := c.baseURL + "/videos"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", &Error{Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	payload, status, err := c.do(req, op)
	if err != nil {
		return "", err
	}

	var parsed createVideoResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &Error{Op: op, StatusCode: status, Message: "malformed response body", Err: err}
	}
	if strings.TrimSpace(parsed.Video.ID) == "" {
		return "", &Error{Op: op, StatusCode: status, Message: "response is missing the video id"}
	}

	return parsed.Video.ID, nil
}

// transcriptionRequest mirrors the payload for the transcription endpoint.
// An empty prompt is omitted entirely, never sent as a placeholder.
type transcriptionRequest struct {
	Prompt string `json:"prompt,omitempty"`
}

// RequestTranscription asks the service to transcribe a created video,
// optionally guided by a free-text prompt. The response body is ignored.
func (c *Client) RequestTranscription(ctx context.Context, videoID, prompt string) error {
	const op = "request transcription"

	if strings.TrimSpace(videoID) == "" {
		return &Error{Op: op, Message: "video id is required"}
	}

	payload, err := json.Marshal(transcriptionRequest{Prompt: prompt})
	if err != nil {
		return &Error{Op: op, Message: "failed to encode request body", Err: err}
	}

	url := fmt.Sprintf("%s/videos/%s/transcription", c.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &Error{Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if _, _, err := c.do(req, op); err != nil {
		return err
	}
	return nil
}

// do executes one request and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, op string) ([]byte, int, error) {
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Op: op, Message: "request to " + req.URL.String() + " failed", Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("service request")

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "service rejected the request: " + bodyExcerpt(payload),
		}
	}

	return payload, resp.StatusCode, nil
}

// bodyExcerpt trims a response body down to an error-message sized hint.
func bodyExcerpt(body []byte) string {
	const max = 200

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty body"
	}
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
