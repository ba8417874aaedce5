package orbit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// httpClient handles HTTP communication with the Orbit server.
type httpClient struct {
	// client serves request/response calls and is bounded by the configured
	// timeout. stream serves streaming calls and has no client-level timeout;
	// streaming lifetimes are bounded by per-call contexts instead, because
	// http.Client.Timeout covers the whole body read.
	client *http.Client
	stream *http.Client

	baseURL   string
	apiKey    string
	sessionID string
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(cfg *clientConfig) *httpClient {
	h := &httpClient{
		baseURL:   cfg.baseURL,
		apiKey:    cfg.apiKey,
		sessionID: cfg.sessionID,
	}
	if cfg.httpClient != nil {
		h.client = cfg.httpClient
		h.stream = cfg.httpClient
	} else {
		h.client = &http.Client{Timeout: cfg.timeout}
		h.stream = &http.Client{}
	}
	return h
}

// setHeaders sets common headers and returns the generated request ID.
func (h *httpClient) setHeaders(req *http.Request) string {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", "orbit-go/1.0")
	if h.apiKey != "" {
		req.Header.Set("X-API-Key", h.apiKey)
	}
	if h.sessionID != "" {
		req.Header.Set("X-Session-ID", h.sessionID)
	}
	return requestID
}

// request makes a request/response call. body and result may be nil.
func (h *httpClient) request(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := h.setHeaders(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return h.classifyDialErr(ctx, requestID, err)
	}
	defer resp.Body.Close()

	return h.handleResponse(resp, requestID, result)
}

// requestStream makes a streaming request. The caller owns resp.Body.
func (h *httpClient) requestStream(ctx context.Context, method, path string, body any) (*http.Response, string, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	requestID := h.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.stream.Do(req)
	if err != nil {
		return nil, "", h.classifyDialErr(ctx, requestID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, "", h.errorFromResponse(resp, requestID)
	}

	return resp, requestID, nil
}

// uploadFile uploads a file as multipart form data without buffering it
// entirely in memory.
func (h *httpClient) uploadFile(ctx context.Context, path string, file io.Reader, filename string, fields map[string]string, result any) error {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()

		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			errCh <- fmt.Errorf("create form file: %w", err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			errCh <- fmt.Errorf("copy file: %w", err)
			return
		}

		for key, value := range fields {
			if err := writer.WriteField(key, value); err != nil {
				errCh <- fmt.Errorf("write field %s: %w", key, err)
				return
			}
		}

		errCh <- writer.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("create request: %w", err)
	}

	requestID := h.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return h.classifyDialErr(ctx, requestID, err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}

	return h.handleResponse(resp, requestID, result)
}

// handleResponse decodes the response, mapping non-2xx statuses to *Error.
func (h *httpClient) handleResponse(resp *http.Response, requestID string, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp.StatusCode, requestID, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// errorFromResponse builds an *Error from a non-2xx response body.
func (h *httpClient) errorFromResponse(resp *http.Response, requestID string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}
	return httpError(resp.StatusCode, requestID, body)
}

// httpError extracts the server's message from an error body. The server
// reports errors as {"detail": ...} or {"error": {"message": ...}}; anything
// else is passed through as raw text.
func httpError(status int, requestID string, body []byte) *Error {
	message := strings.TrimSpace(string(body))

	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if m := decodeErrorField(payload.Detail); m != "" {
			message = m
		} else if m := decodeErrorField(payload.Error); m != "" {
			message = m
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &Error{
		Kind:       ErrKindHTTP,
		Message:    message,
		HTTPStatus: status,
		RequestID:  requestID,
	}
}

// classifyDialErr maps a failed Do call to the error taxonomy: caller
// cancellation, deadline expiry, or plain transport failure.
func (h *httpClient) classifyDialErr(ctx context.Context, requestID string, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: ErrKindCanceled, Message: "request canceled", RequestID: requestID, err: context.Canceled}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: ErrKindTimeout, Message: "request timed out", RequestID: requestID, err: context.DeadlineExceeded}
	default:
		return &Error{Kind: ErrKindTransport, Message: "could not connect to server: " + err.Error(), RequestID: requestID, err: err}
	}
}
