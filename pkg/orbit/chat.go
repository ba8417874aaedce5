package orbit

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"
)

// stopTimeout bounds the best-effort server-side stop call issued when a
// stream is canceled locally.
const stopTimeout = 5 * time.Second

// ChatService provides chat inference operations.
type ChatService struct {
	client *Client
}

// Chat performs a non-streaming chat request and returns the complete
// response body.
func (s *ChatService) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body := struct {
		*ChatRequest
		Stream bool `json:"stream"`
	}{req, false}

	var resp ChatResponse
	if err := s.client.http.request(ctx, http.MethodPost, "/v1/chat", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatStream performs a streaming chat request and returns a single-use
// iterator over the resulting events. Each invocation issues exactly one
// network request and owns its own buffer and cancellation; concurrent
// invocations are fully independent.
//
// The invocation is bounded by the configured stream timeout layered on the
// caller's context. Timeout and caller cancellation surface as *Error values
// with distinct kinds. When the stream ends without an explicit terminal
// frame but text was produced, a Completion event is synthesized so callers
// can always rely on a terminal event.
//
// If req.Stream is explicitly false, the call takes the non-streaming path
// instead: one request, then a single TextDelta with Done set (or nothing
// when the body carries no text).
//
// Example:
//
//	for event, err := range client.Chat.ChatStream(ctx, req) {
//		if err != nil {
//			return err
//		}
//		switch event.Type {
//		case orbit.EventTextDelta:
//			fmt.Print(event.Text)
//		case orbit.EventCompletion:
//			fmt.Println()
//		}
//	}
func (s *ChatService) ChatStream(ctx context.Context, req *ChatRequest) iter.Seq2[*StreamEvent, error] {
	return func(yield func(*StreamEvent, error) bool) {
		if req.Stream != nil && !*req.Stream {
			s.streamFallback(ctx, req, yield)
			return
		}

		parent := ctx
		ctx, cancel := context.WithTimeout(parent, s.client.config.streamTimeout)
		defer cancel()

		body := struct {
			*ChatRequest
			Stream bool `json:"stream"`
		}{req, true}

		resp, requestID, err := s.client.http.requestStream(ctx, http.MethodPost, "/v1/chat", body)
		if err != nil {
			yield(nil, err)
			return
		}
		defer resp.Body.Close()

		var (
			frames   = newFrameBuffer()
			chunk    = make([]byte, 4096)
			serverID string // request identifier echoed by the server, for Stop
			sawText  bool
		)

		for {
			n, readErr := resp.Body.Read(chunk)
			if n > 0 {
				frames.append(chunk[:n])
				if frames.takeTruncated() {
					slog.Warn("orbit: stream buffer exceeded ceiling, dropped oldest half",
						"request_id", requestID, "retained", frames.len())
				}

				for line := range frames.drain() {
					res := classifyFrame(line)
					if serverID == "" && res.requestID != "" {
						serverID = res.requestID
					}
					for _, ev := range res.events {
						if ev.Type == EventTextDelta {
							sawText = true
						}
						if !yield(ev, nil) {
							// Consumer stopped early; treat like a local cancel.
							s.stopAsync(serverID)
							return
						}
					}
					if res.err != nil {
						yield(nil, res.err)
						return
					}
					if res.done {
						return
					}
				}
			}

			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					// Servers that close the connection without [DONE] or
					// done:true still owe the caller a terminal event.
					if sawText {
						yield(&StreamEvent{Type: EventCompletion}, nil)
					}
					return
				}
				err := s.streamReadError(parent, ctx, requestID, readErr)
				if e, ok := AsError(err); ok && (e.Kind == ErrKindTimeout || e.Kind == ErrKindCanceled) {
					s.stopAsync(serverID)
				}
				yield(nil, err)
				return
			}
		}
	}
}

// streamFallback serves ChatStream's explicit non-streaming mode: the whole
// body arrives at once and is surfaced as one terminal text delta.
func (s *ChatService) streamFallback(ctx context.Context, req *ChatRequest, yield func(*StreamEvent, error) bool) {
	resp, err := s.Chat(ctx, req)
	if err != nil {
		yield(nil, err)
		return
	}
	if resp.Response == "" && resp.Audio == "" {
		return
	}
	yield(&StreamEvent{
		Type:        EventTextDelta,
		Text:        resp.Response,
		Done:        true,
		Audio:       resp.Audio,
		AudioFormat: resp.AudioFormat,
		Sources:     resp.Sources,
	}, nil)
}

// streamReadError maps a mid-stream read failure to the error taxonomy.
// The caller's context is checked first so "I canceled" is never reported
// as a timeout, no matter which signal the transport observed.
func (s *ChatService) streamReadError(parent, ctx context.Context, requestID string, err error) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return &Error{Kind: ErrKindCanceled, Message: "stream canceled by caller", RequestID: requestID, err: context.Canceled}
	case errors.Is(parent.Err(), context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: ErrKindTimeout, Message: "stream timed out waiting for server", RequestID: requestID, err: context.DeadlineExceeded}
	default:
		return &Error{Kind: ErrKindTransport, Message: "stream read failed: " + err.Error(), RequestID: requestID, err: err}
	}
}

// Stop asks the server to abandon generation for an in-flight request.
// The assembler calls it fire-and-forget on cancellation; it is exported for
// callers that track request identifiers themselves.
func (s *ChatService) Stop(ctx context.Context, requestID string) error {
	body := struct {
		RequestID string `json:"request_id"`
	}{requestID}
	return s.client.http.request(ctx, http.MethodPost, "/v1/chat/stop", body, nil)
}

// stopAsync issues Stop in the background with its own deadline. Failure is
// logged and discarded; it must never mask the local cancellation outcome.
func (s *ChatService) stopAsync(requestID string) {
	if requestID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := s.Stop(ctx, requestID); err != nil {
			slog.Debug("orbit: best-effort stop failed", "request_id", requestID, "err", err)
		}
	}()
}
