package orbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, opts...)
}

// sseHandler writes the given frames as an event stream and returns.
func sseHandler(frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			fmt.Fprintf(w, "%s\n\n", frame)
			flusher.Flush()
		}
	}
}

func collect(seq iter.Seq2[*StreamEvent, error]) ([]*StreamEvent, error) {
	var events []*StreamEvent
	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func TestChatStream(t *testing.T) {
	client := newTestClient(t, sseHandler(
		`data: {"response":"Hel"}`,
		`data: {"response":"lo"}`,
		`data: {"done":true}`,
	))

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Type != EventTextDelta || events[0].Text != "Hel" {
		t.Fatalf("events[0] = %+v", events[0])
	}
	if events[1].Type != EventTextDelta || events[1].Text != "lo" {
		t.Fatalf("events[1] = %+v", events[1])
	}
	if events[2].Type != EventCompletion {
		t.Fatalf("events[2] = %+v", events[2])
	}
}

func TestChatStreamRequestShape(t *testing.T) {
	var (
		gotAccept    string
		gotAPIKey    string
		gotSessionID string
		gotRequestID string
		gotBody      map[string]any
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAPIKey = r.Header.Get("X-API-Key")
		gotSessionID = r.Header.Get("X-Session-ID")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewDecoder(r.Body).Decode(&gotBody)
		sseHandler(`data: [DONE]`)(w, r)
	}, WithAPIKey("orbit_key"), WithSessionID("sess-1"))

	_, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		ThreadID: "t-1",
	}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if gotAccept != "text/event-stream" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotAPIKey != "orbit_key" || gotSessionID != "sess-1" {
		t.Errorf("auth headers = %q / %q", gotAPIKey, gotSessionID)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID not set")
	}
	if gotBody["stream"] != true {
		t.Errorf("stream field = %v, want true", gotBody["stream"])
	}
	if gotBody["thread_id"] != "t-1" {
		t.Errorf("thread_id = %v", gotBody["thread_id"])
	}
}

func TestChatStreamProtocolError(t *testing.T) {
	client := newTestClient(t, sseHandler(
		`data: {"error":{"message":"blocked"}}`,
	))

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	if err == nil {
		t.Fatal("expected error")
	}
	e, ok := AsError(err)
	if !ok || e.Kind != ErrKindProtocol || e.Message != "blocked" {
		t.Fatalf("err = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events before error = %v", events)
	}
}

func TestChatStreamSynthesizesCompletion(t *testing.T) {
	// Abrupt end-of-body without [DONE] or done:true.
	client := newTestClient(t, sseHandler(
		`data: {"response":"a"}`,
		`data: {"response":"b"}`,
		`data: {"response":"c"}`,
	))

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("events = %d, want 3 deltas + synthesized completion", len(events))
	}
	if events[3].Type != EventCompletion {
		t.Fatalf("last event = %+v, want completion", events[3])
	}
}

func TestChatStreamEmptyBodyNoSynthesis(t *testing.T) {
	client := newTestClient(t, sseHandler())

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
}

func TestChatStreamMalformedFrameResilience(t *testing.T) {
	client := newTestClient(t, sseHandler(
		`data: {"response":"ok1"}`,
		`data: {not json at all`,
		`data: {"response":"ok2"}`,
		`data: [DONE]`,
	))

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	if err != nil {
		t.Fatalf("stream failed on malformed frame: %v", err)
	}

	var texts []string
	for _, ev := range events {
		if ev.Type == EventTextDelta {
			texts = append(texts, ev.Text)
		}
	}
	if len(texts) != 2 || texts[0] != "ok1" || texts[1] != "ok2" {
		t.Fatalf("texts = %v", texts)
	}
}

func TestChatStreamRawTextFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "hello world\n")
	})

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want delta + synthesized completion", len(events))
	}
	if events[0].Type != EventTextDelta || events[0].Text != "hello world" {
		t.Fatalf("events[0] = %+v", events[0])
	}
}

func TestChatStreamStopsAtTerminalFrame(t *testing.T) {
	client := newTestClient(t, sseHandler(
		`data: {"response":"a"}`,
		`data: {"done":true}`,
		`data: {"response":"never seen"}`,
	))

	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	completions := 0
	for _, ev := range events {
		if ev.Type == EventCompletion {
			completions++
		}
		if ev.Text == "never seen" {
			t.Fatal("events yielded after terminal frame")
		}
	}
	if completions != 1 {
		t.Fatalf("completions = %d, want exactly 1", completions)
	}
}

func TestChatStreamHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"detail":"no adapter available"}`)
	})

	_, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
	e, ok := AsError(err)
	if !ok || e.Kind != ErrKindHTTP {
		t.Fatalf("err = %v", err)
	}
	if e.HTTPStatus != http.StatusServiceUnavailable || e.Message != "no adapter available" {
		t.Fatalf("err = %+v", e)
	}
}

func TestChatStreamTimeoutVsCancelDistinct(t *testing.T) {
	// Identical server behavior (hangs after one frame); only the local
	// trigger differs.
	hang := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"response\":\"x\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, hang, WithStreamTimeout(100*time.Millisecond))

		_, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{}))
		if !IsTimeout(err) {
			t.Fatalf("err = %v, want timeout kind", err)
		}
		if IsCanceled(err) {
			t.Fatal("timeout also classified as canceled")
		}
	})

	t.Run("caller cancel", func(t *testing.T) {
		client := newTestClient(t, hang, WithStreamTimeout(10*time.Second))

		ctx, cancel := context.WithCancel(context.Background())
		var events []*StreamEvent
		var streamErr error
		for ev, err := range client.Chat.ChatStream(ctx, &ChatRequest{}) {
			if err != nil {
				streamErr = err
				break
			}
			events = append(events, ev)
			cancel()
		}
		cancel()

		if !IsCanceled(streamErr) {
			t.Fatalf("err = %v, want canceled kind", streamErr)
		}
		if len(events) != 1 {
			t.Fatalf("events before cancel = %d, want 1", len(events))
		}
	})
}

func TestChatStreamStopCalledOnCancel(t *testing.T) {
	stopped := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"request_id\":\"req-7\",\"response\":\"x\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	mux.HandleFunc("/v1/chat/stop", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RequestID string `json:"request_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		select {
		case stopped <- body.RequestID:
		default:
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, WithStreamTimeout(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, err := range client.Chat.ChatStream(ctx, &ChatRequest{}) {
		if err != nil {
			break
		}
		cancel()
	}

	select {
	case id := <-stopped:
		if id != "req-7" {
			t.Fatalf("stop request_id = %q, want req-7", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server-side stop was never issued")
	}
}

func TestChatStreamNonStreamingFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["stream"] != false {
			t.Errorf("stream field = %v, want false", body["stream"])
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response":"complete answer","audio":"QUJD","audio_format":"mp3"}`)
	})

	off := false
	events, err := collect(client.Chat.ChatStream(context.Background(), &ChatRequest{Stream: &off}))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("events = %d, want exactly 1", len(events))
	}
	ev := events[0]
	if ev.Type != EventTextDelta || ev.Text != "complete answer" || !ev.Done {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Audio != "QUJD" || ev.AudioFormat != "mp3" {
		t.Fatalf("audio not carried: %+v", ev)
	}
}

func TestChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("Accept = %q", accept)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response":"hi there"}`)
	})

	resp, err := client.Chat.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Response != "hi there" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestChatTransportError(t *testing.T) {
	// Point at a closed server.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL)

	_, err := client.Chat.Chat(context.Background(), &ChatRequest{})
	e, ok := AsError(err)
	if !ok || e.Kind != ErrKindTransport {
		t.Fatalf("err = %v, want transport kind", err)
	}
	if !e.Retryable() {
		t.Fatal("transport errors must be retryable")
	}
}
