package orbit

import (
	"testing"
)

func TestClassifyFrameRawTextFallback(t *testing.T) {
	res := classifyFrame("hello world")

	if res.done || res.err != nil {
		t.Fatalf("unexpected done=%v err=%v", res.done, res.err)
	}
	if len(res.events) != 1 {
		t.Fatalf("events = %d, want 1", len(res.events))
	}
	ev := res.events[0]
	if ev.Type != EventTextDelta || ev.Text != "hello world" || ev.Done {
		t.Fatalf("event = %+v", ev)
	}
}

func TestClassifyFrameTerminators(t *testing.T) {
	for _, frame := range []string{"data: [DONE]", "data:[DONE]", "data:"} {
		res := classifyFrame(frame)
		if !res.done {
			t.Errorf("%q: done = false", frame)
		}
		if len(res.events) != 1 || res.events[0].Type != EventCompletion {
			t.Errorf("%q: events = %+v", frame, res.events)
		}
	}
}

func TestClassifyFrameMalformedJSONSkipped(t *testing.T) {
	res := classifyFrame(`data: {"response": bro`)

	if res.err != nil {
		t.Fatalf("malformed frame must not be fatal, got %v", res.err)
	}
	if res.done || len(res.events) != 0 {
		t.Fatalf("malformed frame yielded done=%v events=%v", res.done, res.events)
	}
}

func TestClassifyFrameErrorField(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"object", `data: {"error":{"message":"blocked"}}`, "blocked"},
		{"string", `data: {"error":"Stream processing failed","done":true}`, "Stream processing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyFrame(tt.frame)
			if res.err == nil {
				t.Fatal("expected error")
			}
			e, ok := AsError(res.err)
			if !ok || e.Kind != ErrKindProtocol || e.Message != tt.want {
				t.Fatalf("err = %v", res.err)
			}
			if !res.done {
				t.Fatal("protocol error must end the stream")
			}
			if len(res.events) != 0 {
				t.Fatalf("error frame yielded events: %v", res.events)
			}
		})
	}
}

func TestClassifyFrameDone(t *testing.T) {
	frame := `data: {"done":true,"audio":"QUJD","audioFormat":"mp3","threading":{"supportsThreading":true,"messageId":"m1","sessionId":"s1"}}`
	res := classifyFrame(frame)

	if !res.done || res.err != nil {
		t.Fatalf("done=%v err=%v", res.done, res.err)
	}
	if len(res.events) != 1 {
		t.Fatalf("events = %d, want 1", len(res.events))
	}
	ev := res.events[0]
	if ev.Type != EventCompletion || ev.Audio != "QUJD" || ev.AudioFormat != "mp3" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Threading == nil || !ev.Threading.SupportsThreading || ev.Threading.MessageID != "m1" || ev.Threading.SessionID != "s1" {
		t.Fatalf("threading = %+v", ev.Threading)
	}
}

// A terminal frame may carry only metadata and no response text; done wins
// over any audio_chunk/response fields in the same frame.
func TestClassifyFramePriorityDoneOverAudio(t *testing.T) {
	res := classifyFrame(`data: {"done":true,"audio_chunk":"QUJD","response":"tail"}`)

	if !res.done {
		t.Fatal("done = false")
	}
	if len(res.events) != 1 || res.events[0].Type != EventCompletion {
		t.Fatalf("events = %+v", res.events)
	}
}

func TestClassifyFrameAudioChunk(t *testing.T) {
	res := classifyFrame(`data: {"audio_chunk":"QUJD","audioFormat":"mp3","chunk_index":3,"done":false}`)

	if res.done || res.err != nil {
		t.Fatalf("done=%v err=%v", res.done, res.err)
	}
	if len(res.events) != 1 {
		t.Fatalf("events = %d, want 1", len(res.events))
	}
	ev := res.events[0]
	if ev.Type != EventAudioDelta || ev.Audio != "QUJD" || ev.AudioFormat != "mp3" || ev.ChunkIndex != 3 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestClassifyFrameAudioChunkDefaults(t *testing.T) {
	res := classifyFrame(`data: {"audio_chunk":"QUJD"}`)

	if len(res.events) != 1 {
		t.Fatalf("events = %d, want 1", len(res.events))
	}
	ev := res.events[0]
	if ev.AudioFormat != "opus" || ev.ChunkIndex != 0 {
		t.Fatalf("defaults not applied: %+v", ev)
	}
}

func TestClassifyFrameAudioChunkWithResponse(t *testing.T) {
	res := classifyFrame(`data: {"audio_chunk":"QUJD","response":"hi"}`)

	if len(res.events) != 2 {
		t.Fatalf("events = %d, want 2", len(res.events))
	}
	if res.events[0].Type != EventAudioDelta {
		t.Fatalf("first event = %+v, want audio delta", res.events[0])
	}
	if res.events[1].Type != EventTextDelta || res.events[1].Text != "hi" {
		t.Fatalf("second event = %+v, want text delta", res.events[1])
	}
}

func TestClassifyFrameResponse(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"response", `data: {"response":"Hel"}`, "Hel"},
		{"empty response", `data: {"response":""}`, ""},
		{"legacy text field", `data: {"text":"old"}`, "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyFrame(tt.frame)
			if len(res.events) != 1 {
				t.Fatalf("events = %d, want 1", len(res.events))
			}
			ev := res.events[0]
			if ev.Type != EventTextDelta || ev.Text != tt.want || ev.Done {
				t.Fatalf("event = %+v", ev)
			}
		})
	}
}

func TestClassifyFrameUnknownShapeIgnored(t *testing.T) {
	res := classifyFrame(`data: {"usage":{"tokens":12}}`)

	if res.done || res.err != nil || len(res.events) != 0 {
		t.Fatalf("unknown frame produced done=%v err=%v events=%v", res.done, res.err, res.events)
	}
}

func TestClassifyFrameCapturesRequestID(t *testing.T) {
	res := classifyFrame(`data: {"request_id":"req-42","response":"x"}`)

	if res.requestID != "req-42" {
		t.Fatalf("requestID = %q", res.requestID)
	}
}

func TestDecodeErrorField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absent", "", ""},
		{"null", "null", ""},
		{"string", `"boom"`, "boom"},
		{"object", `{"message":"bad"}`, "bad"},
		{"other json", `{"code":7}`, `{"code":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw []byte
			if tt.raw != "" {
				raw = []byte(tt.raw)
			}
			if got := decodeErrorField(raw); got != tt.want {
				t.Fatalf("decodeErrorField(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
