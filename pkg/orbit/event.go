package orbit

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// EventType discriminates the variants of StreamEvent.
type EventType string

const (
	// EventTextDelta carries a piece of newly generated text.
	EventTextDelta EventType = "text_delta"

	// EventAudioDelta carries one ordered chunk of synthesized audio.
	EventAudioDelta EventType = "audio_delta"

	// EventCompletion is the terminal, successful end-of-stream event.
	// At most one is produced per stream.
	EventCompletion EventType = "completion"
)

// StreamEvent is one event of a streaming chat response.
//
// Which fields are meaningful depends on Type: TextDelta uses Text and Done
// (plus Audio/AudioFormat/Threading when the server folds them into a text
// frame); AudioDelta uses Audio, AudioFormat and ChunkIndex; Completion may
// carry Audio, AudioFormat, Threading and Sources. Server-reported errors
// are never events; they surface on the iterator's error position.
type StreamEvent struct {
	// Type is the event variant.
	Type EventType

	// Text is newly generated text (TextDelta).
	Text string

	// Done marks the terminal chunk of the textual channel. Only the
	// non-streaming fallback produces a TextDelta with Done set.
	Done bool

	// Audio is base64-encoded audio data.
	Audio string

	// AudioFormat is the audio encoding (e.g. "opus", "mp3").
	AudioFormat string

	// ChunkIndex orders audio chunks within one stream. Monotonically
	// non-decreasing, not necessarily contiguous; the client never reorders.
	ChunkIndex uint

	// Threading is conversation-thread metadata, forwarded unchanged.
	Threading *ThreadingInfo

	// Sources are retrieval citations, passed through unparsed.
	Sources json.RawMessage
}

const (
	sseDataPrefix  = "data:"
	streamEndToken = "[DONE]"

	defaultAudioFormat = "opus"
)

// streamFrame is the decoded JSON payload of one stream frame. The server
// spells the audio format both ways depending on the code path, and older
// deployments emit "text" instead of "response".
type streamFrame struct {
	Response         *string         `json:"response"`
	Text             *string         `json:"text"`
	Error            json.RawMessage `json:"error"`
	Done             bool            `json:"done"`
	Audio            string          `json:"audio"`
	AudioFormatCamel string          `json:"audioFormat"`
	AudioFormatSnake string          `json:"audio_format"`
	AudioChunk       string          `json:"audio_chunk"`
	ChunkIndex       uint            `json:"chunk_index"`
	Threading        *ThreadingInfo  `json:"threading"`
	RequestID        string          `json:"request_id"`
	Sources          json.RawMessage `json:"sources"`
}

func (f *streamFrame) audioFormat() string {
	if f.AudioFormatCamel != "" {
		return f.AudioFormatCamel
	}
	return f.AudioFormatSnake
}

func (f *streamFrame) text() *string {
	if f.Response != nil {
		return f.Response
	}
	return f.Text
}

// frameResult is the classification of one frame: zero or more events, an
// optional fatal error, and whether the stream is complete.
type frameResult struct {
	events    []*StreamEvent
	done      bool
	err       error
	requestID string
}

// classifyFrame maps one raw frame to events.
//
// A frame without the SSE "data:" prefix is a legacy bare text line and
// becomes a TextDelta as-is. Otherwise the payload is JSON, inspected in
// fixed priority order: error > done > audio_chunk > response. A frame that
// fails to decode is skipped, not fatal: malformed chunks from flaky
// transports must not abort an otherwise healthy stream.
func classifyFrame(frame string) frameResult {
	if !strings.HasPrefix(frame, sseDataPrefix) {
		return frameResult{events: []*StreamEvent{{Type: EventTextDelta, Text: frame}}}
	}

	payload := strings.TrimSpace(strings.TrimPrefix(frame, sseDataPrefix))
	if payload == "" || payload == streamEndToken {
		return frameResult{events: []*StreamEvent{{Type: EventCompletion}}, done: true}
	}

	var f streamFrame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		slog.Debug("orbit: skipping malformed stream frame", "err", err, "frame_len", len(payload))
		return frameResult{}
	}

	res := frameResult{requestID: f.RequestID}

	if msg := decodeErrorField(f.Error); msg != "" {
		res.err = &Error{Kind: ErrKindProtocol, Message: msg}
		res.done = true
		return res
	}

	// Terminal frames may carry only metadata and no response text, so the
	// done check precedes the text-field check.
	if f.Done {
		res.events = append(res.events, &StreamEvent{
			Type:        EventCompletion,
			Audio:       f.Audio,
			AudioFormat: f.audioFormat(),
			Threading:   f.Threading,
			Sources:     f.Sources,
		})
		res.done = true
		return res
	}

	if f.AudioChunk != "" {
		format := f.audioFormat()
		if format == "" {
			format = defaultAudioFormat
		}
		res.events = append(res.events, &StreamEvent{
			Type:        EventAudioDelta,
			Audio:       f.AudioChunk,
			AudioFormat: format,
			ChunkIndex:  f.ChunkIndex,
		})
	}

	if text := f.text(); text != nil || f.Audio != "" {
		ev := &StreamEvent{
			Type:        EventTextDelta,
			Audio:       f.Audio,
			AudioFormat: f.audioFormat(),
			Threading:   f.Threading,
		}
		if text != nil {
			ev.Text = *text
		}
		res.events = append(res.events, ev)
	}

	// A frame with none of the recognized fields yields nothing.
	return res
}

// decodeErrorField extracts a message from an error field that may be a bare
// JSON string or an object with a "message" key. Returns "" when absent.
func decodeErrorField(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	return strings.TrimSpace(string(raw))
}
