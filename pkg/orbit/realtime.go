package orbit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// VoiceService provides access to the realtime voice WebSocket API.
type VoiceService struct {
	client *Client
}

// VoiceConfig configures a realtime voice session.
type VoiceConfig struct {
	// SessionID identifies the conversation session. Generated when empty.
	SessionID string

	// Language hints the spoken language.
	Language string
}

// VoiceEventType names the realtime voice events.
type VoiceEventType string

const (
	VoiceEventConnected     VoiceEventType = "connected"
	VoiceEventTranscription VoiceEventType = "transcription"
	VoiceEventAudioChunk    VoiceEventType = "audio_chunk"
	VoiceEventInterrupted   VoiceEventType = "interrupted"
	VoiceEventDone          VoiceEventType = "done"
	VoiceEventPong          VoiceEventType = "pong"
)

// VoiceEvent is one server event on a realtime voice session.
type VoiceEvent struct {
	// Type is the event kind.
	Type VoiceEventType

	// Text is the transcription text (transcription events).
	Text string

	// Audio is base64-encoded response audio (audio_chunk events).
	Audio string

	// AudioFormat is the audio encoding.
	AudioFormat string

	// ChunkIndex orders audio chunks.
	ChunkIndex uint

	// SessionID is the session identifier (connected events).
	SessionID string
}

// Connect opens a realtime voice session against
// ws(s)://<host>/ws/voice/{adapter}?session_id=....
func (s *VoiceService) Connect(ctx context.Context, adapterName string, config *VoiceConfig) (*VoiceSession, error) {
	if config == nil {
		config = &VoiceConfig{}
	}
	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = s.client.config.sessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	wsURL, err := s.voiceURL(adapterName, sessionID, config.Language)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("X-Request-ID", uuid.NewString())
	if s.client.config.apiKey != "" {
		headers.Set("X-API-Key", s.client.config.apiKey)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: s.client.config.timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Kind:       ErrKindHTTP,
				Message:    fmt.Sprintf("voice connect rejected: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, &Error{Kind: ErrKindTransport, Message: "could not connect to voice endpoint: " + err.Error(), err: err}
	}

	session := &VoiceSession{
		conn:      conn,
		sessionID: sessionID,
		closeCh:   make(chan struct{}),
		eventsCh:  make(chan voiceEventOrError, 100),
	}

	go session.readLoop()

	return session, nil
}

// voiceURL derives the WebSocket URL from the client's HTTP base URL.
func (s *VoiceService) voiceURL(adapterName, sessionID, language string) (string, error) {
	u, err := url.Parse(s.client.config.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/voice/" + url.PathEscape(adapterName)

	q := u.Query()
	q.Set("session_id", sessionID)
	if language != "" {
		q.Set("language", language)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// VoiceSession is an active realtime voice session.
type VoiceSession struct {
	conn      *websocket.Conn
	sessionID string
	closeCh   chan struct{}
	eventsCh  chan voiceEventOrError
	closeOnce sync.Once
	mu        sync.Mutex
}

type voiceEventOrError struct {
	event *VoiceEvent
	err   error
}

// SessionID returns the session identifier in use.
func (s *VoiceSession) SessionID() string {
	return s.sessionID
}

// SendAudio sends one chunk of captured audio to the server.
func (s *VoiceSession) SendAudio(audio []byte) error {
	return s.sendMessage(map[string]any{
		"type":  "audio_chunk",
		"audio": base64.StdEncoding.EncodeToString(audio),
	})
}

// Interrupt asks the server to stop the in-flight spoken response.
func (s *VoiceSession) Interrupt() error {
	return s.sendMessage(map[string]any{"type": "interrupt"})
}

// Ping sends a keepalive; the server answers with a pong event.
func (s *VoiceSession) Ping() error {
	return s.sendMessage(map[string]any{"type": "ping"})
}

// Events returns an iterator over session events. It ends when the session
// closes; a transport failure is delivered as the final error.
func (s *VoiceSession) Events() iter.Seq2[*VoiceEvent, error] {
	return func(yield func(*VoiceEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session.
func (s *VoiceSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

func (s *VoiceSession) sendMessage(msg map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// readLoop reads server messages and converts them to events.
func (s *VoiceSession) readLoop() {
	defer close(s.eventsCh)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
			case s.eventsCh <- voiceEventOrError{err: &Error{Kind: ErrKindTransport, Message: "voice read failed: " + err.Error(), err: err}}:
			}
			return
		}

		var raw struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Audio       string `json:"audio"`
			AudioChunk  string `json:"audio_chunk"`
			AudioFormat string `json:"audioFormat"`
			ChunkIndex  uint   `json:"chunk_index"`
			SessionID   string `json:"session_id"`
			Error       string `json:"error"`
			Message     string `json:"message"`
		}
		if err := json.Unmarshal(message, &raw); err != nil {
			// Same policy as the HTTP stream: one malformed message does
			// not kill the session.
			continue
		}

		if raw.Type == "error" {
			msg := raw.Error
			if msg == "" {
				msg = raw.Message
			}
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- voiceEventOrError{err: &Error{Kind: ErrKindProtocol, Message: msg}}:
			}
			continue
		}

		event := &VoiceEvent{
			Type:        VoiceEventType(raw.Type),
			Text:        raw.Text,
			Audio:       raw.Audio,
			AudioFormat: raw.AudioFormat,
			ChunkIndex:  raw.ChunkIndex,
			SessionID:   raw.SessionID,
		}
		if event.Audio == "" && raw.AudioChunk != "" {
			event.Audio = raw.AudioChunk
		}

		select {
		case <-s.closeCh:
			return
		case s.eventsCh <- voiceEventOrError{event: event}:
		}
	}
}
