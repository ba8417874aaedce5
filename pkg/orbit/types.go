package orbit

import "encoding/json"

// Message is a single conversation message.
type Message struct {
	// Role is "user", "assistant" or "system".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatRequest is the request body for POST /v1/chat.
type ChatRequest struct {
	// Messages is the conversation so far, oldest first.
	Messages []Message `json:"messages"`

	// Stream selects the response mode. nil means streaming; an explicit
	// false routes ChatStream through the single-body fallback path.
	Stream *bool `json:"stream,omitempty"`

	// FileIDs restricts retrieval to previously uploaded files.
	FileIDs []string `json:"file_ids,omitempty"`

	// ThreadID continues an existing conversation thread.
	ThreadID string `json:"thread_id,omitempty"`

	// AudioInput is base64-encoded input audio for voice queries.
	AudioInput string `json:"audio_input,omitempty"`

	// AudioFormat is the format of AudioInput (e.g. "webm", "wav").
	AudioFormat string `json:"audio_format,omitempty"`

	// Language hints the language of the conversation.
	Language string `json:"language,omitempty"`

	// ReturnAudio asks the server to synthesize speech for the response.
	ReturnAudio bool `json:"return_audio,omitempty"`

	// TTSVoice selects the synthesis voice when ReturnAudio is set.
	TTSVoice string `json:"tts_voice,omitempty"`

	// SourceLanguage and TargetLanguage drive translation adapters.
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// ChatResponse is the non-streaming response body.
type ChatResponse struct {
	// Response is the generated text.
	Response string `json:"response"`

	// Audio is base64-encoded synthesized speech, when requested.
	Audio string `json:"audio,omitempty"`

	// AudioFormat is the format of Audio (e.g. "mp3", "opus").
	AudioFormat string `json:"audio_format,omitempty"`

	// Sources are retrieval citations, passed through unparsed.
	Sources json.RawMessage `json:"sources,omitempty"`
}

// ThreadingInfo is conversation-thread metadata attached to a completion.
// The client forwards it unchanged and never interprets its fields.
type ThreadingInfo struct {
	SupportsThreading bool   `json:"supportsThreading"`
	MessageID         string `json:"messageId"`
	SessionID         string `json:"sessionId"`
}

// UploadResult is the response for POST /api/files/upload.
type UploadResult struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	FileSize   int64  `json:"file_size"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Message    string `json:"message"`
}

// FileInfo describes an uploaded file.
type FileInfo struct {
	FileID           string `json:"file_id"`
	Filename         string `json:"filename"`
	MimeType         string `json:"mime_type"`
	FileSize         int64  `json:"file_size"`
	UploadTimestamp  string `json:"upload_timestamp"`
	ProcessingStatus string `json:"processing_status"`
	ChunkCount       int    `json:"chunk_count"`
	StorageType      string `json:"storage_type"`
}

// QueryResult is the response for POST /api/files/{id}/query.
type QueryResult struct {
	FileID   string           `json:"file_id"`
	Filename string           `json:"filename"`
	Results  []map[string]any `json:"results"`
}

// ThreadInfo describes a conversation thread.
type ThreadInfo struct {
	ThreadID        string `json:"thread_id"`
	ParentMessageID string `json:"parent_message_id"`
	SessionID       string `json:"session_id"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// HealthStatus is the response for GET /health and GET /ready.
type HealthStatus struct {
	Status string `json:"status"`

	// Components holds per-subsystem detail when the server reports it.
	Components map[string]any `json:"components,omitempty"`
}
