package orbit

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the default Orbit server address.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultTimeout is the default timeout for request/response calls.
	DefaultTimeout = 30 * time.Second

	// DefaultStreamTimeout bounds a whole streaming chat invocation.
	DefaultStreamTimeout = 60 * time.Second
)

// Client is the Orbit API client.
type Client struct {
	// Chat provides chat inference (streaming and non-streaming).
	Chat *ChatService

	// Files provides file upload and retrieval-augmented query operations.
	Files *FileService

	// Threads provides conversation thread operations.
	Threads *ThreadService

	// Conversation provides session history operations.
	Conversation *ConversationService

	// Health provides health checks and API key validation.
	Health *HealthService

	// Voice provides the realtime voice WebSocket session.
	Voice *VoiceService

	config *clientConfig
	http   *httpClient
}

// clientConfig holds the client configuration.
type clientConfig struct {
	baseURL       string
	apiKey        string
	sessionID     string
	httpClient    *http.Client
	timeout       time.Duration
	streamTimeout time.Duration
}

// Option is a function that configures the client.
type Option func(*clientConfig)

// WithAPIKey sets the X-API-Key header sent with every request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithSessionID sets the X-Session-ID header sent with every request.
// Servers with session validation enabled require it.
func WithSessionID(id string) Option {
	return func(c *clientConfig) {
		c.sessionID = id
	}
}

// WithHTTPClient sets a custom HTTP client. It is used for streaming calls
// too, so leave its Timeout at zero and rely on per-call contexts.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the timeout for request/response calls.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithStreamTimeout sets the ceiling for a whole streaming chat call,
// layered on top of any caller-supplied context deadline.
func WithStreamTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.streamTimeout = timeout
	}
}

// NewClient creates a new Orbit client for the given server base URL.
// An empty baseURL falls back to DefaultBaseURL.
//
// Example:
//
//	client := orbit.NewClient("https://orbit.example.com",
//		orbit.WithAPIKey("orbit_abc123"),
//	)
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := &clientConfig{
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       DefaultTimeout,
		streamTimeout: DefaultStreamTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		config: cfg,
		http:   newHTTPClient(cfg),
	}

	c.Chat = &ChatService{client: c}
	c.Files = &FileService{client: c}
	c.Threads = &ThreadService{client: c}
	c.Conversation = &ConversationService{client: c}
	c.Health = &HealthService{client: c}
	c.Voice = &VoiceService{client: c}

	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.baseURL
}

// SessionID returns the configured session ID.
func (c *Client) SessionID() string {
	return c.config.sessionID
}
