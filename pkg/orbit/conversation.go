package orbit

import (
	"context"
	"net/http"
)

// ConversationService provides session history operations. All calls are
// scoped to the session identified by the configured X-Session-ID header.
type ConversationService struct {
	client *Client
}

// ClearHistory empties the current session's conversation history while
// keeping the session itself.
func (s *ConversationService) ClearHistory(ctx context.Context) error {
	return s.client.http.request(ctx, http.MethodPost, "/api/conversation/clear", nil, nil)
}

// DeleteHistory removes the current session's conversation entirely.
func (s *ConversationService) DeleteHistory(ctx context.Context) error {
	return s.client.http.request(ctx, http.MethodDelete, "/api/conversation", nil, nil)
}
