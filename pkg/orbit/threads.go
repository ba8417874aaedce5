package orbit

import (
	"context"
	"net/http"
	"net/url"
)

// ThreadService provides conversation thread operations.
type ThreadService struct {
	client *Client
}

// Create starts a new thread rooted at an existing message.
func (s *ThreadService) Create(ctx context.Context, parentMessageID string) (*ThreadInfo, error) {
	body := struct {
		ParentMessageID string `json:"parent_message_id"`
	}{parentMessageID}

	var info ThreadInfo
	if err := s.client.http.request(ctx, http.MethodPost, "/api/threads", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Get returns metadata for one thread.
func (s *ThreadService) Get(ctx context.Context, threadID string) (*ThreadInfo, error) {
	var info ThreadInfo
	err := s.client.http.request(ctx, http.MethodGet, "/api/threads/"+url.PathEscape(threadID), nil, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Delete removes a thread and its messages.
func (s *ThreadService) Delete(ctx context.Context, threadID string) error {
	return s.client.http.request(ctx, http.MethodDelete, "/api/threads/"+url.PathEscape(threadID), nil, nil)
}
