package orbit

import (
	"context"
	"net/http"
)

// HealthService provides health checks and API key validation.
type HealthService struct {
	client *Client
}

// Health returns the server's health status.
func (s *HealthService) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := s.client.http.request(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ready reports whether the server has finished startup.
func (s *HealthService) Ready(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := s.client.http.request(ctx, http.MethodGet, "/ready", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Validate checks the configured API key against the server. It returns nil
// when the key is accepted and an *Error with kind ErrKindHTTP (status 401
// or 403) when it is rejected.
func (s *HealthService) Validate(ctx context.Context) error {
	_, err := s.Health(ctx)
	return err
}
