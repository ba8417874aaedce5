package orbit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// FileService provides file upload and retrieval operations.
type FileService struct {
	client *Client
}

// Upload uploads a file for retrieval-augmented chat. The file is streamed
// to the server without being buffered in memory.
func (s *FileService) Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error) {
	var result UploadResult
	err := s.client.http.uploadFile(ctx, "/api/files/upload", file, filename, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns all files uploaded under the current API key.
func (s *FileService) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	if err := s.client.http.request(ctx, http.MethodGet, "/api/files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Get returns metadata for one uploaded file.
func (s *FileService) Get(ctx context.Context, fileID string) (*FileInfo, error) {
	var info FileInfo
	err := s.client.http.request(ctx, http.MethodGet, "/api/files/"+url.PathEscape(fileID), nil, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Query runs a retrieval query against one uploaded file. maxResults <= 0
// leaves the limit to the server.
func (s *FileService) Query(ctx context.Context, fileID, query string, maxResults int) (*QueryResult, error) {
	body := struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results,omitempty"`
	}{query, maxResults}

	var result QueryResult
	path := fmt.Sprintf("/api/files/%s/query", url.PathEscape(fileID))
	if err := s.client.http.request(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes one uploaded file and its index entries.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	return s.client.http.request(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(fileID), nil, nil)
}

// DeleteAll removes every file uploaded under the current API key.
func (s *FileService) DeleteAll(ctx context.Context) error {
	return s.client.http.request(ctx, http.MethodDelete, "/api/files", nil, nil)
}
