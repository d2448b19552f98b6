package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// fetchDocument downloads the bill image, bounded by maxBytes so a bad URL
// cannot exhaust memory.
func (s *Server) fetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("download body close error", "error", cerr)
		}
	}()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("download document: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxDownloadBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", s.cfg.MaxDownloadBytes)
	}
	return data, nil
}
