package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Source struct {
	httpClient *http.Client
	url        string
	userAgent  string
	timeout    time.Duration
}

func NewSource(httpClient *http.Client, url, userAgent string, timeout time.Duration) *Source {
	return &Source{
		httpClient: httpClient,
		url:        url,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (s *Source) Run(ctx context.Context) ([]Paper, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paper list: %w", err)
	}

	papers, err := DecodePapers(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Paper list fetched", "url", s.url, "bytes", len(data), "papers", len(papers))
	return papers, nil
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// DecodePapers decodes a JSON array of 5-element paper rows.
func DecodePapers(data []byte) ([]Paper, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse paper list: %w", err)
	}

	papers := make([]Paper, 0, len(rows))
	for i, row := range rows {
		var paper Paper
		if err := json.Unmarshal(row, &paper); err != nil {
			return nil, fmt.Errorf("failed to parse paper %d: %w", i+1, err)
		}
		papers = append(papers, paper)
	}

	return papers, nil
}

func (p *Paper) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 5 {
		return fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	targets := []struct {
		name string
		dst  any
	}{
		{"date", &p.Date},
		{"link", &p.Link},
		{"title", &p.Title},
		{"authors", &p.Authors},
		{"abstract", &p.Abstract},
	}

	for i, target := range targets {
		if err := json.Unmarshal(fields[i], target.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", target.name, err)
		}
	}

	return nil
}
