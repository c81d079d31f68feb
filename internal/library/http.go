package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	_ Source    = (*HTTPSource)(nil)
	_ Directory = (*HTTPSource)(nil)
)

const (
	defaultCatalogURL = "http://127.0.0.1:7488"
	defaultUserAgent  = "shelf/0.1"
	requestTimeout    = 5 * time.Second
)

// ClientsResponse mirrors the catalog's /api/clients payload.
type ClientsResponse struct {
	Clients []Client `json:"clients"`
}

// HTTPSource fetches books from a shelf catalog server.
type HTTPSource struct {
	client *resty.Client
}

// NewHTTPSource builds a source for the catalog at baseURL. A zero timeout
// uses the default.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultCatalogURL
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}

	cli := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", defaultUserAgent)

	return &HTTPSource{client: cli}
}

// Fetch retrieves one client's books. Unknown clients yield ErrNotFound.
func (s *HTTPSource) Fetch(ctx context.Context, clientID string) (Snapshot, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("clientID", clientID).
		Get("/api/clients/{clientID}/books")
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: fetch books: %w", ErrTransport, err)
	}
	if err := mapHTTPError(resp); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode books: %w", err)
	}
	if snap.Borrowed == nil {
		snap.Borrowed = []Book{}
	}
	if snap.Available == nil {
		snap.Available = []Book{}
	}
	return snap, nil
}

// Clients lists the clients the catalog serves.
func (s *HTTPSource) Clients(ctx context.Context) ([]Client, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/api/clients")
	if err != nil {
		return nil, fmt.Errorf("%w: list clients: %w", ErrTransport, err)
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}

	var payload ClientsResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	return payload.Clients, nil
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}
	if code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	}
	return fmt.Errorf("%w: http %d: %s", ErrTransport, code, body)
}
