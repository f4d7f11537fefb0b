package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/timber/internal/config"
	"github.com/vovakirdan/timber/internal/storage"
)

// Environment variables read by RESTFromEnv.
const (
	EnvURL = "TIMBER_LEADERBOARD_URL"
	EnvKey = "TIMBER_LEADERBOARD_KEY"
)

// DefaultTable is the remote table holding all boards.
const DefaultTable = "scores"

// RESTBackend talks to a PostgREST-style service. Rows live in one table
// with the columns board, display_name, value, session_id and created_at.
type RESTBackend struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
}

// NewRESTBackend creates a backend for baseURL authenticated with apiKey.
// The backend is unconfigured unless both are set.
func NewRESTBackend(baseURL, apiKey string) *RESTBackend {
	return &RESTBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   DefaultTable,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// RESTFromEnv builds a backend from TIMBER_LEADERBOARD_URL and
// TIMBER_LEADERBOARD_KEY.
func RESTFromEnv() *RESTBackend {
	return NewRESTBackend(config.GetEnv(EnvURL, ""), config.GetEnv(EnvKey, ""))
}

func (b *RESTBackend) Configured() bool {
	return b != nil && b.baseURL != "" && b.apiKey != ""
}

type restRow struct {
	Board       string    `json:"board"`
	DisplayName string    `json:"display_name"`
	Value       float64   `json:"value"`
	SessionID   string    `json:"session_id"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

func (b *RESTBackend) Insert(ctx context.Context, e storage.ScoreEntry) error {
	body, err := json.Marshal(restRow{
		Board:       e.Board,
		DisplayName: e.DisplayName,
		Value:       e.Value,
		SessionID:   e.SessionID,
	})
	if err != nil {
		return fmt.Errorf("leaderboard: encode row: %w", err)
	}

	req, err := b.request(ctx, http.MethodPost, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := b.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (b *RESTBackend) Top(ctx context.Context, board string, order storage.Order, limit int) ([]storage.ScoreEntry, error) {
	dir := "desc"
	if order == storage.LowFirst {
		dir = "asc"
	}
	q := url.Values{}
	q.Set("select", "board,display_name,value,session_id,created_at")
	q.Set("board", "eq."+board)
	q.Set("order", "value."+dir+",created_at.asc")
	q.Set("limit", strconv.Itoa(limit))

	req, err := b.request(ctx, http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rows []restRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("leaderboard: decode rows: %w", err)
	}

	entries := make([]storage.ScoreEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, storage.ScoreEntry{
			Board:       r.Board,
			DisplayName: r.DisplayName,
			Value:       r.Value,
			SessionID:   r.SessionID,
			CreatedAt:   r.CreatedAt,
		})
	}
	return entries, nil
}

func (b *RESTBackend) CountBetter(ctx context.Context, board string, order storage.Order, value float64) (int, error) {
	op := "gt."
	if order == storage.LowFirst {
		op = "lt."
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set("board", "eq."+board)
	q.Set("value", op+strconv.FormatFloat(value, 'f', -1, 64))

	req, err := b.request(ctx, http.MethodHead, q, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := b.do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return parseContentRange(resp.Header.Get("Content-Range"))
}

func (b *RESTBackend) request(ctx context.Context, method string, q url.Values, body io.Reader) (*http.Request, error) {
	u := b.baseURL + "/rest/v1/" + b.table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: build request: %w", err)
	}
	req.Header.Set("apikey", b.apiKey)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	return req, nil
}

func (b *RESTBackend) do(req *http.Request) (*http.Response, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %s request: %w", req.Method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("leaderboard: %s request: status %d: %s",
			req.Method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// parseContentRange extracts the total from "0-9/42" or "*/42".
func parseContentRange(h string) (int, error) {
	_, total, ok := strings.Cut(h, "/")
	if !ok || total == "*" {
		return 0, errors.New("leaderboard: missing count in Content-Range")
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil {
		return 0, fmt.Errorf("leaderboard: bad Content-Range %q: %w", h, err)
	}
	return n, nil
}
