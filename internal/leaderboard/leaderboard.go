// Package leaderboard submits and reads shared high-score boards.
//
// A Client is bound to one board (one per game mode) and talks to a
// Backend: the local sqlite store or a remote PostgREST-style service.
// Every Client method is safe on a nil or unconfigured Client and never
// returns an error; failures are logged and reported as false, an empty
// list or a zero rank so the game can carry on.
package leaderboard

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/storage"
)

const (
	// DefaultLimit is the number of rows List returns when limit <= 0.
	DefaultLimit = 50

	// MaxNameLength is the display name cap, in runes.
	MaxNameLength = 20

	// AnonymousName replaces names that sanitise to nothing.
	AnonymousName = "Anonymous"

	requestTimeout = 5 * time.Second
)

// Backend stores board entries.
type Backend interface {
	Configured() bool
	Insert(ctx context.Context, e storage.ScoreEntry) error
	Top(ctx context.Context, board string, order storage.Order, limit int) ([]storage.ScoreEntry, error)
	CountBetter(ctx context.Context, board string, order storage.Order, value float64) (int, error)
}

// Submission is one finished game offered to the board.
type Submission struct {
	DisplayName string
	Value       float64
	SessionID   string
}

// Entry is one ranked row of a board.
type Entry struct {
	Rank            int
	DisplayName     string
	Value           float64
	SessionID       string
	IsCurrentPlayer bool
	Date            time.Time
}

// Client reads and writes a single board.
type Client struct {
	backend Backend
	board   string
	order   storage.Order
	session string
	logger  *log.Logger
}

// New creates a client for the board of mode. sessionID marks the rows
// that belong to the local player.
func New(backend Backend, mode timber.Mode, sessionID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	order := storage.HighFirst
	if mode.LowerIsBetter() {
		order = storage.LowFirst
	}
	return &Client{
		backend: backend,
		board:   string(mode),
		order:   order,
		session: sessionID,
		logger:  logger.With("board", string(mode)),
	}
}

// Board returns the board name.
func (c *Client) Board() string {
	if c == nil {
		return ""
	}
	return c.board
}

// Order returns which end of the board is best.
func (c *Client) Order() storage.Order {
	if c == nil {
		return storage.HighFirst
	}
	return c.order
}

// Configured reports whether the client can reach a backend.
func (c *Client) Configured() bool {
	return c != nil && c.backend != nil && c.backend.Configured()
}

// Submit records s. It makes a single attempt and reports success.
func (c *Client) Submit(ctx context.Context, s Submission) bool {
	if !c.Configured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	err := c.backend.Insert(ctx, storage.ScoreEntry{
		Board:       c.board,
		DisplayName: SanitizeDisplayName(s.DisplayName),
		Value:       s.Value,
		SessionID:   s.SessionID,
	})
	if err != nil {
		c.logger.Warn("score submit failed", "error", err)
		return false
	}
	return true
}

// List returns up to limit entries, best first, ranked from 1.
func (c *Client) List(ctx context.Context, limit int) []Entry {
	if !c.Configured() {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	rows, err := c.backend.Top(ctx, c.board, c.order, limit)
	if err != nil {
		c.logger.Warn("leaderboard fetch failed", "error", err)
		return nil
	}

	entries := make([]Entry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, Entry{
			Rank:            i + 1,
			DisplayName:     r.DisplayName,
			Value:           r.Value,
			SessionID:       r.SessionID,
			IsCurrentPlayer: c.session != "" && r.SessionID == c.session,
			Date:            r.CreatedAt,
		})
	}
	return entries
}

// Rank returns the 1-based position value would take on the board,
// or 0 when it cannot be determined.
func (c *Client) Rank(ctx context.Context, value float64) int {
	if !c.Configured() {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	n, err := c.backend.CountBetter(ctx, c.board, c.order, value)
	if err != nil {
		c.logger.Warn("rank lookup failed", "error", err)
		return 0
	}
	return n + 1
}

var (
	unsafeChars = regexp.MustCompile(`[<>&"']`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeDisplayName trims name, caps it at MaxNameLength runes, strips
// markup characters and collapses whitespace runs to one space.
func SanitizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	name = unsafeChars.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	if name == "" {
		return AnonymousName
	}
	return name
}
