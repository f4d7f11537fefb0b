// Package profile persists the local player's data: best results, the
// last display name, the session id and settings. Every failure is
// logged and swallowed; a broken store only means nothing is remembered.
package profile

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/timber/internal/games/timber"
)

const documentVersion = 1

// KV is a document store. storage.Store implements it.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// PlayerData is the player document.
type PlayerData struct {
	Version          int       `yaml:"version"`
	BestScore        int       `yaml:"best_score"`
	BestTime         float64   `yaml:"best_time_ms"` // 0 means no finished run
	LastDisplayName  string    `yaml:"last_display_name"`
	SessionID        string    `yaml:"session_id"`
	TotalGamesPlayed int       `yaml:"total_games_played"`
	LastPlayedAt     time.Time `yaml:"last_played_at"`
}

// Settings is the settings document.
type Settings struct {
	Version int  `yaml:"version"`
	Muted   bool `yaml:"muted"`
}

// Profile is the persistence facade for one player.
type Profile struct {
	kv        KV
	namespace string
	logger    *log.Logger

	now   func() time.Time
	newID func() string
}

// New creates a profile stored under namespace ("local", or the SSH
// user name).
func New(kv KV, namespace string, logger *log.Logger) *Profile {
	if logger == nil {
		logger = log.Default()
	}
	return &Profile{
		kv:        kv,
		namespace: namespace,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (p *Profile) key(name string) string {
	return p.namespace + "/" + name
}

// load decodes a document into out. It reports false when the document
// is missing or unreadable.
func (p *Profile) load(name string, out any) bool {
	data, ok, err := p.kv.Get(p.key(name))
	if err != nil {
		p.logger.Warn("profile read failed", "key", p.key(name), "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		p.logger.Debug("profile document corrupt, using defaults", "key", p.key(name), "error", err)
		return false
	}
	return true
}

func (p *Profile) save(name string, doc any) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		p.logger.Warn("profile encode failed", "key", p.key(name), "error", err)
		return
	}
	if err := p.kv.Set(p.key(name), data); err != nil {
		p.logger.Warn("profile write failed", "key", p.key(name), "error", err)
	}
}

// Player returns the player document, creating it on first use.
func (p *Profile) Player() PlayerData {
	var d PlayerData
	if !p.load("player", &d) {
		d = PlayerData{}
	} else if d.SessionID != "" {
		return d
	}
	if d.SessionID == "" {
		d.SessionID = p.newID()
	}
	if d.LastPlayedAt.IsZero() {
		d.LastPlayedAt = p.now()
	}
	p.savePlayer(d)
	return d
}

func (p *Profile) savePlayer(d PlayerData) {
	d.Version = documentVersion
	p.save("player", d)
}

// Best returns the stored best for a mode. A time of 0 means no record.
func (p *Profile) Best(mode timber.Mode) float64 {
	d := p.Player()
	if mode == timber.ModeTimeTrial {
		return d.BestTime
	}
	return float64(d.BestScore)
}

// SetBest stores v if it beats the current best for the mode and
// reports whether it did.
func (p *Profile) SetBest(mode timber.Mode, v float64) bool {
	d := p.Player()
	switch mode {
	case timber.ModeTimeTrial:
		if v <= 0 || (d.BestTime != 0 && v >= d.BestTime) {
			return false
		}
		d.BestTime = v
	default:
		if int(v) <= d.BestScore {
			return false
		}
		d.BestScore = int(v)
	}
	p.savePlayer(d)
	return true
}

// LastDisplayName returns the name used for the last submission.
func (p *Profile) LastDisplayName() string {
	return p.Player().LastDisplayName
}

// SetLastDisplayName remembers the name for the next game over.
func (p *Profile) SetLastDisplayName(name string) {
	d := p.Player()
	d.LastDisplayName = name
	p.savePlayer(d)
}

// SessionID returns the stable id that marks this player's entries.
func (p *Profile) SessionID() string {
	return p.Player().SessionID
}

// IncrementGamesPlayed counts a started game.
func (p *Profile) IncrementGamesPlayed() {
	d := p.Player()
	d.TotalGamesPlayed++
	d.LastPlayedAt = p.now()
	p.savePlayer(d)
}

// Muted returns the saved mute setting.
func (p *Profile) Muted() bool {
	var s Settings
	p.load("settings", &s)
	return s.Muted
}

// SetMuted saves the mute setting.
func (p *Profile) SetMuted(muted bool) {
	p.save("settings", Settings{Version: documentVersion, Muted: muted})
}

// Reset forgets everything stored for this player. The next access
// starts a fresh player with a new session id. Unlike the other
// operations it reports failures, since the caller asked for it.
func (p *Profile) Reset() error {
	for _, name := range []string{"player", "settings"} {
		if err := p.kv.Delete(p.key(name)); err != nil {
			return fmt.Errorf("profile: reset %s: %w", p.namespace, err)
		}
	}
	p.logger.Info("profile reset", "namespace", p.namespace)
	return nil
}

// MemoryKV is an in-process KV, used when no database is available.
type MemoryKV struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryKV creates an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{docs: make(map[string][]byte)}
}

// Get returns a copy of the stored document.
func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value.
func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a document.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}
