// Package audio defines the game's sound effects and the player the
// simulation talks to. Playback is fire-and-forget: Play never blocks,
// panics or reports errors, so the simulation can call it from the
// frame loop.
package audio

import "sync/atomic"

// Sound names a sound effect.
type Sound string

const (
	SoundChop      Sound = "chop"
	SoundDeath     Sound = "death"
	SoundVictory   Sound = "victory"
	SoundHighscore Sound = "highscore"
)

// Sounds lists every effect in a stable order.
var Sounds = []Sound{SoundChop, SoundDeath, SoundVictory, SoundHighscore}

// Player plays sound effects and carries the mute switch.
type Player interface {
	Play(s Sound)
	Muted() bool
	SetMuted(muted bool)
}

// Silent is a Player with no output device. It is used for SSH
// sessions and when the local device cannot be opened.
type Silent struct {
	muted atomic.Bool
}

// Play does nothing.
func (s *Silent) Play(Sound) {}

// Muted reports the mute switch.
func (s *Silent) Muted() bool { return s.muted.Load() }

// SetMuted sets the mute switch.
func (s *Silent) SetMuted(muted bool) { s.muted.Store(muted) }
