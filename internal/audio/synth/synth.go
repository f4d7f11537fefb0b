// Package synth plays the game's sound effects through the system audio
// device with oto. It needs cgo on most platforms, so only the local
// commands import it; everything else uses audio.Silent.
package synth

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/oto/v2"

	"github.com/vovakirdan/timber/internal/audio"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	bytesPerTick = 8 // two float32 channels

	sfxVolume = 0.6
	maxVoices = 4
)

var _ audio.Player = (*Synth)(nil)

// Synth plays procedurally generated effects through the system audio
// device. Samples are rendered once at construction.
type Synth struct {
	ctx     *oto.Context
	ready   chan struct{}
	samples map[audio.Sound][]byte
	muted   atomic.Bool
	voices  atomic.Int32
	logger  *log.Logger
}

// New opens the default audio device.
func New(logger *log.Logger) (*Synth, error) {
	if logger == nil {
		logger = log.Default()
	}
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("synth: open device: %w", err)
	}
	s := &Synth{
		ctx:     ctx,
		ready:   ready,
		samples: make(map[audio.Sound][]byte, len(audio.Sounds)),
		logger:  logger,
	}
	for _, snd := range audio.Sounds {
		s.samples[snd] = Render(snd)
	}
	return s, nil
}

// Open returns a Synth when the device can be opened and a silent player
// otherwise. The initial mute state is applied to either.
func Open(logger *log.Logger, muted bool) audio.Player {
	if logger == nil {
		logger = log.Default()
	}
	var p audio.Player
	synth, err := New(logger)
	if err != nil {
		logger.Warn("audio disabled", "error", err)
		p = &audio.Silent{}
	} else {
		p = synth
	}
	p.SetMuted(muted)
	return p
}

// Play starts an effect on its own goroutine.
// Effects requested before the device is ready are dropped.
func (s *Synth) Play(snd audio.Sound) {
	if s.muted.Load() {
		return
	}
	select {
	case <-s.ready:
	default:
		return
	}
	data := s.samples[snd]
	if len(data) == 0 {
		return
	}
	if s.voices.Add(1) > maxVoices {
		s.voices.Add(-1)
		return
	}
	go func() {
		defer s.voices.Add(-1)
		player := s.ctx.NewPlayer(&soundReader{data: data})
		player.SetVolume(sfxVolume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			s.logger.Debug("close audio player", "sound", snd, "error", err)
		}
	}()
}

// Muted reports the mute switch.
func (s *Synth) Muted() bool { return s.muted.Load() }

// SetMuted sets the mute switch. Effects already playing finish.
func (s *Synth) SetMuted(muted bool) { s.muted.Store(muted) }

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// Render synthesises an effect as interleaved stereo float32 LE frames.
// Unknown sounds render to nil.
func Render(snd audio.Sound) []byte {
	switch snd {
	case audio.SoundChop:
		return genChop()
	case audio.SoundDeath:
		return genDeath()
	case audio.SoundVictory:
		return genVictory()
	case audio.SoundHighscore:
		return genHighscore()
	}
	return nil
}

// genChop: short square blip sliding 200 Hz down to 100 Hz.
func genChop() []byte {
	n := int(0.08 * SampleRate)
	buf := makeBuf(n)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		freq := expSlide(200, 100, math.Min(p/0.625, 1))
		phase += freq / SampleRate
		env := expSlide(0.2, 0.01, p)
		putStereoF32(buf, i, square(phase)*env)
	}
	return buf
}

// genDeath: sawtooth falling 300 Hz to 50 Hz.
func genDeath() []byte {
	n := int(0.3 * SampleRate)
	buf := makeBuf(n)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		phase += expSlide(300, 50, p) / SampleRate
		env := expSlide(0.3, 0.01, p)
		putStereoF32(buf, i, saw(phase)*env)
	}
	return buf
}

// genHighscore: C major arpeggio, one note every 100 ms.
func genHighscore() []byte {
	return arpeggio([]float64{523.25, 659.25, 783.99, 1046.50}, 0.1, 0.2, 0.2)
}

// genVictory: the arpeggio an octave lower with a held top note.
func genVictory() []byte {
	return arpeggio([]float64{261.63, 329.63, 392.00, 523.25, 1046.50}, 0.12, 0.35, 0.2)
}

// arpeggio overlaps sine notes starting step seconds apart, each
// decaying from gain over length seconds.
func arpeggio(notes []float64, step, length, gain float64) []byte {
	total := step*float64(len(notes)-1) + length
	n := int(total * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		s := 0.0
		for k, freq := range notes {
			local := t - float64(k)*step
			if local < 0 || local >= length {
				continue
			}
			env := expSlide(gain, 0.01, local/length)
			s += math.Sin(2*math.Pi*freq*local) * env
		}
		putStereoF32(buf, i, softClip(s))
	}
	return buf
}

func makeBuf(frames int) []byte {
	return make([]byte, frames*bytesPerTick)
}

// expSlide moves exponentially from a to b as p goes from 0 to 1.
func expSlide(a, b, p float64) float64 {
	return a * math.Pow(b/a, p)
}

func square(phase float64) float64 {
	if math.Mod(phase, 1) < 0.5 {
		return 1
	}
	return -1
}

func saw(phase float64) float64 {
	return 2*math.Mod(phase, 1) - 1
}

// softClip keeps overlapping notes inside [-1, 1].
func softClip(x float64) float64 {
	return math.Tanh(x)
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < ChannelCount; ch++ {
		off := i*bytesPerTick + ch*4
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
}
