package anushri

import (
	"sync"
	"time"

	intaudio "github.com/bjoeri/anushri/internal/audio"
	intdrums "github.com/bjoeri/anushri/internal/drums"
	intnoise "github.com/bjoeri/anushri/internal/noise"
)

// Instrument selects one of the three drum voices.
type Instrument = intdrums.Instrument

// Patch holds the tone parameters of one voice.
type Patch = intdrums.Patch

const (
	BassDrum       = intdrums.BassDrum
	Snare          = intdrums.Snare
	HiHat          = intdrums.HiHat
	NumInstruments = intdrums.NumInstruments
)

// SampleRate is the fixed output rate, a 20 MHz master clock divided by 512.
const SampleRate = intdrums.SampleRate

// BlockSize is the synthesis granularity in samples.
const BlockSize = intdrums.BlockSize

type PlayerOption func(*playerConfig)

type playerConfig struct {
	balance   uint8
	bandwidth uint8
	morph     [NumInstruments]uint8
	seed      uint16
	ringSize  int
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{balance: 128, bandwidth: 255, ringSize: 4 * BlockSize}
}

// WithBalance sets the bass/snare level crossfade; 128 keeps both at full.
func WithBalance(mix uint8) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.balance = mix
	}
}

// WithBandwidth sets output decimation; 255 is the full sample rate.
func WithBandwidth(bandwidth uint8) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.bandwidth = bandwidth
	}
}

// WithMorph positions an instrument along its factory preset bank.
func WithMorph(inst Instrument, value uint8) PlayerOption {
	return func(cfg *playerConfig) {
		if inst < NumInstruments {
			cfg.morph[inst] = value
		}
	}
}

// WithNoiseSeed fixes the noise generator seed for reproducible output.
func WithNoiseSeed(seed uint16) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.seed = seed
	}
}

// WithRingSize overrides the synthesis-to-playback buffer depth in samples.
// Smaller cuts latency, larger survives scheduling hiccups; the default
// holds four blocks.
func WithRingSize(samples int) PlayerOption {
	return func(cfg *playerConfig) {
		if samples > 0 {
			cfg.ringSize = samples
		}
	}
}

// Player owns a drum engine and feeds the audio device on demand. Control
// methods are safe to call while audio runs; the player's mutex is the only
// thing between the control surface and the render path.
type Player struct {
	mu     sync.Mutex
	engine *intdrums.Engine
	ring   *intaudio.Ring
	audio  *intaudio.Player
}

func NewPlayer(opts ...PlayerOption) *Player {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Player{ring: intaudio.NewRing(cfg.ringSize)}
	params := intdrums.DefaultParams()
	params.Noise = intnoise.New(cfg.seed)
	p.engine = intdrums.New(p.ring, params)
	for inst := Instrument(0); inst < NumInstruments; inst++ {
		p.engine.MorphPatch(inst, cfg.morph[inst])
	}
	p.engine.SetBalance(cfg.balance)
	p.engine.SetBandwidth(cfg.bandwidth)
	return p
}

// pump refills the ring when the stream runs dry. It runs on the audio
// goroutine.
func (p *Player) pump() {
	p.mu.Lock()
	if p.engine.Playing() {
		p.engine.Render()
	} else {
		p.engine.FillWithSilence()
	}
	p.mu.Unlock()
}

// Start opens the audio device and begins playback; the device stays open
// until Stop. Starting an already started player just resumes it.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(SampleRate, intaudio.NewStream(p.ring, p.pump))
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Trigger fires an instrument at the given velocity.
func (p *Player) Trigger(inst Instrument, velocity uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.Trigger(inst, velocity)
}

// MorphPatch sweeps an instrument through its factory presets: 0 is the
// first preset, each following one sits 64 higher.
func (p *Player) MorphPatch(inst Instrument, value uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.MorphPatch(inst, value)
}

// SetParameterCC applies a MIDI CC edit to the mapped patch parameter.
// Controllers outside 16..30 are ignored.
func (p *Player) SetParameterCC(cc, value uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.SetParameterCC(cc, value)
}

func (p *Player) SetBalance(mix uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.SetBalance(mix)
}

func (p *Player) SetBandwidth(bandwidth uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.SetBandwidth(bandwidth)
}

func (p *Player) SetPatch(inst Instrument, patch Patch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engine.SetPatch(inst, patch)
}

func (p *Player) PatchAt(inst Instrument) Patch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.PatchAt(inst)
}

// Playing reports whether any voice is still sounding.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Playing()
}

// IdleTime reports the time since the last trigger.
func (p *Player) IdleTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(p.engine.IdleMillis()) * time.Millisecond
}
