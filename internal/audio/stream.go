package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Pump refills the ring between reads: render when the engine has work,
// fill silence otherwise. It runs on the audio thread; keep it bounded.
type Pump func()

// Stream adapts the ring to the audio backend. Each Read drains buffered
// samples into float32 stereo frames, invoking the pump whenever the ring
// runs dry; if the pump produces nothing, the last sample is repeated, the
// way a DAC holds its output.
type Stream struct {
	mu   sync.Mutex
	ring *Ring
	pump Pump
	last uint8
}

func NewStream(ring *Ring, pump Pump) *Stream {
	return &Stream{ring: ring, pump: pump}
}

func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	for i := 0; i < frames; i++ {
		b, ok := s.ring.Read()
		if !ok && s.pump != nil {
			s.pump()
			b, ok = s.ring.Read()
		}
		if ok {
			s.last = b
		}
		u := math.Float32bits((float32(s.last) - 128) / 128)
		binary.LittleEndian.PutUint32(p[i*8:], u)
		binary.LittleEndian.PutUint32(p[i*8+4:], u)
	}
	return frames * 8, nil
}

func (s *Stream) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func NewPlayer(sampleRate int, stream *Stream) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(stream)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: stream,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
