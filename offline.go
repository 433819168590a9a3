package anushri

import (
	"encoding/binary"
	"sort"
	"time"

	intdrums "github.com/bjoeri/anushri/internal/drums"
	intnoise "github.com/bjoeri/anushri/internal/noise"
)

// Hit is one scheduled trigger in an offline render.
type Hit struct {
	At         time.Duration
	Instrument Instrument
	Velocity   uint8
}

// renderSink meters out room one block at a time so triggers land on block
// boundaries, the same granularity the realtime control path has.
type renderSink struct {
	buf  []uint8
	room int
}

func (s *renderSink) Writable() int { return s.room }

func (s *renderSink) Overwrite(b uint8) {
	s.buf = append(s.buf, b)
	s.room--
}

// RenderSamples synthesizes a hit sequence into unsigned 8-bit mono samples,
// exactly as the realtime path would produce them. Hits may arrive in any
// order; hits past the requested duration never fire.
func RenderSamples(hits []Hit, d time.Duration, opts ...PlayerOption) []uint8 {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	total := int(int64(d) * SampleRate / int64(time.Second))
	if total <= 0 {
		return nil
	}
	sink := &renderSink{buf: make([]uint8, 0, total+BlockSize)}
	params := intdrums.DefaultParams()
	params.Noise = intnoise.New(cfg.seed)
	params.Now = func() uint32 {
		return uint32(int64(len(sink.buf)) * 1000 / SampleRate)
	}
	engine := intdrums.New(sink, params)
	for inst := Instrument(0); inst < NumInstruments; inst++ {
		engine.MorphPatch(inst, cfg.morph[inst])
	}
	engine.SetBalance(cfg.balance)
	engine.SetBandwidth(cfg.bandwidth)

	sorted := make([]Hit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	next := 0
	blocks := (total + BlockSize - 1) / BlockSize
	for b := 0; b < blocks; b++ {
		for next < len(sorted) && hitSample(sorted[next]) <= len(sink.buf) {
			engine.Trigger(sorted[next].Instrument, sorted[next].Velocity)
			next++
		}
		sink.room = BlockSize
		if engine.Playing() {
			engine.Render()
		} else {
			engine.FillWithSilence()
		}
	}
	return sink.buf[:total]
}

func hitSample(h Hit) int {
	if h.At <= 0 {
		return 0
	}
	return int(int64(h.At) * SampleRate / int64(time.Second))
}

// EncodeWAVPCM8 wraps unsigned 8-bit mono samples in a RIFF WAV container.
func EncodeWAVPCM8(samples []uint8, sampleRate int) []byte {
	dataSize := len(samples)
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 1)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate))
	binary.LittleEndian.PutUint16(out[32:], 1)
	binary.LittleEndian.PutUint16(out[34:], 8)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	copy(out[44:], samples)
	return out
}
