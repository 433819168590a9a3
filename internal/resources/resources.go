package resources

// WavID keys the 8-bit wave tables of a Bank.
type WavID uint8

const (
	WavDrumEnvelope WavID = iota
	WavSine
	numWavs
)

// LutID keys the 16-bit lookup tables of a Bank.
type LutID uint8

const (
	LutDrumEnvIncrements LutID = iota
	LutDrumPhaseIncrements
	numLuts
)

// Bank is a read-only catalog of waveform and lookup tables. Tables read
// through Interpolated or InterpolateIncreasing carry one guard entry past
// the indexable range, so a 16-bit phase can always blend toward entry+1.
type Bank struct {
	wavs [numWavs][]uint8
	luts [numLuts][]uint16
}

var factory Bank

// Default returns the built-in factory bank.
func Default() *Bank {
	return &factory
}

// NewBank assembles a bank from caller-provided tables, indexed by their
// IDs. Nil entries (or IDs past the end of a slice) fall back to the
// factory data.
func NewBank(wavs [][]uint8, luts [][]uint16) *Bank {
	b := factory
	for id, t := range wavs {
		if t != nil && id < int(numWavs) {
			b.wavs[id] = t
		}
	}
	for id, t := range luts {
		if t != nil && id < int(numLuts) {
			b.luts[id] = t
		}
	}
	return &b
}

// Byte reads one entry of an 8-bit table. Out-of-range indexes clamp to the
// table edges.
func (b *Bank) Byte(id WavID, i int) uint8 {
	t := b.wavs[id]
	if i < 0 {
		i = 0
	}
	if i >= len(t) {
		i = len(t) - 1
	}
	return t[i]
}

// Word reads one entry of a 16-bit table. Out-of-range indexes clamp to the
// table edges.
func (b *Bank) Word(id LutID, i int) uint16 {
	t := b.luts[id]
	if i < 0 {
		i = 0
	}
	if i >= len(t) {
		i = len(t) - 1
	}
	return t[i]
}

// Interpolated samples an 8-bit table at a 16-bit phase: the high byte
// indexes, the low byte blends linearly between adjacent entries.
func (b *Bank) Interpolated(id WavID, phase uint16) uint8 {
	t := b.wavs[id]
	i := int(phase >> 8)
	a := int(t[i])
	d := int(t[i+1]) - a
	return uint8(a + ((d * int(phase&0xff)) >> 8))
}

// InterpolateIncreasing samples a monotonically nondecreasing 16-bit table
// at a 16-bit position, blending between adjacent entries by the low byte.
func (b *Bank) InterpolateIncreasing(id LutID, x uint16) uint16 {
	t := b.luts[id]
	i := int(x >> 8)
	a := t[i]
	return a + uint16((uint32(t[i+1]-a)*uint32(x&0xff))>>8)
}
