package resources

import "math"

// Factory table formulas. All tables are derived at startup rather than
// shipped as blobs; the shapes and anchors below pin them down exactly.
const (
	// envelopeShape sets the steepness of the normalized falling
	// exponential used for both amplitude and pitch decay.
	envelopeShape = 6.0

	// The phase-increment table is a quarter-tone scale (24 codes per
	// octave) anchored so pitch code 132 yields increment 569. At the
	// 39062 Hz output rate that is ~339 Hz, the hi-hat's second-operator
	// reference; bass drum code 60 lands at ~42 Hz, snare 108 at ~170 Hz.
	pitchAnchorIndex     = 132
	pitchAnchorIncrement = 569

	// Envelope increments sweep from 8192 (decay byte 0, eight blocks)
	// down by an octave every 32 codes, reaching ~2 s at 255.
	envIncrementMax    = 8192
	envIncrementOctave = 32
)

var (
	wavSine                [257]uint8
	wavDrumEnvelope        [257]uint8
	lutDrumEnvIncrements   [256]uint16
	lutDrumPhaseIncrements [257]uint16
)

func init() {
	for i := 0; i < 256; i++ {
		s := math.Round(127 * math.Sin(2*math.Pi*float64(i)/256))
		wavSine[i] = uint8(int8(s))
	}
	wavSine[256] = wavSine[0]

	floor := math.Exp(-envelopeShape)
	for i := 0; i <= 256; i++ {
		v := (math.Exp(-envelopeShape*float64(i)/256) - floor) / (1 - floor)
		wavDrumEnvelope[i] = uint8(math.Round(255 * v))
	}

	for i := 0; i < 256; i++ {
		v := envIncrementMax / math.Pow(2, float64(i)/envIncrementOctave)
		lutDrumEnvIncrements[i] = uint16(math.Round(v))
	}

	for i := 0; i <= 256; i++ {
		v := pitchAnchorIncrement * math.Pow(2, float64(i-pitchAnchorIndex)/24)
		lutDrumPhaseIncrements[i] = uint16(math.Round(v))
	}

	factory = Bank{
		wavs: [numWavs][]uint8{
			WavDrumEnvelope: wavDrumEnvelope[:],
			WavSine:         wavSine[:],
		},
		luts: [numLuts][]uint16{
			LutDrumEnvIncrements:   lutDrumEnvIncrements[:],
			LutDrumPhaseIncrements: lutDrumPhaseIncrements[:],
		},
	}
}
