package drums

import (
	"time"

	"github.com/bjoeri/anushri/internal/noise"
	"github.com/bjoeri/anushri/internal/resources"
)

const (
	// SampleRate is the renderer's output rate, the 20 MHz master clock of
	// the emulated voice board divided by 512.
	SampleRate = 39062
	// BlockSize is the number of samples synthesized per modulation update.
	BlockSize = 40
)

// Instrument selects one of the three percussion voices.
type Instrument uint8

const (
	BassDrum Instrument = iota
	Snare
	HiHat
	NumInstruments
)

// Param names the six patch bytes in their canonical order. The order is
// load-bearing: CC dispatch resolves (instrument, param) pairs against it.
type Param uint8

const (
	ParamPitch Param = iota
	ParamPitchDecay
	ParamPitchMod
	ParamAmpDecay
	ParamCrunchiness
	ParamLevel
	NumParams
)

// Patch holds the control bytes of one voice.
type Patch struct {
	Pitch       uint8
	PitchDecay  uint8
	PitchMod    uint8
	AmpDecay    uint8
	Crunchiness uint8
	Level       uint8
}

func (p *Patch) field(param Param) *uint8 {
	switch param {
	case ParamPitch:
		return &p.Pitch
	case ParamPitchDecay:
		return &p.PitchDecay
	case ParamPitchMod:
		return &p.PitchMod
	case ParamAmpDecay:
		return &p.AmpDecay
	case ParamCrunchiness:
		return &p.Crunchiness
	default:
		return &p.Level
	}
}

// presetTone is the morphable part of a patch: pitch, pitch decay,
// pitch mod, amp decay, crunchiness. Level belongs to the mix controls.
type presetTone [5]uint8

// Five authored tones per instrument, swept pairwise by MorphPatch. The
// hi-hat runs the OPL2-style operator pair, so its pitch byte is the second
// operator's code (132 ≈ 339 Hz, putting the first operator near 508 Hz)
// and crunchiness sets the noise depth: 255 is a hi-hat, low values ring
// like a cymbal.
var factoryPresets = [NumInstruments][5]presetTone{
	BassDrum: {
		{60, 18, 104, 120, 0},
		{56, 60, 120, 150, 0},
		{60, 42, 130, 180, 14},
		{72, 20, 66, 224, 0},
		{42, 52, 106, 160, 60},
	},
	Snare: {
		{108, 18, 16, 72, 64},
		{108, 36, 32, 96, 140},
		{108, 36, 50, 90, 180},
		{116, 36, 32, 80, 150},
		{124, 40, 190, 90, 40},
	},
	HiHat: {
		{132, 0, 0, 80, 255},
		{134, 0, 0, 80, 255},
		{134, 0, 0, 90, 32},
		{134, 0, 0, 90, 255},
		{134, 0, 0, 45, 255},
	},
}

// ccTargets maps controllers 16..30 onto patch fields: six bass drum
// controls, six snare controls, then hi-hat pitch, amp decay and level.
var ccTargets = [15]struct {
	inst  Instrument
	param Param
}{
	{BassDrum, ParamPitch}, {BassDrum, ParamPitchDecay}, {BassDrum, ParamPitchMod},
	{BassDrum, ParamAmpDecay}, {BassDrum, ParamCrunchiness}, {BassDrum, ParamLevel},
	{Snare, ParamPitch}, {Snare, ParamPitchDecay}, {Snare, ParamPitchMod},
	{Snare, ParamAmpDecay}, {Snare, ParamCrunchiness}, {Snare, ParamLevel},
	{HiHat, ParamPitch}, {HiHat, ParamAmpDecay}, {HiHat, ParamLevel},
}

// voice is the render state of one instrument. The hi-hat repurposes the
// pitch envelope slot as its second operator: phase and increment instead
// of a decay ramp.
type voice struct {
	phase          uint16
	phaseIncrement uint16
	pitchEnv       envelope
	ampEnv         envelope
	level          uint8
	ampLevel       uint8
	ampLevelNoise  uint8
}

// Sink receives rendered samples; the audio layer's ring buffer implements
// it. Writable is checked before each block, Overwrite is unchecked.
type Sink interface {
	Writable() int
	Overwrite(s uint8)
}

// NoiseSource supplies the random bytes behind bass drum pitch jitter and
// the renderer's per-block noise seed.
type NoiseSource interface {
	// Byte advances the source and returns its high byte.
	Byte() uint8
	// Peek returns the current high byte without advancing.
	Peek() uint8
}

// Params configures an Engine. Zero values select the factory resource
// bank, a default-seeded noise source and a wall-clock millisecond timer.
type Params struct {
	Bank  *resources.Bank
	Noise NoiseSource
	Now   func() uint32
}

func DefaultParams() Params { return Params{} }

// Engine is the percussion voice core: three fixed-point drum voices
// rendered into a byte sink in blocks of BlockSize samples. It is
// single-threaded; callers running control and render paths on different
// goroutines must serialize access themselves.
type Engine struct {
	bank *resources.Bank
	sink Sink
	rng  NoiseSource
	now  func() uint32

	patch [NumInstruments]Patch
	state [NumInstruments]voice

	decimation    uint8 // each latched sample is held decimation+1 ticks
	sampleCounter uint8
	sample        uint8 // last latched output, also the silence fill value
	fadeCounter   uint8
	playing       bool
	lastTrigger   uint32
}

func New(sink Sink, params Params) *Engine {
	e := &Engine{
		bank: params.Bank,
		sink: sink,
		rng:  params.Noise,
		now:  params.Now,
	}
	if e.bank == nil {
		e.bank = resources.Default()
	}
	if e.rng == nil {
		e.rng = noise.New(0)
	}
	if e.now == nil {
		start := time.Now()
		e.now = func() uint32 {
			return uint32(time.Since(start) / time.Millisecond)
		}
	}
	return e
}

// Trigger starts an instrument: phases reset, decay increments reload from
// the patch, and the voice level becomes velocity scaled by the patch level.
// Retriggering abandons any in-flight decay without a crossfade.
func (e *Engine) Trigger(inst Instrument, velocity uint8) {
	if inst >= NumInstruments {
		return
	}
	e.lastTrigger = e.now()
	p := &e.patch[inst]
	st := &e.state[inst]
	st.phase = 0
	st.pitchEnv = envelope{increment: e.bank.Word(resources.LutDrumEnvIncrements, int(p.PitchDecay))}
	st.ampEnv = envelope{increment: e.bank.Word(resources.LutDrumEnvIncrements, int(p.AmpDecay))}
	st.level = mulHi(velocity, p.Level)
	e.playing = true
}

// MorphPatch sweeps the instrument's tone through its five factory presets:
// the value's top two bits pick a preset pair, the remaining bits blend
// between the pair. The blend is spread to the full byte range, so each
// quadrant opens exactly on a preset and value 255 lands within one LSB of
// the last one.
func (e *Engine) MorphPatch(inst Instrument, value uint8) {
	if inst >= NumInstruments {
		return
	}
	a := &factoryPresets[inst][value>>6]
	b := &factoryPresets[inst][value>>6+1]
	blend := value << 2
	blend |= blend >> 6
	p := &e.patch[inst]
	for i := Param(0); i < ParamLevel; i++ {
		*p.field(i) = mix8(a[i], b[i], blend)
	}
}

// SetParameterCC applies a 7-bit controller value to the patch field mapped
// at that controller number. Controllers outside 16..30 are ignored.
func (e *Engine) SetParameterCC(cc, value uint8) {
	if cc < 16 || cc > 30 {
		return
	}
	t := ccTargets[cc-16]
	*e.patch[t.inst].field(t.param) = value << 1
}

// SetBandwidth maps a brightness byte onto the output decimation: 255 is
// clean, lower values hold each sample longer for a darker, dirtier sound.
func (e *Engine) SetBandwidth(bandwidth uint8) {
	e.decimation = ^bandwidth >> 3
}

// SetBalance crossfades bass drum against snare with a single knob, keeping
// the hi-hat at half the snare level.
func (e *Engine) SetBalance(mix uint8) {
	if mix < 128 {
		e.patch[BassDrum].Level = 255
		e.patch[Snare].Level = mix << 1
	} else {
		e.patch[BassDrum].Level = ^((mix - 128) << 1)
		e.patch[Snare].Level = 255
	}
	e.patch[HiHat].Level = e.patch[Snare].Level >> 1
}

// SetPatch replaces an instrument's patch wholesale.
func (e *Engine) SetPatch(inst Instrument, p Patch) {
	if inst >= NumInstruments {
		return
	}
	e.patch[inst] = p
}

// PatchAt returns a copy of an instrument's current patch.
func (e *Engine) PatchAt(inst Instrument) Patch {
	if inst >= NumInstruments {
		return Patch{}
	}
	return e.patch[inst]
}

// Playing reports whether any voice's amplitude envelope was still running
// at the last modulation update.
func (e *Engine) Playing() bool { return e.playing }

// IdleMillis returns the milliseconds elapsed since the last trigger.
func (e *Engine) IdleMillis() uint32 { return e.now() - e.lastTrigger }
