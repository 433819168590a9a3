package drums

import (
	"testing"

	"github.com/bjoeri/anushri/internal/resources"
)

// captureSink grants render room in explicit steps so tests control exactly
// how many blocks run.
type captureSink struct {
	buf  []uint8
	room int
}

func (c *captureSink) Writable() int { return c.room }

func (c *captureSink) Overwrite(s uint8) {
	c.buf = append(c.buf, s)
	c.room--
}

func (c *captureSink) allow(n int) { c.room += n }

func newEngine(room int) (*Engine, *captureSink) {
	sink := &captureSink{}
	sink.allow(room)
	e := New(sink, Params{Now: func() uint32 { return 0 }})
	return e, sink
}

func TestTriggerInitializesVoice(t *testing.T) {
	e, _ := newEngine(0)
	e.SetPatch(BassDrum, Patch{Pitch: 60, PitchDecay: 18, PitchMod: 104, AmpDecay: 120, Level: 255})
	e.Trigger(BassDrum, 200)

	st := &e.state[BassDrum]
	if st.phase != 0 || st.ampEnv.phase != 0 || st.pitchEnv.phase != 0 {
		t.Errorf("phases not reset: %d %d %d", st.phase, st.ampEnv.phase, st.pitchEnv.phase)
	}
	bank := resources.Default()
	if want := bank.Word(resources.LutDrumEnvIncrements, 120); st.ampEnv.increment != want {
		t.Errorf("amp increment = %d, want %d", st.ampEnv.increment, want)
	}
	if want := bank.Word(resources.LutDrumEnvIncrements, 18); st.pitchEnv.increment != want {
		t.Errorf("pitch increment = %d, want %d", st.pitchEnv.increment, want)
	}
	if want := uint8(uint16(200) * 255 >> 8); st.level != want {
		t.Errorf("level = %d, want %d", st.level, want)
	}
	if !e.Playing() {
		t.Error("engine not playing after trigger")
	}
}

func TestMorphZeroReproducesFirstPreset(t *testing.T) {
	e, _ := newEngine(0)
	for inst := Instrument(0); inst < NumInstruments; inst++ {
		e.patch[inst].Level = 77 // morph must not touch the level
		e.MorphPatch(inst, 0)
		got := e.PatchAt(inst)
		want := factoryPresets[inst][0]
		fields := [5]uint8{got.Pitch, got.PitchDecay, got.PitchMod, got.AmpDecay, got.Crunchiness}
		if fields != [5]uint8(want) {
			t.Errorf("instrument %d: got %v, want %v", inst, fields, want)
		}
		if got.Level != 77 {
			t.Errorf("instrument %d: morph overwrote level (%d)", inst, got.Level)
		}
	}
}

func TestMorphQuadrantStartsAreExactPresets(t *testing.T) {
	e, _ := newEngine(0)
	for _, tc := range []struct {
		value  uint8
		preset int
	}{{0, 0}, {64, 1}, {128, 2}, {192, 3}} {
		e.MorphPatch(Snare, tc.value)
		got := e.PatchAt(Snare)
		want := factoryPresets[Snare][tc.preset]
		fields := [5]uint8{got.Pitch, got.PitchDecay, got.PitchMod, got.AmpDecay, got.Crunchiness}
		if fields != [5]uint8(want) {
			t.Errorf("value %d: got %v, want preset %d %v", tc.value, fields, tc.preset, want)
		}
	}
}

func TestMorphTopOfRangeReachesBoundaryPreset(t *testing.T) {
	e, _ := newEngine(0)
	for inst := Instrument(0); inst < NumInstruments; inst++ {
		e.MorphPatch(inst, 255)
		got := e.PatchAt(inst)
		want := factoryPresets[inst][4]
		fields := [5]uint8{got.Pitch, got.PitchDecay, got.PitchMod, got.AmpDecay, got.Crunchiness}
		for i := range fields {
			d := int(fields[i]) - int(want[i])
			if d < -1 || d > 1 {
				t.Errorf("instrument %d field %d: got %d, want %d ±1", inst, i, fields[i], want[i])
			}
		}
	}
}

func TestMorphStaysInsideInstrumentRow(t *testing.T) {
	// Hi-hat at 255 blends its own presets 3 and 4; pitch must stay in the
	// hi-hat register, nowhere near another instrument's values.
	e, _ := newEngine(0)
	e.MorphPatch(HiHat, 255)
	if p := e.PatchAt(HiHat).Pitch; p < 130 || p > 136 {
		t.Errorf("hi-hat pitch = %d after full morph, want one of its own presets", p)
	}
}

func TestSetParameterCCRangeAndMapping(t *testing.T) {
	e, _ := newEngine(0)
	before := e.patch
	e.SetParameterCC(15, 99)
	e.SetParameterCC(31, 99)
	if e.patch != before {
		t.Error("out-of-range controllers modified the patch table")
	}

	e.SetParameterCC(16, 30)
	if got := e.PatchAt(BassDrum).Pitch; got != 60 {
		t.Errorf("cc 16 wrote bass pitch %d, want 60", got)
	}
	e.SetParameterCC(21, 100)
	if got := e.PatchAt(BassDrum).Level; got != 200 {
		t.Errorf("cc 21 wrote bass level %d, want 200", got)
	}
	e.SetParameterCC(22, 54)
	if got := e.PatchAt(Snare).Pitch; got != 108 {
		t.Errorf("cc 22 wrote snare pitch %d, want 108", got)
	}
	e.SetParameterCC(28, 66)
	if got := e.PatchAt(HiHat).Pitch; got != 132 {
		t.Errorf("cc 28 wrote hi-hat pitch %d, want 132", got)
	}
	e.SetParameterCC(29, 40)
	if got := e.PatchAt(HiHat).AmpDecay; got != 80 {
		t.Errorf("cc 29 wrote hi-hat amp decay %d, want 80", got)
	}
	e.SetParameterCC(30, 63)
	if got := e.PatchAt(HiHat).Level; got != 126 {
		t.Errorf("cc 30 wrote hi-hat level %d, want 126", got)
	}
}

func TestSetBalanceExtremesAndMidpoint(t *testing.T) {
	e, _ := newEngine(0)

	e.SetBalance(0)
	if bd, sd, hh := e.patch[BassDrum].Level, e.patch[Snare].Level, e.patch[HiHat].Level; bd != 255 || sd != 0 || hh != 0 {
		t.Errorf("balance 0: levels %d/%d/%d, want 255/0/0", bd, sd, hh)
	}

	e.SetBalance(255)
	if bd, sd, hh := e.patch[BassDrum].Level, e.patch[Snare].Level, e.patch[HiHat].Level; bd != 1 || sd != 255 || hh != 127 {
		t.Errorf("balance 255: levels %d/%d/%d, want 1/255/127", bd, sd, hh)
	}

	e.SetBalance(128)
	if bd, sd, hh := e.patch[BassDrum].Level, e.patch[Snare].Level, e.patch[HiHat].Level; bd != 255 || sd != 255 || hh != 127 {
		t.Errorf("balance 128: levels %d/%d/%d, want 255/255/127", bd, sd, hh)
	}
}

func TestSetBandwidthMapsToDecimation(t *testing.T) {
	e, _ := newEngine(0)
	for _, tc := range []struct{ bw, want uint8 }{
		{255, 0},
		{0, 31},
		{135, 15},
	} {
		e.SetBandwidth(tc.bw)
		if e.decimation != tc.want {
			t.Errorf("bandwidth %d: decimation %d, want %d", tc.bw, e.decimation, tc.want)
		}
	}
}

func TestIdleMillisTracksLastTrigger(t *testing.T) {
	now := uint32(1000)
	sink := &captureSink{}
	e := New(sink, Params{Now: func() uint32 { return now }})
	e.Trigger(Snare, 127)
	now = 1250
	if got := e.IdleMillis(); got != 250 {
		t.Errorf("idle = %d ms, want 250", got)
	}
	now = 1300
	e.Trigger(HiHat, 127)
	now = 1320
	if got := e.IdleMillis(); got != 20 {
		t.Errorf("idle after retrigger = %d ms, want 20", got)
	}
}

func TestOutOfRangeInstrumentIsIgnored(t *testing.T) {
	e, _ := newEngine(0)
	before := e.patch
	e.Trigger(NumInstruments, 255)
	e.MorphPatch(Instrument(9), 10)
	e.SetPatch(Instrument(200), Patch{Pitch: 1})
	if e.patch != before {
		t.Error("out-of-range instrument modified state")
	}
	if e.Playing() {
		t.Error("out-of-range trigger started playback")
	}
	if e.PatchAt(Instrument(9)) != (Patch{}) {
		t.Error("out-of-range PatchAt returned data")
	}
}
