package drums

import "github.com/bjoeri/anushri/internal/resources"

// envelope is a one-shot decay ramp: a 16-bit phase climbing by a fixed
// increment per block. When the addition wraps, the phase pins to 0xffff
// and the increment zeroes, so a finished envelope stays finished.
type envelope struct {
	phase     uint16
	increment uint16
}

// advance steps the envelope one block and reports whether it is still
// running afterwards. A zero increment counts as finished.
func (e *envelope) advance() bool {
	if e.increment == 0 {
		return false
	}
	e.phase += e.increment
	if e.phase < e.increment {
		e.phase = 0xffff
		e.increment = 0
		return false
	}
	return true
}

// updateModulations prepares one block: envelopes step, levels rescale and
// each voice's phase increment is rebuilt from its patch.
func (e *Engine) updateModulations() {
	e.playing = false
	for i := Instrument(0); i < NumInstruments; i++ {
		p := &e.patch[i]
		st := &e.state[i]

		if st.ampEnv.advance() {
			e.playing = true
		}
		st.ampLevel = mulHi(st.level,
			e.bank.Interpolated(resources.WavDrumEnvelope, st.ampEnv.phase))

		pitch := uint16(p.Pitch) << 8
		if i == BassDrum {
			// Crunchiness doubles as analog-style pitch instability.
			pitch += mulWide(e.rng.Byte(), p.Crunchiness)
		}
		if i != HiHat {
			st.pitchEnv.advance()
			pitch += mulWide(p.PitchMod,
				e.bank.Interpolated(resources.WavDrumEnvelope, st.pitchEnv.phase))
		}
		st.phaseIncrement = e.bank.InterpolateIncreasing(resources.LutDrumPhaseIncrements, pitch)
		if i == HiHat {
			// The looked-up rate drives the second operator; the first is
			// hard-wired to 3/2 of it, the OPL2's 2:3 coupling.
			st.pitchEnv.increment = st.phaseIncrement
			st.phaseIncrement = st.phaseIncrement * 3 / 2
		}
	}

	// Snare crunchiness splits the voice level between tone and noise.
	sd := &e.state[Snare]
	sd.ampLevelNoise = mulHi(sd.ampLevel, e.patch[Snare].Crunchiness)
	sd.ampLevel = mulHi(sd.ampLevel, ^e.patch[Snare].Crunchiness)
	// Hi-hat crunchiness sets how far odd noise bytes sag below the tone
	// level; the sample-to-sample level jitter is what reads as noise.
	e.state[HiHat].ampLevelNoise = e.patch[HiHat].Crunchiness
}

// Render synthesizes into the sink for as long as a whole block fits, one
// modulation update per block. The decimated output sample and its counter
// survive across calls.
func (e *Engine) Render() {
	sample := e.sample
	counter := e.sampleCounter
	for e.sink.Writable() >= BlockSize {
		e.updateModulations()

		bd := &e.state[BassDrum]
		sd := &e.state[Snare]
		hh := &e.state[HiHat]
		noise := e.rng.Peek()
		phase0 := bd.phase
		phase1 := sd.phase
		phase2 := hh.phase
		phase2b := hh.pitchEnv.phase // second hi-hat operator
		hhNoiseLevel := 120 - scaleSigned(80, hh.ampLevelNoise)

		for i := 0; i < BlockSize; i++ {
			counter++
			noise = noise*73 + 1
			mix := int16(128)

			phase0 += bd.phaseIncrement
			phase1 += sd.phaseIncrement
			phase2 += hh.phaseIncrement
			phase2b += hh.pitchEnv.increment

			// Bass drum: sine with sub-sample interpolation. Adjacent
			// table deltas stay inside ±127, so the blend fits an int8.
			a := int8(e.bank.Byte(resources.WavSine, int(phase0>>8)))
			b := int8(e.bank.Byte(resources.WavSine, int(phase0>>8)+1))
			s := a + scaleSigned(b-a, uint8(phase0))
			mix += int16(scaleSigned(s, bd.ampLevel))

			// Snare: sine body plus noise, pre-split by crunchiness.
			body := int8(e.bank.Byte(resources.WavSine, int(phase1>>8)))
			mix += int16(scaleSigned(body, sd.ampLevel))
			mix += int16(scaleSigned(int8(noise), sd.ampLevelNoise))

			// Hi-hat: OPL2-style square wave at ±120, sagging to the
			// noise level on odd noise bytes.
			level := int8(120)
			if noise&1 != 0 {
				level = hhNoiseLevel
			}
			if hihatInverted(phase2, phase2b) {
				level = -level
			}
			mix += int16(scaleSigned(level, hh.ampLevel))

			if counter > e.decimation {
				sample = clamp8(mix)
				counter = 0
			}
			e.sink.Overwrite(sample)
		}
		bd.phase = phase0
		sd.phase = phase1
		hh.phase = phase2
		hh.pitchEnv.phase = phase2b
	}
	e.sample = sample
	e.sampleCounter = counter
	e.fadeCounter = 255
}

// FillWithSilence keeps the sink fed when nothing plays, easing the held
// sample toward zero one step per fade cycle so gaps never click.
func (e *Engine) FillWithSilence() {
	if e.sample != 0 {
		if e.fadeCounter != 0 {
			e.fadeCounter--
		} else {
			e.fadeCounter = 255
			e.sample--
		}
	}
	for e.sink.Writable() > 0 {
		e.sink.Overwrite(e.sample)
	}
}

// hihatInverted is the OPL2 hi-hat bit recipe: bits 2, 3 and 7 of the first
// operator's high byte and bits 3 and 5 of the second's pick between the
// positive and negative output level.
func hihatInverted(phase1, phase2 uint16) bool {
	hi := uint8(phase1 >> 8)
	bit2 := hi&0x04 != 0
	bit3 := hi&0x08 != 0
	bit7 := hi&0x80 != 0
	hi2 := uint8(phase2 >> 8)
	bit3e := hi2&0x08 != 0
	bit5e := hi2&0x20 != 0
	return bit3 || (bit2 != bit7) || (bit3e != bit5e)
}

// clamp8 saturates a wide mix to the unsigned output range. Overdriven
// voices flatten against the rails instead of wrapping.
func clamp8(mix int16) uint8 {
	if mix > 255 {
		return 255
	}
	if mix < 0 {
		return 0
	}
	return uint8(mix)
}

// mulHi multiplies two bytes, keeping the high byte of the product.
func mulHi(a, b uint8) uint8 {
	return uint8(uint16(a) * uint16(b) >> 8)
}

// mulWide multiplies two bytes into a full 16-bit product.
func mulWide(a, b uint8) uint16 {
	return uint16(a) * uint16(b)
}

// scaleSigned scales a signed byte by an unsigned byte, keeping the high
// byte of the widened product.
func scaleSigned(a int8, b uint8) int8 {
	return int8(int16(a) * int16(b) >> 8)
}

// mix8 blends a toward b with an 8-bit weight; weight 0 returns a exactly.
func mix8(a, b, weight uint8) uint8 {
	return uint8((uint16(a)*(256-uint16(weight)) + uint16(b)*uint16(weight)) >> 8)
}
