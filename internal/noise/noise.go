package noise

// DefaultSeed is the register's power-on value. Any nonzero seed works; zero
// would lock the register at zero forever.
const DefaultSeed = 0x21

// Generator is a 16-bit Galois LFSR with taps 0xb400. It is the shared
// pseudo-random source behind bass drum pitch jitter and the per-block seed
// of the renderer's noise generator.
type Generator struct {
	state uint16
}

// New returns a generator seeded with seed, or DefaultSeed if seed is zero.
func New(seed uint16) *Generator {
	if seed == 0 {
		seed = DefaultSeed
	}
	return &Generator{state: seed}
}

// Byte advances the register once and returns its high byte.
func (g *Generator) Byte() uint8 {
	g.state = (g.state >> 1) ^ (-(g.state & 1) & 0xb400)
	return uint8(g.state >> 8)
}

// Peek returns the current high byte without advancing.
func (g *Generator) Peek() uint8 {
	return uint8(g.state >> 8)
}
