package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestRingRoundTrip(t *testing.T) {
	rb := NewRing(8)
	if rb.Readable() != 0 {
		t.Fatalf("new ring readable = %d", rb.Readable())
	}
	for i := 0; i < 5; i++ {
		rb.Overwrite(uint8(i + 10))
	}
	if got := rb.Readable(); got != 5 {
		t.Fatalf("readable = %d, want 5", got)
	}
	for i := 0; i < 5; i++ {
		b, ok := rb.Read()
		if !ok || b != uint8(i+10) {
			t.Fatalf("read %d: got %d ok=%v", i, b, ok)
		}
	}
	if _, ok := rb.Read(); ok {
		t.Fatal("read from empty ring succeeded")
	}
}

func TestRingWritableAccounting(t *testing.T) {
	rb := NewRing(8)
	free := rb.Writable()
	if free < 8 {
		t.Fatalf("ring smaller than requested: writable = %d", free)
	}
	for i := 0; i < free; i++ {
		rb.Overwrite(0)
	}
	if rb.Writable() != 0 {
		t.Fatalf("full ring writable = %d", rb.Writable())
	}
	rb.Read()
	if rb.Writable() != 1 {
		t.Fatalf("after one read writable = %d", rb.Writable())
	}
}

func TestRingWrapsAroundManyTimes(t *testing.T) {
	rb := NewRing(4)
	next := uint8(0)
	for round := 0; round < 1000; round++ {
		for rb.Writable() > 0 {
			rb.Overwrite(next)
			next++
		}
		want := next - uint8(rb.Readable())
		for {
			b, ok := rb.Read()
			if !ok {
				break
			}
			if b != want {
				t.Fatalf("round %d: got %d, want %d", round, b, want)
			}
			want++
		}
	}
}

func TestStreamConvertsAndHoldsLastSample(t *testing.T) {
	rb := NewRing(16)
	rb.Overwrite(128) // midpoint -> 0.0
	rb.Overwrite(255) // near full scale
	rb.Overwrite(0)   // negative rail

	s := NewStream(rb, nil)
	p := make([]byte, 5*8)
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = (%d, %v)", n, err)
	}

	frame := func(i int) (float32, float32) {
		l := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8:]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8+4:]))
		return l, r
	}
	if l, r := frame(0); l != 0 || r != 0 {
		t.Errorf("frame 0 = (%g, %g), want midpoint silence", l, r)
	}
	if l, _ := frame(1); l <= 0.9 {
		t.Errorf("frame 1 = %g, want near +1", l)
	}
	if l, _ := frame(2); l != -1 {
		t.Errorf("frame 2 = %g, want -1", l)
	}
	// Ring exhausted with no pump: the last sample holds.
	if l3, _ := frame(3); l3 != -1 {
		t.Errorf("underrun frame = %g, want held -1", l3)
	}
	if l4, _ := frame(4); l4 != -1 {
		t.Errorf("underrun frame = %g, want held -1", l4)
	}
}

func TestStreamPumpsWhenRingRunsDry(t *testing.T) {
	rb := NewRing(16)
	calls := 0
	s := NewStream(rb, func() {
		calls++
		for rb.Writable() > 0 {
			rb.Overwrite(200)
		}
	})
	p := make([]byte, 4*8)
	if _, err := s.Read(p); err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Fatal("pump never invoked")
	}
	l := math.Float32frombits(binary.LittleEndian.Uint32(p[0:]))
	if want := (float32(200) - 128) / 128; l != want {
		t.Errorf("pumped frame = %g, want %g", l, want)
	}
}
