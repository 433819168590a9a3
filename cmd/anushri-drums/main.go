package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bjoeri/anushri"
)

// One bar of sixteenths per instrument. Upper case hits hard, lower case
// soft, anything else rests.
const (
	defaultBass  = "X...x...X...x..."
	defaultSnare = "....X.......X..."
	defaultHihat = "x.x.x.x.x.x.X.x."
)

func main() {
	var (
		bpm       = flag.Int("bpm", 120, "tempo in beats per minute")
		bars      = flag.Int("bars", 4, "bars to play (0 = loop until interrupted)")
		bassPat   = flag.String("bd", defaultBass, "bass drum pattern (X hard, x soft, . rest)")
		snarePat  = flag.String("sd", defaultSnare, "snare pattern")
		hihatPat  = flag.String("hh", defaultHihat, "hi-hat pattern")
		balance   = flag.Int("balance", 128, "bass/snare mix 0..255")
		bandwidth = flag.Int("bandwidth", 255, "output bandwidth 0..255 (low values decimate)")
		morphBass = flag.Int("morph-bd", 0, "bass drum preset morph 0..255")
		morphSn   = flag.Int("morph-sd", 0, "snare preset morph 0..255")
		morphHat  = flag.Int("morph-hh", 0, "hi-hat preset morph 0..255")
		seed      = flag.Int("seed", 0, "noise seed (0 = default)")
		wavPath   = flag.String("wav", "", "render to an 8-bit WAV file instead of playing")
	)
	flag.Parse()

	patterns := [anushri.NumInstruments]string{*bassPat, *snarePat, *hihatPat}
	steps := 0
	for _, pat := range patterns {
		if len(pat) > steps {
			steps = len(pat)
		}
	}
	if steps == 0 {
		log.Fatal("all patterns are empty")
	}
	if *bpm <= 0 {
		log.Fatal("-bpm must be positive")
	}
	stepDur := time.Minute / time.Duration(*bpm*4)

	opts := []anushri.PlayerOption{
		anushri.WithBalance(byteFlag("balance", *balance)),
		anushri.WithBandwidth(byteFlag("bandwidth", *bandwidth)),
		anushri.WithMorph(anushri.BassDrum, byteFlag("morph-bd", *morphBass)),
		anushri.WithMorph(anushri.Snare, byteFlag("morph-sd", *morphSn)),
		anushri.WithMorph(anushri.HiHat, byteFlag("morph-hh", *morphHat)),
	}
	if *seed != 0 {
		if *seed < 0 || *seed > 0xffff {
			log.Fatal("-seed must fit 16 bits")
		}
		opts = append(opts, anushri.WithNoiseSeed(uint16(*seed)))
	}

	if *wavPath != "" {
		renderToFile(*wavPath, patterns, steps, stepDur, *bars, opts)
		return
	}

	pl := anushri.NewPlayer(opts...)
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	ticker := time.NewTicker(stepDur)
	defer ticker.Stop()
	for bar := 0; *bars == 0 || bar < *bars; bar++ {
		for i := 0; i < steps; i++ {
			for inst, pat := range patterns {
				if v := stepVelocity(pat, i); v > 0 {
					pl.Trigger(anushri.Instrument(inst), v)
				}
			}
			<-ticker.C
		}
	}
	for pl.Playing() {
		time.Sleep(10 * time.Millisecond)
	}
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
}

func renderToFile(path string, patterns [anushri.NumInstruments]string, steps int, stepDur time.Duration, bars int, opts []anushri.PlayerOption) {
	if bars <= 0 {
		bars = 4
	}
	var hits []anushri.Hit
	for bar := 0; bar < bars; bar++ {
		for i := 0; i < steps; i++ {
			at := time.Duration(bar*steps+i) * stepDur
			for inst, pat := range patterns {
				if v := stepVelocity(pat, i); v > 0 {
					hits = append(hits, anushri.Hit{At: at, Instrument: anushri.Instrument(inst), Velocity: v})
				}
			}
		}
	}
	total := time.Duration(bars*steps)*stepDur + 500*time.Millisecond
	samples := anushri.RenderSamples(hits, total, opts...)
	wav := anushri.EncodeWAVPCM8(samples, anushri.SampleRate)
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%d samples, %s)\n", path, len(samples), total.Round(time.Millisecond))
}

func stepVelocity(pattern string, step int) uint8 {
	if step >= len(pattern) {
		return 0
	}
	switch pattern[step] {
	case 'X':
		return 255
	case 'x':
		return 180
	default:
		return 0
	}
}

func byteFlag(name string, v int) uint8 {
	if v < 0 || v > 255 {
		log.Fatalf("-%s must be 0..255", name)
	}
	return uint8(v)
}
