package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bjoeri/anushri"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	var (
		list        = flag.Bool("list", false, "list MIDI input ports and exit")
		portFlag    = flag.String("port", "", "input port index or name substring (default: first port)")
		channelFlag = flag.Int("channel", 0, "MIDI channel 1..16 (0 = all)")
		balance     = flag.Int("balance", 128, "bass/snare mix 0..255")
		bandwidth   = flag.Int("bandwidth", 255, "output bandwidth 0..255")
		idleTimeout = flag.Duration("idle-timeout", 0, "pause the audio device after this much silence (0 = never)")
	)
	flag.Parse()
	defer midi.CloseDriver()

	if *list {
		for i, p := range midi.GetInPorts() {
			fmt.Printf("%d: %s\n", i, p.String())
		}
		return
	}
	if *channelFlag < 0 || *channelFlag > 16 {
		log.Fatal("-channel must be 1..16, or 0 for all")
	}

	in, err := findInPort(*portFlag)
	if err != nil {
		log.Fatal(err)
	}

	pl := anushri.NewPlayer(
		anushri.WithBalance(byteFlag("balance", *balance)),
		anushri.WithBandwidth(byteFlag("bandwidth", *bandwidth)),
	)
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, val uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &val) && val > 0:
			if !onChannel(ch, *channelFlag) {
				return
			}
			inst, ok := noteInstrument(key)
			if !ok {
				return
			}
			pl.Resume() // wake from an idle pause
			pl.Trigger(inst, val<<1)
		case msg.GetControlChange(&ch, &key, &val):
			if !onChannel(ch, *channelFlag) {
				return
			}
			applyCC(pl, key, val)
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	defer stop()

	if *idleTimeout > 0 {
		go pauseWhenIdle(pl, *idleTimeout)
	}

	log.Printf("listening on %s", in.String())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
}

func findInPort(sel string) (drivers.In, error) {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		return nil, fmt.Errorf("no MIDI input ports (try -list)")
	}
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return ins[0], nil
	}
	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 0 || idx >= len(ins) {
			return nil, fmt.Errorf("port index %d out of range 0..%d", idx, len(ins)-1)
		}
		return ins[idx], nil
	}
	for _, p := range ins {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(sel)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no input port matching %q (try -list)", sel)
}

// General MIDI drum notes: kicks to the bass drum, snares (and sticks) to
// the snare, closed and pedal hats to the hi-hat.
func noteInstrument(key uint8) (anushri.Instrument, bool) {
	switch key {
	case 35, 36:
		return anushri.BassDrum, true
	case 37, 38, 40:
		return anushri.Snare, true
	case 42, 44, 46:
		return anushri.HiHat, true
	}
	return 0, false
}

func onChannel(ch uint8, want int) bool {
	return want == 0 || int(ch) == want-1
}

// Controllers 16..30 edit patch parameters directly; 8 is the bass/snare
// balance and 71 the output bandwidth, standing in for the front panel pots.
func applyCC(pl *anushri.Player, cc, value uint8) {
	switch {
	case cc >= 16 && cc <= 30:
		pl.SetParameterCC(cc, value)
	case cc == 8:
		pl.SetBalance(value << 1)
	case cc == 71:
		pl.SetBandwidth(value << 1)
	}
}

func pauseWhenIdle(pl *anushri.Player, timeout time.Duration) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for range t.C {
		if !pl.Playing() && pl.IdleTime() > timeout {
			pl.Pause()
		}
	}
}

func byteFlag(name string, v int) uint8 {
	if v < 0 || v > 255 {
		log.Fatalf("-%s must be 0..255", name)
	}
	return uint8(v)
}
