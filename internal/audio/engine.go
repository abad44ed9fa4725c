//go:build !test
// +build !test

package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"

	"dropship-simulator/internal/sim"
)

// Engine plays the rotor hum and one-shot weapon sounds.
type Engine struct {
	ctx    *oto.Context
	ready  chan struct{}
	rotor  *rotorReader
	mu     sync.Mutex
	player oto.Player
	log    zerolog.Logger
	volume float64

	seed       atomic.Uint64
	explosions atomic.Int32
	closed     atomic.Bool
}

// New opens the output device. The rotor loop starts once the device is
// ready.
func New(log zerolog.Logger, volume float64) (*Engine, error) {
	loop, baseRPM, err := synthRotorSample(SampleRate, rotorBlades, rotorCycles, nominalRPM)
	if err != nil {
		return nil, err
	}
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return nil, fmt.Errorf("audio init: %w", err)
	}
	e := &Engine{
		ctx:    ctx,
		ready:  ready,
		rotor:  newRotorReader(loop, baseRPM),
		log:    log.With().Str("component", "audio").Logger(),
		volume: clamp(volume, 0, 1),
	}
	e.seed.Store(uint64(time.Now().UnixNano()))
	go func() {
		<-ready
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed.Load() {
			return
		}
		e.player = ctx.NewPlayer(e.rotor)
		e.player.SetVolume(e.volume)
		e.player.Play()
		e.log.Debug().Float64("baseRPM", baseRPM).Msg("rotor loop started")
	}()
	return e, nil
}

func (e *Engine) SetRotorPower(left, right float64) {
	if e == nil {
		return
	}
	e.rotor.SetPower(left, right)
}

// Handle plays the sound for each event that has one.
func (e *Engine) Handle(events []sim.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case sim.EventRocketFired:
			e.PlayRocket()
		case sim.EventRocketImpact:
			e.PlayExplosion()
		}
	}
}

func (e *Engine) PlayRocket() {
	if e == nil {
		return
	}
	e.play(genRocket(e.seed.Add(0x9e3779b97f4a7c15)), 0.6, nil)
}

// PlayExplosion drops the sound when two are already playing.
func (e *Engine) PlayExplosion() {
	if e == nil || e.explosions.Load() >= 2 {
		return
	}
	e.explosions.Add(1)
	done := func() { e.explosions.Add(-1) }
	if !e.play(genExplosion(e.seed.Add(0x9e3779b97f4a7c15)), 1, done) {
		done()
	}
}

func (e *Engine) play(samples []byte, gain float64, done func()) bool {
	if e == nil || e.closed.Load() {
		return false
	}
	select {
	case <-e.ready:
	default:
		return false
	}
	go func() {
		if done != nil {
			defer done()
		}
		p := e.ctx.NewPlayer(&soundReader{data: samples})
		p.SetVolume(e.volume * gain)
		p.Play()
		for p.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := p.Close(); err != nil {
			e.log.Debug().Err(err).Msg("closing player")
		}
	}()
	return true
}

func (e *Engine) Close() error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.player != nil {
		return e.player.Close()
	}
	return nil
}
