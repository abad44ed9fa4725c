//go:build !test
// +build !test

package view

import (
	"context"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"

	"dropship-simulator/internal/audio"
	"dropship-simulator/internal/sim"
	"dropship-simulator/internal/telemetry"
)

type Options struct {
	UPS   int
	Audio *audio.Engine   // nil runs silent
	Feed  *telemetry.Feed // nil publishes nothing
	Log   zerolog.Logger
}

// Run drives the simulator at a fixed rate and renders once per frame
// until the window closes or ctx is done.
func Run(ctx context.Context, window *glfw.Window, s *sim.Simulator, opts Options) error {
	renderer, err := NewRenderer(s.Surface())
	if err != nil {
		return err
	}
	ui, err := NewUIRenderer()
	if err != nil {
		return err
	}
	log := opts.Log.With().Str("component", "view").Logger()
	setupCallbacks(window, s, log)

	ground := 0.0
	if g, ok := s.Surface().(sim.FlatGround); ok {
		ground = g.Height
	}
	drag := s.Tuning().Drag

	ups := opts.UPS
	if ups <= 0 {
		ups = 60
	}
	target := time.Second / time.Duration(ups)
	acc := time.Duration(0)
	prev := time.Now()
	fps := newFPSHistory(120)
	var frameMs int

	for !window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		now := time.Now()
		frame := now.Sub(prev)
		prev = now

		// Clamp to avoid spiral-of-death on stalls
		if frame > time.Second/4 {
			frame = time.Second / 4
		}
		acc += frame
		fps.add(frame.Seconds())
		frameMs = int(frame.Milliseconds())

		steps := 0
		maxSteps := 5 // safety cap per frame
		for acc >= target && steps < maxSteps {
			s.Update(ctx)
			acc -= target
			steps++
		}
		if steps == maxSteps && acc >= target {
			acc = 0
		}

		if steps > 0 {
			events := s.DrainEvents()
			opts.Audio.Handle(events)
			if err := opts.Feed.Tick(s.Snapshot(), events); err != nil {
				log.Warn().Err(err).Msg("telemetry publish failed")
			}
		}

		width, height := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		s.View(func(sc sim.Scene) {
			opts.Audio.SetRotorPower(sc.State.Engine.Left, sc.State.Engine.Right)
			renderer.Render(sc, width, height, ground)
			if sc.HUD {
				ui.DrawHUD(hudLines(sc, drag, fps.current(), frameMs), fps, width, height)
			}
		})

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func setupCallbacks(window *glfw.Window, s *sim.Simulator, log zerolog.Logger) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		code, ok := keyName(int(key))
		if !ok {
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			if code == "Escape" {
				w.SetShouldClose(true)
				return
			}
			if dYaw, dPitch, ok := orbitStep(code); ok {
				s.OrbitCamera(dYaw, dPitch, 0)
				return
			}
			if cmd := s.KeyDown(code); cmd != sim.CommandNone {
				log.Debug().Str("key", string(code)).Stringer("command", cmd).Msg("command")
			}
		case glfw.Release:
			s.KeyUp(code)
		}
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		s.OrbitCamera(0, 0, -yoff*3)
	})
	// Keys released while unfocused never arrive; drop everything held.
	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused {
			s.ReleaseAll()
		}
	})
}
