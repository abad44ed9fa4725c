package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"dropship-simulator/internal/config"
	"dropship-simulator/internal/logging"
	"dropship-simulator/internal/sim"
	"dropship-simulator/internal/telemetry"
)

// epoch is the simulated start time; any non-zero instant works.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func main() {
	flags := config.Flags("headless")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	dir, _ := flags.GetString("config-dir")
	settings, err := config.Load(dir, flags)
	if err != nil {
		bootLog := logging.New("info", os.Stderr, true)
		bootLog.Fatal().Err(err).Msg("loading settings")
	}
	log := logging.New(settings.LogLevel, os.Stderr, settings.LogPretty)

	if err := run(settings, log); err != nil {
		log.Fatal().Err(err).Msg("headless run failed")
	}
}

func run(settings *config.Settings, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	steps, err := sim.ParseScript(settings.Headless.Script)
	if err != nil {
		return err
	}
	script := sim.NewScript(steps)

	tick := settings.TickDuration()
	s, err := sim.NewSimulator(sim.Options{
		Tuning: settings.Tuning,
		Clock:  sim.NewStepClock(epoch, tick),
		Logger: log,
	})
	if err != nil {
		return err
	}

	var feed *telemetry.Feed
	if settings.Telemetry.Enabled {
		hub := telemetry.NewHub(log)
		srv := telemetry.NewServer(hub, log)
		go func() {
			if err := srv.ListenAndServe(ctx, settings.Telemetry.Addr); err != nil {
				log.Error().Err(err).Msg("telemetry stopped")
			}
		}()
		feed = &telemetry.Feed{Hub: hub, Every: uint64(settings.Telemetry.Every)}
	}

	defer s.Close()

	events := logging.Sampled(log)
	hooks := sim.HeadlessHooks{
		Before: func(tick uint64) { script.Apply(s, tick) },
		After: func(evs []sim.Event) {
			for _, ev := range evs {
				events.Info().
					Stringer("kind", ev.Kind).
					Uint64("tick", ev.Tick).
					Msg("event")
			}
			if err := feed.Tick(s.Snapshot(), evs); err != nil {
				log.Debug().Err(err).Msg("telemetry publish")
			}
		},
	}

	performed := 0
	start := time.Now()
	if n := settings.Headless.Steps; n > 0 {
		performed = s.RunHeadless(ctx, n, hooks)
	} else {
		// Pace to wall time so a telemetry client sees a live feed.
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		deadline := time.NewTimer(settings.Headless.Dur)
		defer deadline.Stop()
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-deadline.C:
				break loop
			case <-ticker.C:
				performed += s.RunHeadless(ctx, 1, hooks)
			}
		}
	}

	snap := s.Snapshot()
	log.Info().
		Int("steps", performed).
		Dur("elapsed", time.Since(start)).
		Float64("x", snap.Position.X).
		Float64("y", snap.Position.Y).
		Float64("z", snap.Position.Z).
		Int("ammo", snap.State.Weapon.Ammo).
		Msg("headless run complete")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
