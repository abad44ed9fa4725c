package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"dropship-simulator/internal/audio"
	"dropship-simulator/internal/config"
	"dropship-simulator/internal/logging"
	"dropship-simulator/internal/sim"
	"dropship-simulator/internal/telemetry"
	"dropship-simulator/internal/view"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	flags := config.Flags("dropship")
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
		log.Fatal().Err(err).Msg("dropship simulator stopped")
	}
}

func run(settings *config.Settings, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(settings.Window.Width, settings.Window.Height, "Dropship Simulator", nil, nil)
	if err != nil {
		return err
	}
	window.MakeContextCurrent()
	if settings.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		return err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.ClearColor(0.62, 0.74, 0.86, 1.0)

	log.Info().
		Str("gl", gl.GoStr(gl.GetString(gl.VERSION))).
		Str("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))).
		Msg("OpenGL ready")

	s, err := sim.NewSimulator(sim.Options{
		Tuning: settings.Tuning,
		Logger: log,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	opts := view.Options{UPS: settings.UPS, Log: log}

	if settings.Audio.Enabled {
		a, err := audio.New(log, settings.Audio.Volume)
		if err != nil {
			log.Warn().Err(err).Msg("audio disabled")
		} else {
			defer a.Close()
			opts.Audio = a
		}
	}

	if settings.Telemetry.Enabled {
		hub := telemetry.NewHub(log)
		srv := telemetry.NewServer(hub, log)
		go func() {
			if err := srv.ListenAndServe(ctx, settings.Telemetry.Addr); err != nil {
				log.Error().Err(err).Msg("telemetry stopped")
			}
		}()
		opts.Feed = &telemetry.Feed{Hub: hub, Every: uint64(settings.Telemetry.Every)}
	}

	printControls(log)
	return view.Run(ctx, window, s, opts)
}

func printControls(log zerolog.Logger) {
	log.Info().Msg("W/S forward/back  A/D strafe  Z/X turn  Q/E up/down")
	log.Info().Msg("T engines  B fold  G gear  R ramp  SPACE fire")
	log.Info().Msg("2 chase  3 top  4 side  9 debug (arrows/scroll orbit)  F1 HUD  ESC quit")
}
