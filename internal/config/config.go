package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dropship-simulator/internal/sim"
)

// ErrInvalid marks settings that loaded but cannot be used.
var ErrInvalid = errors.New("invalid settings")

const (
	envPrefix  = "DROPSHIP"
	configName = "dropship"
)

type TelemetryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
	// Every is the number of ticks between published snapshots.
	Every int `json:"every" mapstructure:"every"`
}

type AudioConfig struct {
	Enabled bool    `json:"enabled" mapstructure:"enabled"`
	Volume  float64 `json:"volume" mapstructure:"volume"`
}

type WindowConfig struct {
	Width  int  `json:"width" mapstructure:"width"`
	Height int  `json:"height" mapstructure:"height"`
	VSync  bool `json:"vsync" mapstructure:"vsync"`
}

type HeadlessConfig struct {
	Steps int           `json:"steps" mapstructure:"steps"`
	Dur   time.Duration `json:"dur" mapstructure:"dur"`
	// Script is a key timeline, e.g. "0:KeyT,120:KeyW,600:-KeyW".
	Script string `json:"script" mapstructure:"script"`
}

// Settings is everything the binaries read at startup.
type Settings struct {
	LogLevel  string          `json:"logLevel" mapstructure:"logLevel"`
	LogPretty bool            `json:"logPretty" mapstructure:"logPretty"`
	UPS       int             `json:"ups" mapstructure:"ups"`
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry"`
	Audio     AudioConfig     `json:"audio" mapstructure:"audio"`
	Window    WindowConfig    `json:"window" mapstructure:"window"`
	Headless  HeadlessConfig  `json:"headless" mapstructure:"headless"`
	Tuning    sim.Tuning      `json:"tuning" mapstructure:"tuning"`
}

// Flags returns the command-line flags Load knows how to bind.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config-dir", ".", "directory searched for dropship.{json,yaml,toml}")
	fs.String("log-level", "info", "debug|info|warn|error")
	fs.Bool("log-pretty", true, "human-readable console logs")
	fs.Int("ups", 60, "simulation updates per second")
	fs.Bool("telemetry", false, "serve websocket telemetry")
	fs.String("telemetry-addr", ":8088", "telemetry listen address")
	fs.Bool("audio", true, "enable audio")
	fs.Int("steps", 0, "headless: fixed number of steps (0 = use duration)")
	fs.Duration("dur", 10*time.Second, "headless: wall time to run when steps is 0")
	fs.String("script", "", "headless: key timeline, tick:Key or tick:-Key, comma separated")
	return fs
}

var flagKeys = map[string]string{
	"log-level":      "logLevel",
	"log-pretty":     "logPretty",
	"ups":            "ups",
	"telemetry":      "telemetry.enabled",
	"telemetry-addr": "telemetry.addr",
	"audio":          "audio.enabled",
	"steps":          "headless.steps",
	"dur":            "headless.dur",
	"script":         "headless.script",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", true)
	v.SetDefault("ups", 60)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.addr", ":8088")
	v.SetDefault("telemetry.every", 6)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.8)

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 800)
	v.SetDefault("window.vsync", true)

	v.SetDefault("headless.steps", 0)
	v.SetDefault("headless.dur", 10*time.Second)
	v.SetDefault("headless.script", "")

	setStructDefaults(v, "tuning", reflect.ValueOf(sim.DefaultTuning()))
}

// setStructDefaults registers every leaf of a tagged struct as its own key
// so environment variables can override single tuning values.
func setStructDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			name = strings.ToLower(f.Name)
		}
		key := prefix + "." + name
		fv := rv.Field(i)
		if fv.Kind() == reflect.Struct {
			setStructDefaults(v, key, fv)
			continue
		}
		v.SetDefault(key, fv.Interface())
	}
}

// Load reads dropship.{json,yaml,toml} from dir if present, then the
// environment (DROPSHIP_ prefix, dots become underscores), then any flags
// that were set. A missing config file is fine; a malformed one is not.
func Load(dir string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", flag, err)
				}
			}
		}
	}

	v.SetConfigName(configName)
	if dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if s.UPS <= 0 {
		return fmt.Errorf("%w: ups must be > 0, got %d", ErrInvalid, s.UPS)
	}
	if s.Telemetry.Enabled && s.Telemetry.Addr == "" {
		return fmt.Errorf("%w: telemetry enabled without an address", ErrInvalid)
	}
	if s.Telemetry.Every <= 0 {
		return fmt.Errorf("%w: telemetry.every must be > 0", ErrInvalid)
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, s.Window.Width, s.Window.Height)
	}
	if err := s.Tuning.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// TickDuration is the fixed simulation step.
func (s *Settings) TickDuration() time.Duration {
	return time.Second / time.Duration(s.UPS)
}
