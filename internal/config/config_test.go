package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-simulator/internal/config"
	"dropship-simulator/internal/sim"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	s, err := config.Load(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, 60, s.UPS)
	assert.False(t, s.Telemetry.Enabled)
	assert.Equal(t, ":8088", s.Telemetry.Addr)
	assert.Equal(t, 6, s.Telemetry.Every)
	assert.True(t, s.Audio.Enabled)
	assert.Equal(t, 0.8, s.Audio.Volume)
	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, 10*time.Second, s.Headless.Dur)
	assert.Equal(t, sim.DefaultTuning(), s.Tuning)
	assert.Equal(t, time.Second/60, s.TickDuration())
}

func TestLoadFileOverrides(t *testing.T) {
	dir := writeConfig(t, "dropship.yaml", `
ups: 120
telemetry:
  enabled: true
  every: 2
tuning:
  drag: 0.05
  weapon:
    ammo: 8
    cooldown: 500ms
  particles:
    smokeDrift:
      y: 0.1
`)
	s, err := config.Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 120, s.UPS)
	assert.True(t, s.Telemetry.Enabled)
	assert.Equal(t, 2, s.Telemetry.Every)
	assert.Equal(t, ":8088", s.Telemetry.Addr)
	assert.Equal(t, 0.05, s.Tuning.Drag)
	assert.Equal(t, 8, s.Tuning.Weapon.Ammo)
	assert.Equal(t, 500*time.Millisecond, s.Tuning.Weapon.Cooldown)
	assert.Equal(t, 0.1, s.Tuning.Particles.SmokeDrift.Y)
	assert.Equal(t, 0.04, s.Tuning.Particles.SmokeDrift.Z)
	// Untouched leaves keep their defaults.
	assert.Equal(t, sim.DefaultTuning().Surge, s.Tuning.Surge)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DROPSHIP_TELEMETRY_ADDR", ":9999")
	t.Setenv("DROPSHIP_TUNING_WEAPON_AMMO", "3")
	t.Setenv("DROPSHIP_LOGLEVEL", "debug")

	s, err := config.Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, ":9999", s.Telemetry.Addr)
	assert.Equal(t, 3, s.Tuning.Weapon.Ammo)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadFlagsWin(t *testing.T) {
	dir := writeConfig(t, "dropship.json", `{"ups": 90, "headless": {"steps": 5}}`)
	flags := config.Flags("test")
	require.NoError(t, flags.Parse([]string{"--ups=30", "--telemetry", "--script=0:KeyT"}))

	s, err := config.Load(dir, flags)
	require.NoError(t, err)
	assert.Equal(t, 30, s.UPS)
	assert.True(t, s.Telemetry.Enabled)
	assert.Equal(t, "0:KeyT", s.Headless.Script)
	// Flags left unset fall through to the file.
	assert.Equal(t, 5, s.Headless.Steps)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := writeConfig(t, "dropship.json", `{"ups": `)
	_, err := config.Load(dir, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalid)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"ups":    "ups: 0",
		"every":  "telemetry:\n  every: 0",
		"window": "window:\n  width: -1",
		"tuning": "tuning:\n  drag: 5",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, "dropship.yaml", body), nil)
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}

	_, err := config.Load(writeConfig(t, "dropship.yaml", "tuning:\n  engine:\n    bladeCount: 0"), nil)
	assert.ErrorIs(t, err, sim.ErrInvalidTuning)
}
