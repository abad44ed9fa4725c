package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dropship-simulator/internal/sim"
)

// Pressing the opposite key wins; releasing it hands control back to the
// key still held.
func TestMapperOpposedKeys(t *testing.T) {
	m := sim.NewMapper(nil)
	m.KeyDown("KeyW")
	assert.True(t, m.Intent().Forward)

	m.KeyDown("KeyS")
	assert.True(t, m.Intent().Backward)
	assert.False(t, m.Intent().Forward)

	m.KeyUp("KeyS")
	assert.True(t, m.Intent().Forward)
	assert.False(t, m.Intent().Backward)

	m.KeyUp("KeyW")
	assert.Equal(t, sim.Intent{}, m.Intent())
}

func TestMapperLatestPressWins(t *testing.T) {
	m := sim.NewMapper(nil)
	m.KeyDown("KeyZ")
	m.KeyDown("KeyX")
	m.KeyDown("KeyX") // auto-repeat
	assert.True(t, m.Intent().TurnRight)
	assert.False(t, m.Intent().TurnLeft)

	m.KeyUp("KeyZ")
	assert.True(t, m.Intent().TurnRight)
	assert.False(t, m.Intent().TurnLeft)
}

func TestMapperRepeatOfOlderKeyKeepsNewerPress(t *testing.T) {
	for _, pair := range [][2]sim.KeyCode{{"KeyW", "KeyS"}, {"KeyA", "KeyD"}, {"KeyZ", "KeyX"}, {"KeyQ", "KeyE"}} {
		older, newer := pair[0], pair[1]
		m := sim.NewMapper(nil)
		m.KeyDown(older)
		m.KeyDown(newer)
		before := m.Intent()

		m.KeyDown(older) // auto-repeat
		m.KeyDown(older)
		assert.Equal(t, before, m.Intent(), "%s repeat over %s", older, newer)

		// Releasing the newer key hands the pair back to the older one.
		m.KeyUp(newer)
		assert.NotEqual(t, sim.Intent{}, m.Intent(), "%s after %s release", older, newer)
		m.KeyUp(older)
		assert.Equal(t, sim.Intent{}, m.Intent())
	}
}

func TestMapperTogglesIgnoreRepeat(t *testing.T) {
	m := sim.NewMapper(nil)
	m.KeyDown("KeyT")
	m.KeyDown("KeyT")
	m.KeyDown("KeyT")
	assert.True(t, m.Intent().ToggleEngine)

	m.KeyUp("KeyT")
	assert.True(t, m.Intent().ToggleEngine)
	m.KeyDown("KeyT")
	assert.False(t, m.Intent().ToggleEngine)
}

func TestMapperCommands(t *testing.T) {
	m := sim.NewMapper(nil)
	assert.Equal(t, sim.CommandCameraTop, m.KeyDown("Digit3"))
	assert.Equal(t, sim.CommandNone, m.KeyDown("Digit3"))
	m.KeyUp("Digit3")
	assert.Equal(t, sim.CommandCameraTop, m.KeyDown("Digit3"))
	assert.Equal(t, sim.CommandToggleHUD, m.KeyDown("F1"))

	assert.False(t, m.Bound("KeyP"))
	assert.Equal(t, sim.CommandNone, m.KeyDown("KeyP"))
	assert.False(t, m.Held("KeyP"))
}

func TestMapperResetKeepsToggles(t *testing.T) {
	m := sim.NewMapper(nil)
	m.KeyDown("KeyW")
	m.KeyDown("Space")
	m.KeyDown("KeyG")
	m.Reset()

	in := m.Intent()
	assert.False(t, in.Forward)
	assert.False(t, in.FireRocket)
	assert.True(t, in.ToggleGear)
	assert.False(t, m.Held("KeyW"))
}

func TestCustomKeymap(t *testing.T) {
	m := sim.NewMapper(sim.Keymap{
		"ArrowUp": {Kind: sim.ActionHold, Control: sim.ControlForward},
	})
	m.KeyDown("ArrowUp")
	assert.True(t, m.Intent().Get(sim.ControlForward))
	assert.False(t, m.Bound("KeyW"))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "camera_chase", sim.CommandCameraChase.String())
	assert.Equal(t, "toggle_hud", sim.CommandToggleHUD.String())
	assert.Equal(t, "none", sim.CommandNone.String())
	assert.Equal(t, "unknown", sim.Command(99).String())
}
