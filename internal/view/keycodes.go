package view

import (
	"strconv"

	"dropship-simulator/internal/sim"
)

// GLFW key numbers. Letters and digits use their ASCII codes.
const (
	glfwKeySpace  = 32
	glfwKey0      = 48
	glfwKey9      = 57
	glfwKeyA      = 65
	glfwKeyZ      = 90
	glfwKeyEscape = 256
	glfwKeyRight  = 262
	glfwKeyLeft   = 263
	glfwKeyDown   = 264
	glfwKeyUp     = 265
	glfwKeyF1     = 290
	glfwKeyF12    = 301
)

// keyName returns the physical key name for a GLFW key number.
func keyName(key int) (sim.KeyCode, bool) {
	switch {
	case key >= glfwKeyA && key <= glfwKeyZ:
		return sim.KeyCode("Key" + string(rune(key))), true
	case key >= glfwKey0 && key <= glfwKey9:
		return sim.KeyCode("Digit" + string(rune(key))), true
	case key >= glfwKeyF1 && key <= glfwKeyF12:
		return sim.KeyCode("F" + strconv.Itoa(key-glfwKeyF1+1)), true
	}
	switch key {
	case glfwKeySpace:
		return "Space", true
	case glfwKeyEscape:
		return "Escape", true
	case glfwKeyLeft:
		return "ArrowLeft", true
	case glfwKeyRight:
		return "ArrowRight", true
	case glfwKeyUp:
		return "ArrowUp", true
	case glfwKeyDown:
		return "ArrowDown", true
	}
	return "", false
}

// orbitStep maps arrow keys to debug camera nudges in degrees.
func orbitStep(code sim.KeyCode) (dYaw, dPitch float64, ok bool) {
	switch code {
	case "ArrowLeft":
		return -5, 0, true
	case "ArrowRight":
		return 5, 0, true
	case "ArrowUp":
		return 0, 5, true
	case "ArrowDown":
		return 0, -5, true
	}
	return 0, 0, false
}
