package view

import (
	"strconv"
	"strings"

	"dropship-simulator/internal/sim"
)

type hudLine struct {
	text  string
	color Color
}

var (
	hudWhite = Color{1, 1, 1, 1}
	hudDim   = Color{0.85, 0.9, 1, 1}
	hudGood  = Color{0.8, 1, 0.8, 1}
	hudWarn  = Color{1, 0.8, 0.3, 1}
	hudBad   = Color{1, 0.35, 0.35, 1}
)

// hudLines renders the status panel text for one frame.
func hudLines(sc sim.Scene, drag, fps float64, frameMs int) []hudLine {
	st := sc.State
	e := st.Engine

	engColor := hudDim
	engText := "OFF"
	switch {
	case e.Powered:
		engColor, engText = hudGood, "POWERED"
	case e.Left > 0 || e.Right > 0:
		engColor, engText = hudWarn, "SPOOLING"
	}

	ammoColor := hudWhite
	switch {
	case st.Weapon.Ammo == 0:
		ammoColor = hudBad
	case st.Weapon.Ammo <= 4:
		ammoColor = hudWarn
	}

	ground := "NO"
	if st.Ground.InGround {
		ground = "YES"
	}

	heading := 0
	if sc.Root != nil {
		heading = int(sim.RadToDeg(sim.WrapAngle(sc.Root.Rotation().Y))+0.5) % 360
	}

	return []hudLine{
		{"ENG " + engText, engColor},
		{"PWR L " + pct(e.Left) + " R " + pct(e.Right), hudDim},
		{"ROTOR " + strings.ToUpper(e.RegimeLeft.String()) + "/" + strings.ToUpper(e.RegimeRight.String()), hudDim},
		{"FOLD B " + pct(st.Fold.Blade) + " W " + pct(st.Fold.Wing) + " E " + pct(st.Fold.Engine), hudDim},
		{"GEAR " + pct(st.Gear) + "  RAMP " + pct(st.Ramp), hudDim},
		{"AMMO " + itoa(st.Weapon.Ammo) + "  RKT " + itoa(len(sc.Rockets)), ammoColor},
		{"HGT " + fmt1(st.Ground.Clearance) + "  GROUND " + ground, hudWhite},
		{"HDG " + itoa(heading), hudWhite},
		{"SURGE A " + fmt1(st.Surge.Accel) + " V " + fmt1(st.Surge.Velocity), hudWhite},
		{"SWAY A " + fmt1(st.Sway.Accel) + " V " + fmt1(st.Sway.Velocity), hudWhite},
		{"YAW A " + fmt1(st.Yaw.Accel) + " V " + fmt1(st.Yaw.Velocity), hudWhite},
		{"HEAVE A " + fmt1(st.Heave.Accel) + " V " + fmt1(st.Heave.Velocity), hudWhite},
		{"DRAG " + fmt2(drag), hudDim},
		{"CAM " + strings.ToUpper(sc.Camera.Mode.String()), hudDim},
		{"FPS " + itoa(int(fps+0.5)) + " DT " + itoa(frameMs) + "MS", hudGood},
	}
}

func pct(x float64) string { return itoa(int(x*100+0.5)) + "%" }

func itoa(v int) string { return strconv.Itoa(v) }

func fmt1(x float64) string { return strconv.FormatFloat(x, 'f', 1, 64) }

func fmt2(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) }

// fpsHistory is a ring of smoothed frame rates for the HUD graph.
type fpsHistory struct {
	values []float64
	idx    int
	fps    float64
}

func newFPSHistory(n int) *fpsHistory {
	return &fpsHistory{values: make([]float64, n)}
}

// add folds one frame time in seconds into the smoothed rate.
func (h *fpsHistory) add(dt float64) {
	if dt > 0 {
		h.fps = h.fps*0.9 + (1/dt)*0.1
	}
	h.values[h.idx] = h.fps
	h.idx = (h.idx + 1) % len(h.values)
}

func (h *fpsHistory) current() float64 { return h.fps }

// bars returns bar heights newest first, at most width of them, scaled so
// 120 fps fills height.
func (h *fpsHistory) bars(width, height int) []int {
	n := min(width, len(h.values))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v := h.values[(h.idx-1-i+len(h.values))%len(h.values)]
		v = max(0, min(v, 120))
		out[i] = max(1, int(v/120*float64(height)+0.5))
	}
	return out
}

// 5x7 uppercase font for minimal HUD text.
// Each row is 5 LSBits used.
var font5x7 = map[rune][7]uint8{
	' ': {0, 0, 0, 0, 0, 0, 0},
	'.': {0, 0, 0, 0, 0, 0, 0b00100},
	':': {0, 0, 0b010, 0, 0b010, 0, 0},
	'%': {0b10001, 0b00010, 0b00100, 0b01000, 0b10000, 0, 0},
	'-': {0, 0, 0b11110, 0, 0, 0, 0},
	'/': {0b00001, 0b00010, 0b00010, 0b00100, 0b01000, 0b01000, 0b10000},

	'0': {0b01110, 0b10001, 0b10011, 0b10101, 0b11001, 0b10001, 0b01110},
	'1': {0b00100, 0b01100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'2': {0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b01000, 0b11111},
	'3': {0b11110, 0b00001, 0b00001, 0b01110, 0b00001, 0b00001, 0b11110},
	'4': {0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010},
	'5': {0b11111, 0b10000, 0b11110, 0b00001, 0b00001, 0b10001, 0b01110},
	'6': {0b00110, 0b01000, 0b10000, 0b11110, 0b10001, 0b10001, 0b01110},
	'7': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000},
	'8': {0b01110, 0b10001, 0b10001, 0b01110, 0b10001, 0b10001, 0b01110},
	'9': {0b01110, 0b10001, 0b10001, 0b01111, 0b00001, 0b00010, 0b01100},

	'A': {0b01110, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'B': {0b11110, 0b10001, 0b10001, 0b11110, 0b10001, 0b10001, 0b11110},
	'C': {0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110},
	'D': {0b11100, 0b10010, 0b10001, 0b10001, 0b10001, 0b10010, 0b11100},
	'E': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b11111},
	'F': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b10000},
	'G': {0b01110, 0b10001, 0b10000, 0b10111, 0b10001, 0b10001, 0b01110},
	'H': {0b10001, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'I': {0b01110, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'J': {0b00001, 0b00001, 0b00001, 0b00001, 0b10001, 0b10001, 0b01110},
	'K': {0b10001, 0b10010, 0b10100, 0b11000, 0b10100, 0b10010, 0b10001},
	'L': {0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b11111},
	'M': {0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001},
	'N': {0b10001, 0b11001, 0b10101, 0b10011, 0b10001, 0b10001, 0b10001},
	'O': {0b01110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'P': {0b11110, 0b10001, 0b10001, 0b11110, 0b10000, 0b10000, 0b10000},
	'Q': {0b01110, 0b10001, 0b10001, 0b10001, 0b10101, 0b10010, 0b01101},
	'R': {0b11110, 0b10001, 0b10001, 0b11110, 0b10100, 0b10010, 0b10001},
	'S': {0b01111, 0b10000, 0b10000, 0b01110, 0b00001, 0b00001, 0b11110},
	'T': {0b11111, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100},
	'U': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'V': {0b10001, 0b10001, 0b10001, 0b10001, 0b01010, 0b01010, 0b00100},
	'W': {0b10001, 0b10001, 0b10001, 0b10101, 0b10101, 0b11011, 0b10001},
	'X': {0b10001, 0b10001, 0b01010, 0b00100, 0b01010, 0b10001, 0b10001},
	'Y': {0b10001, 0b10001, 0b01010, 0b00100, 0b00100, 0b00100, 0b00100},
	'Z': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b10000, 0b11111},
}
