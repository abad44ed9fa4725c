package sim

// Intent is the persistent control vector read by every stage each tick.
type Intent struct {
	Forward   bool `json:"forward"`
	Backward  bool `json:"backward"`
	Left      bool `json:"left"`
	Right     bool `json:"right"`
	TurnLeft  bool `json:"turnLeft"`
	TurnRight bool `json:"turnRight"`
	Up        bool `json:"up"`
	Down      bool `json:"down"`

	ToggleEngine         bool `json:"toggleEngine"`
	ToggleRamp           bool `json:"toggleRamp"`
	ToggleGear           bool `json:"toggleGear"`
	ToggleBladeExtension bool `json:"toggleBladeExtension"`
	FireRocket           bool `json:"fireRocket"`
}

// Control names one boolean of Intent.
type Control int

const (
	ControlNone Control = iota
	ControlForward
	ControlBackward
	ControlLeft
	ControlRight
	ControlTurnLeft
	ControlTurnRight
	ControlUp
	ControlDown
	ControlEngine
	ControlRamp
	ControlGear
	ControlBladeExtension
	ControlFire
)

var opposed = map[Control]Control{
	ControlForward:   ControlBackward,
	ControlBackward:  ControlForward,
	ControlLeft:      ControlRight,
	ControlRight:     ControlLeft,
	ControlTurnLeft:  ControlTurnRight,
	ControlTurnRight: ControlTurnLeft,
	ControlUp:        ControlDown,
	ControlDown:      ControlUp,
}

func (in *Intent) ref(c Control) *bool {
	switch c {
	case ControlForward:
		return &in.Forward
	case ControlBackward:
		return &in.Backward
	case ControlLeft:
		return &in.Left
	case ControlRight:
		return &in.Right
	case ControlTurnLeft:
		return &in.TurnLeft
	case ControlTurnRight:
		return &in.TurnRight
	case ControlUp:
		return &in.Up
	case ControlDown:
		return &in.Down
	case ControlEngine:
		return &in.ToggleEngine
	case ControlRamp:
		return &in.ToggleRamp
	case ControlGear:
		return &in.ToggleGear
	case ControlBladeExtension:
		return &in.ToggleBladeExtension
	case ControlFire:
		return &in.FireRocket
	}
	return nil
}

// Get reports the value of one control.
func (in Intent) Get(c Control) bool {
	if p := in.ref(c); p != nil {
		return *p
	}
	return false
}

// Command is a one-shot action outside the intent vector.
type Command int

const (
	CommandNone Command = iota
	CommandCameraChase
	CommandCameraTop
	CommandCameraSide
	CommandCameraDebug
	CommandToggleHUD
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandCameraChase:
		return "camera_chase"
	case CommandCameraTop:
		return "camera_top"
	case CommandCameraSide:
		return "camera_side"
	case CommandCameraDebug:
		return "camera_debug"
	case CommandToggleHUD:
		return "toggle_hud"
	}
	return "unknown"
}

type ActionKind int

const (
	// ActionHold sets the control while the key is down.
	ActionHold ActionKind = iota
	// ActionToggle flips the control on each fresh key-down.
	ActionToggle
	// ActionOneShot emits a Command on each fresh key-down.
	ActionOneShot
)

// KeyCode is a layout-independent physical key name, e.g. "KeyW" or "Digit2".
type KeyCode string

type Binding struct {
	Kind    ActionKind
	Control Control
	Command Command
}

type Keymap map[KeyCode]Binding

func DefaultKeymap() Keymap {
	return Keymap{
		"KeyW": {Kind: ActionHold, Control: ControlForward},
		"KeyS": {Kind: ActionHold, Control: ControlBackward},
		"KeyA": {Kind: ActionHold, Control: ControlLeft},
		"KeyD": {Kind: ActionHold, Control: ControlRight},
		"KeyZ": {Kind: ActionHold, Control: ControlTurnLeft},
		"KeyX": {Kind: ActionHold, Control: ControlTurnRight},
		"KeyQ": {Kind: ActionHold, Control: ControlUp},
		"KeyE": {Kind: ActionHold, Control: ControlDown},

		"KeyT":  {Kind: ActionToggle, Control: ControlEngine},
		"KeyR":  {Kind: ActionToggle, Control: ControlRamp},
		"KeyG":  {Kind: ActionToggle, Control: ControlGear},
		"KeyB":  {Kind: ActionToggle, Control: ControlBladeExtension},
		"Space": {Kind: ActionHold, Control: ControlFire},

		"Digit2": {Kind: ActionOneShot, Command: CommandCameraChase},
		"Digit3": {Kind: ActionOneShot, Command: CommandCameraTop},
		"Digit4": {Kind: ActionOneShot, Command: CommandCameraSide},
		"Digit9": {Kind: ActionOneShot, Command: CommandCameraDebug},
		"F1":     {Kind: ActionOneShot, Command: CommandToggleHUD},
	}
}

// Mapper turns key events into Intent. Raw key-down state is tracked apart
// from the intent so that releasing one key of an opposed pair re-asserts
// the other when it is still held.
type Mapper struct {
	keymap   Keymap
	held     map[KeyCode]bool
	// press order per held key; the latest press wins an opposed pair
	pressSeq map[KeyCode]uint64
	seq      uint64
	intent   Intent
}

func NewMapper(km Keymap) *Mapper {
	if km == nil {
		km = DefaultKeymap()
	}
	return &Mapper{
		keymap:   km,
		held:     make(map[KeyCode]bool),
		pressSeq: make(map[KeyCode]uint64),
	}
}

func (m *Mapper) Intent() Intent { return m.intent }

// Bound reports whether code has a binding.
func (m *Mapper) Bound(code KeyCode) bool {
	_, ok := m.keymap[code]
	return ok
}

// Held reports raw key-down state.
func (m *Mapper) Held(code KeyCode) bool { return m.held[code] }

// KeyDown applies a key press. Repeated presses of a key that is already
// down (auto-repeat) do not re-flip toggles or re-issue commands.
func (m *Mapper) KeyDown(code KeyCode) Command {
	b, ok := m.keymap[code]
	if !ok {
		return CommandNone
	}
	repeat := m.held[code]
	m.held[code] = true
	if !repeat {
		m.seq++
		m.pressSeq[code] = m.seq
	}

	switch b.Kind {
	case ActionHold:
		// Auto-repeat of an older key must not take the pair back from a
		// newer opposite press.
		if !repeat {
			m.set(b.Control, true)
			if opp, ok := opposed[b.Control]; ok {
				m.set(opp, false)
			}
		}
	case ActionToggle:
		if !repeat {
			if p := m.intent.ref(b.Control); p != nil {
				*p = !*p
			}
		}
	case ActionOneShot:
		if !repeat {
			return b.Command
		}
	}
	return CommandNone
}

// KeyUp applies a key release.
func (m *Mapper) KeyUp(code KeyCode) {
	b, ok := m.keymap[code]
	if !ok {
		return
	}
	delete(m.held, code)
	delete(m.pressSeq, code)
	if b.Kind != ActionHold {
		return
	}

	own, ownSeq := m.heldFor(b.Control)
	opp, hasOpp := opposed[b.Control]
	if !hasOpp {
		m.set(b.Control, own)
		return
	}
	other, otherSeq := m.heldFor(opp)
	switch {
	case own && other:
		m.set(b.Control, ownSeq > otherSeq)
		m.set(opp, otherSeq > ownSeq)
	default:
		m.set(b.Control, own)
		m.set(opp, other)
	}
}

// Reset releases every key and clears hold controls. Toggles keep their
// latched value.
func (m *Mapper) Reset() {
	for code := range m.held {
		delete(m.held, code)
		delete(m.pressSeq, code)
	}
	for _, b := range m.keymap {
		if b.Kind == ActionHold {
			m.set(b.Control, false)
		}
	}
}

func (m *Mapper) set(c Control, v bool) {
	if p := m.intent.ref(c); p != nil {
		*p = v
	}
}

// heldFor reports whether any held hold-key maps to c, with the latest
// press sequence among them.
func (m *Mapper) heldFor(c Control) (bool, uint64) {
	var found bool
	var latest uint64
	for code := range m.held {
		b := m.keymap[code]
		if b.Kind == ActionHold && b.Control == c {
			found = true
			if s := m.pressSeq[code]; s > latest {
				latest = s
			}
		}
	}
	return found, latest
}
