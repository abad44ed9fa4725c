package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ScriptStep presses or releases one key at a tick.
type ScriptStep struct {
	Tick    uint64
	Key     KeyCode
	Release bool
}

// ParseScript reads a key timeline such as "0:KeyT,120:KeyW,600:-KeyW".
// A leading '-' on the key releases it. Steps come back ordered by tick,
// keeping input order within a tick.
func ParseScript(s string) ([]ScriptStep, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []ScriptStep
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tickStr, key, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("script step %q: want tick:Key", part)
		}
		tick, err := strconv.ParseUint(strings.TrimSpace(tickStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("script step %q: %w", part, err)
		}
		key = strings.TrimSpace(key)
		step := ScriptStep{Tick: tick}
		if strings.HasPrefix(key, "-") {
			step.Release = true
			key = key[1:]
		}
		if key == "" {
			return nil, fmt.Errorf("script step %q: empty key", part)
		}
		step.Key = KeyCode(key)
		out = append(out, step)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out, nil
}

// Script replays a parsed timeline against a simulator.
type Script struct {
	steps []ScriptStep
	next  int
}

func NewScript(steps []ScriptStep) *Script { return &Script{steps: steps} }

// Apply feeds every step due at or before tick.
func (sc *Script) Apply(s *Simulator, tick uint64) {
	for sc.next < len(sc.steps) && sc.steps[sc.next].Tick <= tick {
		st := sc.steps[sc.next]
		if st.Release {
			s.KeyUp(st.Key)
		} else {
			s.KeyDown(st.Key)
		}
		sc.next++
	}
}

// Done reports whether every step has been applied.
func (sc *Script) Done() bool { return sc.next >= len(sc.steps) }
