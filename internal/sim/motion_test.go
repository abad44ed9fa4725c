package sim_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-simulator/internal/sim"
)

func TestIntegrateIgnoresInputWithoutPower(t *testing.T) {
	tuning := sim.DefaultTuning()
	s := sim.NewVehicleState(tuning)
	for i := 0; i < 50; i++ {
		sim.Integrate(s, sim.Intent{Forward: true, Up: true, TurnLeft: true}, &tuning)
	}
	assert.Zero(t, s.Surge)
	assert.Zero(t, s.Heave)
	assert.Zero(t, s.Yaw)
}

type axisCase struct {
	name     string
	positive sim.Intent
	negative sim.Intent
	tuning   func(sim.Tuning) sim.AxisTuning
	axis     func(*sim.VehicleState) sim.Axis
}

var axisCases = []axisCase{
	{"surge", sim.Intent{Forward: true}, sim.Intent{Backward: true},
		func(t sim.Tuning) sim.AxisTuning { return t.Surge },
		func(s *sim.VehicleState) sim.Axis { return s.Surge }},
	{"sway", sim.Intent{Right: true}, sim.Intent{Left: true},
		func(t sim.Tuning) sim.AxisTuning { return t.Sway },
		func(s *sim.VehicleState) sim.Axis { return s.Sway }},
	{"yaw", sim.Intent{TurnLeft: true}, sim.Intent{TurnRight: true},
		func(t sim.Tuning) sim.AxisTuning { return t.Yaw },
		func(s *sim.VehicleState) sim.Axis { return s.Yaw }},
	{"heave", sim.Intent{Up: true}, sim.Intent{Down: true},
		func(t sim.Tuning) sim.AxisTuning { return t.Heave },
		func(s *sim.VehicleState) sim.Axis { return s.Heave }},
}

func poweredState(tuning sim.Tuning) *sim.VehicleState {
	s := sim.NewVehicleState(tuning)
	s.Engine.Powered = true
	return s
}

func TestAxesStayInEnvelope(t *testing.T) {
	tuning := sim.DefaultTuning()
	for _, tc := range axisCases {
		t.Run(tc.name, func(t *testing.T) {
			at := tc.tuning(tuning)
			s := poweredState(tuning)

			for i := 0; i < 1000; i++ {
				sim.Integrate(s, tc.positive, &tuning)
				v := tc.axis(s).Velocity
				require.LessOrEqual(t, v, at.MaxAccel, "tick %d", i)
				require.GreaterOrEqual(t, v, at.MinAccel, "tick %d", i)
			}
			assert.Equal(t, at.MaxAccel, tc.axis(s).Accel)
			assert.Greater(t, tc.axis(s).Velocity, 0.9*at.MaxAccel)

			for i := 0; i < 1000; i++ {
				sim.Integrate(s, tc.negative, &tuning)
				v := tc.axis(s).Velocity
				require.LessOrEqual(t, v, at.MaxAccel, "tick %d", i)
				require.GreaterOrEqual(t, v, at.MinAccel, "tick %d", i)
			}
			assert.Equal(t, at.MinAccel, tc.axis(s).Accel)
			assert.Less(t, tc.axis(s).Velocity, 0.9*at.MinAccel)
		})
	}
}

// With no input the velocity bleeds off toward zero without growing or
// crossing zero, whatever the hold length and direction.
func TestAxesDecayWhenReleased(t *testing.T) {
	tuning := sim.DefaultTuning()
	for _, tc := range axisCases {
		for _, hold := range []int{5, 30, 300, 1000} {
			for _, dir := range []struct {
				name string
				in   sim.Intent
			}{{"positive", tc.positive}, {"negative", tc.negative}} {
				t.Run(fmt.Sprintf("%s/%s/%d", tc.name, dir.name, hold), func(t *testing.T) {
					s := poweredState(tuning)
					for i := 0; i < hold; i++ {
						sim.Integrate(s, dir.in, &tuning)
					}
					start := tc.axis(s).Velocity
					require.NotZero(t, start)

					prev := math.Abs(start)
					for i := 0; i < 5000; i++ {
						sim.Integrate(s, sim.Intent{}, &tuning)
						v := tc.axis(s).Velocity
						require.LessOrEqual(t, math.Abs(v), prev+1e-9, "grew at tick %d", i)
						require.GreaterOrEqual(t, v*start, 0.0, "changed sign at tick %d", i)
						prev = math.Abs(v)
					}
					assert.InDelta(t, 0, tc.axis(s).Velocity, 1e-3)
				})
			}
		}
	}
}

// On the ground only heave is honored.
func TestGroundedAllowsOnlyHeave(t *testing.T) {
	tuning := sim.DefaultTuning()
	s := sim.NewVehicleState(tuning)
	s.Engine.Powered = true
	s.Ground.InGround = true

	sim.Integrate(s, sim.Intent{Forward: true, Right: true, TurnRight: true, Up: true}, &tuning)
	assert.Zero(t, s.Surge.Accel)
	assert.Zero(t, s.Sway.Accel)
	assert.Zero(t, s.Yaw.Accel)
	assert.Equal(t, tuning.Heave.AccelRate, s.Heave.Accel)
}

func TestDisplacementMovesInBodyFrame(t *testing.T) {
	tuning := sim.DefaultTuning()
	root := sim.NewGroup(sim.PartRoot)
	s := sim.NewVehicleState(tuning)
	s.Surge.Velocity = tuning.DisplacementScale
	s.Heave.Velocity = tuning.DisplacementScale / 2

	sim.ApplyDisplacement(root, s, &tuning)
	p := root.Position()
	assert.InDelta(t, 1, p.X, 1e-9)
	assert.InDelta(t, 0.5, p.Y, 1e-9)
	assert.InDelta(t, 0, p.Z, 1e-9)

	sim.ApplyDisplacement(nil, s, &tuning)
}

func TestIndicatorsRampAndDecay(t *testing.T) {
	tuning := sim.DefaultTuning()
	s := sim.NewVehicleState(tuning)
	s.Engine.Powered = true

	for i := 0; i < 100; i++ {
		sim.UpdateIndicators(s, sim.Intent{Forward: true, TurnLeft: true}, tuning.Indicators)
	}
	assert.Equal(t, 1.0, s.Indicators.Forward)
	assert.Equal(t, 1.0, s.Indicators.Turning)

	prev := s.Indicators.Forward
	for i := 0; i < 200; i++ {
		sim.UpdateIndicators(s, sim.Intent{}, tuning.Indicators)
		require.Less(t, s.Indicators.Forward, prev)
		prev = s.Indicators.Forward
	}
	assert.Greater(t, s.Indicators.Forward, 0.0)

	// Unpowered input is masked out, so indicators only decay.
	s.Engine.Powered = false
	before := s.Indicators.Forward
	sim.UpdateIndicators(s, sim.Intent{Forward: true}, tuning.Indicators)
	assert.Less(t, s.Indicators.Forward, before)
}

func TestPoseAngles(t *testing.T) {
	p := sim.DefaultTuning().Pose
	assert.InDelta(t, -p.AirframePitchDown, sim.AirframePitch(1, p), 1e-12)
	assert.InDelta(t, p.AirframePitchUp, sim.AirframePitch(-1, p), 1e-12)

	l, r := sim.NacelleTilt(1, p)
	assert.InDelta(t, -p.NacelleTiltBackward, l, 1e-12)
	assert.InDelta(t, p.NacelleTiltForward, r, 1e-12)

	roll := sim.AirframeRoll(sim.Indicators{Turning: 1, Horizontal: 1}, p)
	assert.InDelta(t, 0, roll, 1e-12)
}

func TestApplyPoseHoldsNacellesWhenStowed(t *testing.T) {
	f, root := testFrame(nil)
	f.State.Indicators = sim.Indicators{Forward: 1, Turning: 1}

	sim.ApplyPose(f)
	assert.NotZero(t, root.Find(sim.PartEngines).Rotation().Z)
	assert.NotZero(t, root.Find(sim.PartEngineRight).Rotation().Z)

	f.State.Fold.Engine = 0.5
	sim.ApplyPose(f)
	assert.Zero(t, root.Find(sim.PartEngines).Rotation().Z)
	assert.Zero(t, root.Find(sim.PartEngineRight).Rotation().Z)
	assert.NotZero(t, root.Find(sim.PartPitch).Rotation().Z)
}
