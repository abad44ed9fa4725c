package audio

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthRotorSample(t *testing.T) {
	loop, baseRPM, err := synthRotorSample(SampleRate, rotorBlades, rotorCycles, nominalRPM)
	require.NoError(t, err)
	require.NotEmpty(t, loop)
	assert.InDelta(t, nominalRPM, baseRPM, 1)

	peak := 0.0
	for _, v := range loop {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	assert.InDelta(t, 0.85, peak, 1e-6)
}

func TestSynthRotorSampleRejectsBadInput(t *testing.T) {
	for _, args := range [][4]float64{
		{0, 3, 128, 900},
		{44100, 0, 128, 900},
		{44100, 3, 0, 900},
		{44100, 3, 128, 0},
	} {
		_, _, err := synthRotorSample(int(args[0]), int(args[1]), int(args[2]), args[3])
		assert.Error(t, err, "%v", args)
	}
}

func TestRPMMapping(t *testing.T) {
	assert.Zero(t, powerRPM(0))
	assert.Equal(t, maxRPM, powerRPM(1))
	assert.Equal(t, maxRPM, powerRPM(3))

	assert.Zero(t, rpmGain(0))
	assert.InDelta(t, 0.5, rpmGain(maxRPM), 1e-12)
	assert.Less(t, rpmGain(maxRPM/2), rpmGain(maxRPM))

	assert.Equal(t, 0.01, rpmRate(0, nominalRPM))
	assert.Equal(t, 1.0, rpmRate(nominalRPM, nominalRPM))
	assert.Equal(t, 2.2, rpmRate(1e6, nominalRPM))
	assert.Equal(t, 0.25, rpmRate(10, nominalRPM))
}

func frames(buf []byte) (left, right []float32) {
	for i := 0; i+8 <= len(buf); i += 8 {
		l := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
		r := uint32(buf[i+4]) | uint32(buf[i+5])<<8 | uint32(buf[i+6])<<16 | uint32(buf[i+7])<<24
		left = append(left, math.Float32frombits(l))
		right = append(right, math.Float32frombits(r))
	}
	return left, right
}

func TestRotorReaderSilentWithoutPower(t *testing.T) {
	loop, base, err := synthRotorSample(SampleRate, rotorBlades, rotorCycles, nominalRPM)
	require.NoError(t, err)
	r := newRotorReader(loop, base)

	buf := make([]byte, 8*1024+3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 8*1024, n)

	left, right := frames(buf[:n])
	for i := range left {
		require.Zero(t, left[i])
		require.Zero(t, right[i])
	}

	n, err = r.Read(make([]byte, 7))
	assert.NoError(t, err)
	assert.Zero(t, n)
}

// A running left rotor is louder in the left channel.
func TestRotorReaderPansByNacelle(t *testing.T) {
	loop, base, err := synthRotorSample(SampleRate, rotorBlades, rotorCycles, nominalRPM)
	require.NoError(t, err)
	r := newRotorReader(loop, base)
	r.SetPower(1, 0)
	l, rr := r.power()
	assert.Equal(t, 1.0, l)
	assert.Zero(t, rr)

	buf := make([]byte, 8*SampleRate/2)
	_, err = r.Read(buf)
	require.NoError(t, err)
	left, right := frames(buf)

	var el, er float64
	for i := range left {
		el += float64(left[i]) * float64(left[i])
		er += float64(right[i]) * float64(right[i])
	}
	assert.Greater(t, el, 0.0)
	assert.Greater(t, el, 4*er)
}

func TestOneShotSounds(t *testing.T) {
	rocket := genRocket(1)
	assert.Len(t, rocket, int(0.45*SampleRate)*8)
	boom := genExplosion(2)
	assert.Len(t, boom, int(0.9*SampleRate)*8)

	left, _ := frames(boom)
	for _, v := range left {
		require.LessOrEqual(t, math.Abs(float64(v)), 1.0)
	}
	assert.NotEqual(t, genRocket(1)[8000:8100], genRocket(99)[8000:8100])
	assert.Equal(t, rocket, genRocket(1))
}

func TestSoundReaderDrains(t *testing.T) {
	r := &soundReader{data: []byte{1, 2, 3, 4, 5}}
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}
