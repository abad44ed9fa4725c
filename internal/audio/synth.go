package audio

import (
	"errors"
	"io"
	"math"
	"sync/atomic"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)

	rotorBlades = 3
	rotorCycles = 128
	nominalRPM  = 900.0
	maxRPM      = 1400.0
)

// synthRotorSample renders a seamless loop of blade-pass tone at nominal
// rpm. The returned rpm is the exact rate of the loop after rounding the
// sample count.
func synthRotorSample(sampleRate, blades, cycles int, nominal float64) ([]float32, float64, error) {
	if sampleRate <= 0 {
		return nil, 0, errors.New("audio init: sample rate must be > 0")
	}
	if blades <= 0 {
		return nil, 0, errors.New("audio init: blade count must be > 0")
	}
	if cycles <= 0 {
		return nil, 0, errors.New("audio init: cycles must be > 0")
	}
	if nominal <= 0 {
		return nil, 0, errors.New("audio init: nominal RPM must be > 0")
	}

	baseFreq := nominal / 60.0 * float64(blades)
	sampleCount := int(math.Round(float64(cycles) * float64(sampleRate) / baseFreq))
	if sampleCount < 1 {
		return nil, 0, errors.New("audio init: sample count too small")
	}
	baseFreq = float64(cycles) * float64(sampleRate) / float64(sampleCount)
	baseRPM := baseFreq * 60.0 / float64(blades)

	samples := make([]float64, sampleCount)
	phaseStep := 2.0 * math.Pi * baseFreq / float64(sampleRate)
	maxAbs := 0.0
	for i := range samples {
		phase := float64(i) * phaseStep
		// Blade slap: a sharpened fundamental with a slow throb.
		slap := math.Pow(math.Abs(math.Sin(phase/2)), 6)
		tone := math.Sin(phase) + 0.45*math.Sin(2*phase+0.3) + 0.6*slap
		v := tone * (0.75 + 0.2*math.Sin(phase/float64(blades)))
		samples[i] = v
		maxAbs = max(maxAbs, math.Abs(v))
	}
	if maxAbs <= 0 {
		return nil, 0, errors.New("audio init: sample amplitude is zero")
	}

	scale := 0.85 / maxAbs
	data := make([]float32, sampleCount)
	for i, v := range samples {
		data[i] = float32(v * scale)
	}
	return data, baseRPM, nil
}

// powerRPM maps nacelle power in [0, 1] to rotor rpm.
func powerRPM(power float64) float64 {
	return maxRPM * math.Sqrt(clamp(power, 0, 1))
}

func rpmGain(rpm float64) float64 {
	if rpm <= 1 {
		return 0
	}
	return 0.05 + 0.45*clamp(rpm/maxRPM, 0, 1)
}

func rpmRate(rpm, baseRPM float64) float64 {
	if rpm <= 1 || baseRPM <= 0 {
		return 0.01
	}
	return clamp(rpm/baseRPM, 0.25, 2.2)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// rotorReader streams the rotor loop forever, resampled by the current
// power. Left and right nacelles pan to their own channel.
type rotorReader struct {
	loop    []float32
	baseRPM float64

	// float64 bits, written by the sim thread
	left  atomic.Uint64
	right atomic.Uint64

	posL, posR   float64
	gainL, gainR float64
}

func newRotorReader(loop []float32, baseRPM float64) *rotorReader {
	return &rotorReader{loop: loop, baseRPM: baseRPM}
}

func (r *rotorReader) SetPower(left, right float64) {
	r.left.Store(math.Float64bits(left))
	r.right.Store(math.Float64bits(right))
}

func (r *rotorReader) power() (float64, float64) {
	return math.Float64frombits(r.left.Load()), math.Float64frombits(r.right.Load())
}

func (r *rotorReader) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	pl, pr := r.power()
	rpmL, rpmR := powerRPM(pl), powerRPM(pr)
	rateL, rateR := rpmRate(rpmL, r.baseRPM), rpmRate(rpmR, r.baseRPM)
	targetL, targetR := rpmGain(rpmL), rpmGain(rpmR)
	n := float64(len(r.loop))

	for i := 0; i < frames; i++ {
		// One-pole smoothing keeps gain steps from clicking.
		r.gainL += (targetL - r.gainL) * 0.001
		r.gainR += (targetR - r.gainR) * 0.001
		l := r.sample(r.posL) * r.gainL
		rr := r.sample(r.posR) * r.gainR
		r.posL = math.Mod(r.posL+rateL, n)
		r.posR = math.Mod(r.posR+rateR, n)
		putStereoF32LR(p, i, 0.8*l+0.2*rr, 0.2*l+0.8*rr)
	}
	return frames * 8, nil
}

func (r *rotorReader) sample(pos float64) float64 {
	i := int(pos)
	j := (i + 1) % len(r.loop)
	frac := pos - float64(i)
	return float64(r.loop[i])*(1-frac) + float64(r.loop[j])*frac
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func makeBuf(n int) []byte { return make([]byte, n*8) }

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	putStereoF32LR(buf, i, sample, sample)
}

func putStereoF32LR(buf []byte, i int, left, right float64) {
	l := math.Float32bits(float32(left))
	r := math.Float32bits(float32(right))
	buf[i*8] = byte(l)
	buf[i*8+1] = byte(l >> 8)
	buf[i*8+2] = byte(l >> 16)
	buf[i*8+3] = byte(l >> 24)
	buf[i*8+4] = byte(r)
	buf[i*8+5] = byte(r >> 8)
	buf[i*8+6] = byte(r >> 16)
	buf[i*8+7] = byte(r >> 24)
}

func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>11))/float64(1<<52) - 1
}

// genRocket is a short hiss that falls in pitch as the motor leaves.
func genRocket(seed uint64) []byte {
	const dur = 0.45
	n := int(dur * SampleRate)
	buf := makeBuf(n)
	lp := 0.0
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		noise := lcg(&seed)
		lp += (noise - lp) * (0.35 - 0.25*p)
		freq := 520 * math.Pow(0.35, p)
		phase += 2 * math.Pi * freq / SampleRate
		env := math.Min(p/0.02, 1) * math.Exp(-p*4)
		putStereoF32(buf, i, (0.7*lp+0.25*math.Sin(phase))*env)
	}
	return buf
}

// genExplosion is a noise burst over a falling sub boom.
func genExplosion(seed uint64) []byte {
	const dur = 0.9
	n := int(dur * SampleRate)
	buf := makeBuf(n)
	lp1, lp2 := 0.0, 0.0
	subPhase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		subFreq := 120 * math.Pow(28.0/120.0, p*2)
		subPhase += 2 * math.Pi * subFreq / SampleRate
		sub := math.Sin(subPhase) * math.Exp(-p*5) * 0.6

		noise := lcg(&seed)
		lp1 += (noise - lp1) * 0.25
		lp2 += (lp1 - lp2) * 0.08
		body := (lp1 - lp2) * math.Exp(-p*6) * 1.4

		crack := 0.0
		if p < 0.03 {
			crack = noise * (1 - p/0.03) * 0.7
		}
		putStereoF32(buf, i, softSat(sub+body+crack))
	}
	return buf
}

func softSat(x float64) float64 { return math.Tanh(x * 1.2) }
