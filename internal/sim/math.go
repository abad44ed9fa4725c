package sim

import (
	"math"
)

type Vec3 struct {
	X, Y, Z float64
}

var (
	AxisX = Vec3{1, 0, 0}
	AxisY = Vec3{0, 1, 0}
	AxisZ = Vec3{0, 0, 1}
)

func (v Vec3) Add(other Vec3) Vec3     { return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z} }
func (v Vec3) Sub(other Vec3) Vec3     { return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z} }
func (v Vec3) Mul(scalar float64) Vec3 { return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar} }

func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{0, 0, 0}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// NormalizeSafe normalizes unless |v| < eps, in which case it returns (0,0,0).
func (v Vec3) NormalizeSafe(eps float64) Vec3 {
	if v.Length() < eps {
		return Vec3{0, 0, 0}
	}
	return v.Normalize()
}

// Lerp returns v + (other-v)*t.
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Add(other.Sub(v).Mul(t))
}

func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

type Vec4 struct {
	X, Y, Z, W float64
}

func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Approach moves current toward target by at most step.
func Approach(current, target, step float64) float64 {
	if current < target {
		return math.Min(current+step, target)
	}
	return math.Max(current-step, target)
}

// WrapAngle maps an angle into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// YawForward is the body +X axis in world space for a vehicle yawed by yaw
// radians about +Y.
func YawForward(yaw float64) Vec3 {
	return Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}
}

// YawRight is the body +Z axis in world space.
func YawRight(yaw float64) Vec3 {
	return Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// Mat3 is a row-major 3x3 rotation matrix.
type Mat3 [3][3]float64

func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func rotX3(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

func rotY3(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

func rotZ3(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// EulerToMat3 composes Ry(e.Y) * Rx(e.X) * Rz(e.Z). Yaw is applied outermost
// so a node that only yaws keeps the full (-π, π] range on round trips.
func EulerToMat3(e Vec3) Mat3 {
	return rotY3(e.Y).Mul(rotX3(e.X)).Mul(rotZ3(e.Z))
}

// ToEuler is the inverse of EulerToMat3.
func (m Mat3) ToEuler() Vec3 {
	var e Vec3
	e.X = math.Asin(Clamp(-m[1][2], -1, 1))
	if math.Abs(m[1][2]) < 0.9999999 {
		e.Y = math.Atan2(m[0][2], m[2][2])
		e.Z = math.Atan2(m[1][0], m[1][1])
	} else {
		e.Y = math.Atan2(-m[2][0], m[0][0])
		e.Z = 0
	}
	return e
}

// AxisAngleMat3 builds a rotation of angle radians about a unit axis.
func AxisAngleMat3(axis Vec3, angle float64) Mat3 {
	a := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Mat3{
		{t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y},
		{t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X},
		{t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c},
	}
}

// Mat4 is a 4x4 matrix in column-major order (OpenGL-style).
type Mat4 [16]float64

func IdentityMat4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// PerspectiveMat4 builds a right-handed OpenGL projection.
// fovy is in DEGREES, aspect = width/height, NDC z ∈ [-1,1].
func PerspectiveMat4(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy*math.Pi/360.0) // = 1 / tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAtMat4 creates a right-handed view matrix.
func LookAtMat4(eye, center, up Vec3) Mat4 {
	const eps = 1e-8

	f := center.Sub(eye).NormalizeSafe(eps)
	s := f.Cross(up)
	if s.Length() < eps {
		// Choose an alternate up if too parallel
		var altUp Vec3
		if math.Abs(f.X) < 0.9 {
			altUp = Vec3{1, 0, 0}
		} else {
			altUp = Vec3{0, 0, 1}
		}
		s = f.Cross(altUp)
	}
	s = s.Normalize()
	u := s.Cross(f)

	// Rows of the rotation are s, u, -f; stored column-major.
	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

func TranslationMat4(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// RotationMat4 embeds a rotation and a translation into a column-major Mat4.
func RotationMat4(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0][0], r[1][0], r[2][0], 0,
		r[0][1], r[1][1], r[2][1], 0,
		r[0][2], r[1][2], r[2][2], 0,
		t.X, t.Y, t.Z, 1,
	}
}

func ScaleMat4(sx, sy, sz float64) Mat4 {
	return Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, 0, 1,
	}
}

// Mul performs column-major matrix multiplication: result = m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			result[col*4+row] = sum
		}
	}
	return result
}

// MulVec4 multiplies matrix by a column vector v: r = m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	r0 := m[0*4+0]*v.X + m[1*4+0]*v.Y + m[2*4+0]*v.Z + m[3*4+0]*v.W
	r1 := m[0*4+1]*v.X + m[1*4+1]*v.Y + m[2*4+1]*v.Z + m[3*4+1]*v.W
	r2 := m[0*4+2]*v.X + m[1*4+2]*v.Y + m[2*4+2]*v.Z + m[3*4+2]*v.W
	r3 := m[0*4+3]*v.X + m[1*4+3]*v.Y + m[2*4+3]*v.Z + m[3*4+3]*v.W
	return Vec4{r0, r1, r2, r3}
}

// MulPoint transforms a point (w=1) and applies perspective divide if w != 0.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	r := m.MulVec4(Vec4{p.X, p.Y, p.Z, 1})
	if r.W != 0 && r.W != 1 {
		inv := 1.0 / r.W
		return Vec3{r.X * inv, r.Y * inv, r.Z * inv}
	}
	return Vec3{r.X, r.Y, r.Z}
}

// MulDirection transforms a direction (w=0), ignoring translation.
func (m Mat4) MulDirection(d Vec3) Vec3 {
	r := m.MulVec4(Vec4{d.X, d.Y, d.Z, 0})
	return Vec3{r.X, r.Y, r.Z}
}

// Float32 converts for GL uniform upload.
func (m Mat4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
