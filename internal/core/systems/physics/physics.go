package physics

import "math"

// Vec3 is a plain 3D vector value.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Zero is the zero vector.
var Zero = Vec3{}

// V3 builds a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale multiplies every component by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// SqrMagnitude avoids the square root; use it for comparisons.
func (v Vec3) SqrMagnitude() float64 { return v.Dot(v) }

func (v Vec3) Magnitude() float64 { return math.Sqrt(v.SqrMagnitude()) }

// IsFinite reports whether no component is NaN or ±Inf.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// ApproxEqual compares componentwise within eps.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}
