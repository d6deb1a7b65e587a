package imageproc

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Projection is a 2D affine transform stored as the top two rows of a 3x3 matrix:
//
//	| a b c |
//	| d e f |
//	| 0 0 1 |
type Projection struct {
	a, b, c float64
	d, e, f float64
}

func Identity() Projection {
	return Projection{a: 1, e: 1}
}

func Translate(tx, ty float64) Projection {
	return Projection{a: 1, c: tx, e: 1, f: ty}
}

// Rotate rotates by theta radians around the origin. With y pointing down, positive
// angles turn clockwise on screen.
func Rotate(theta float64) Projection {
	sin, cos := math.Sincos(theta)
	return Projection{a: cos, b: -sin, d: sin, e: cos}
}

// RotateAbout rotates by theta radians around (cx, cy).
func RotateAbout(theta, cx, cy float64) Projection {
	return Translate(cx, cy).Mul(Rotate(theta)).Mul(Translate(-cx, -cy))
}

// Mul returns p*q: the resulting projection applies q first, then p.
func (p Projection) Mul(q Projection) Projection {
	return Projection{
		a: p.a*q.a + p.b*q.d,
		b: p.a*q.b + p.b*q.e,
		c: p.a*q.c + p.b*q.f + p.c,
		d: p.d*q.a + p.e*q.d,
		e: p.d*q.b + p.e*q.e,
		f: p.d*q.c + p.e*q.f + p.f,
	}
}

func (p Projection) Apply(x, y float64) (float64, float64) {
	return p.a*x + p.b*y + p.c, p.d*x + p.e*y + p.f
}

// Invert returns the inverse projection. ok is false for singular matrices.
func (p Projection) Invert() (inv Projection, ok bool) {
	det := p.a*p.e - p.b*p.d
	if det == 0 {
		return Projection{}, false
	}
	inv.a = p.e / det
	inv.b = -p.b / det
	inv.d = -p.d / det
	inv.e = p.a / det
	inv.c = -(inv.a*p.c + inv.b*p.f)
	inv.f = -(inv.d*p.c + inv.e*p.f)
	return inv, true
}

// Aff3 converts p to the matrix type used by golang.org/x/image/draw.
func (p Projection) Aff3() f64.Aff3 {
	return f64.Aff3{p.a, p.b, p.c, p.d, p.e, p.f}
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
