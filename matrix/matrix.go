// Package matrix provides the 2D affine transformations used by the
// `transform` property and the display list.
package matrix

import (
	"errors"
	"math"

	"github.com/benoitkugler/vformat/utils"
)

type fl = utils.Fl

// Transform encodes the affine transformation
//
//	x_new = a * x + c * y + e
//	y_new = b * x + d * y + f
type Transform struct {
	A, B, C, D, E, F fl
}

func New(a, b, c, d, e, f fl) Transform {
	return Transform{A: a, B: b, C: c, D: d, E: e, F: f}
}

func Identity() Transform { return Transform{A: 1, D: 1} }

func Translation(tx, ty fl) Transform { return Transform{1, 0, 0, 1, tx, ty} }

func Scaling(sx, sy fl) Transform { return Transform{sx, 0, 0, sy, 0, 0} }

// Rotation rotates from the positive X axis toward the positive Y axis.
func Rotation(radians fl) Transform {
	cos, sin := fl(math.Cos(float64(radians))), fl(math.Sin(float64(radians)))
	return Transform{cos, sin, -sin, cos, 0, 0}
}

func Skew(thetax, thetay fl) Transform {
	c, b := fl(math.Tan(float64(thetax))), fl(math.Tan(float64(thetay)))
	return Transform{1, b, c, 1, 0, 0}
}

func (t Transform) IsIdentity() bool { return t == Identity() }

func (t Transform) Determinant() fl { return t.A*t.D - t.B*t.C }

// Mul returns the transform t * u, which applies u then t.
func Mul(t, u Transform) Transform {
	return Transform{
		A: t.A*u.A + t.C*u.B,
		B: t.B*u.A + t.D*u.B,
		C: t.A*u.C + t.C*u.D,
		D: t.B*u.C + t.D*u.D,
		E: t.A*u.E + t.C*u.F + t.E,
		F: t.B*u.E + t.D*u.F + t.F,
	}
}

// Around returns the transformation [t] applied with [ox, oy] as origin.
func Around(t Transform, ox, oy fl) Transform {
	return Mul(Translation(ox, oy), Mul(t, Translation(-ox, -oy)))
}

var errNotInvertible = errors.New("transformation is not invertible")

// Inverse returns the inverse transformation.
func (t Transform) Inverse() (Transform, error) {
	det := t.Determinant()
	if det == 0 {
		return Transform{}, errNotInvertible
	}
	out := Transform{A: t.D / det, B: -t.B / det, C: -t.C / det, D: t.A / det}
	out.E = -(out.A*t.E + out.C*t.F)
	out.F = -(out.B*t.E + out.D*t.F)
	return out, nil
}

// Apply transforms the point (x, y).
func (t Transform) Apply(x, y fl) (fl, fl) {
	return t.A*x + t.C*y + t.E, t.B*x + t.D*y + t.F
}

// BoundingBox returns the axis aligned box enclosing the transformed rectangle.
func (t Transform) BoundingBox(x, y, w, h fl) (minX, minY, maxX, maxY fl) {
	xs, ys := [4]fl{}, [4]fl{}
	xs[0], ys[0] = t.Apply(x, y)
	xs[1], ys[1] = t.Apply(x+w, y)
	xs[2], ys[2] = t.Apply(x, y+h)
	xs[3], ys[3] = t.Apply(x+w, y+h)
	return utils.Mins(xs[:]...), utils.Mins(ys[:]...), utils.Maxs(xs[:]...), utils.Maxs(ys[:]...)
}

// Decomposition splits an affine transformation into
// Translate(TX, TY) * Rotate(Angle) * Shear(Shear, 0) * Scale(SX, SY).
type Decomposition struct {
	TX, TY, Angle, Shear, SX, SY fl
}

// Decompose computes the QR-like decomposition of [t], used by backends
// which only expose elementary operations.
func (t Transform) Decompose() Decomposition {
	out := Decomposition{TX: t.E, TY: t.F}
	out.SX = utils.Hypot(t.A, t.B)
	if out.SX == 0 {
		return out
	}
	out.Angle = fl(math.Atan2(float64(t.B), float64(t.A)))
	det := t.Determinant()
	out.SY = det / out.SX
	if det != 0 {
		out.Shear = (t.A*t.C + t.B*t.D) / det
	}
	return out
}

// Transform rebuilds the matrix from its decomposition.
func (d Decomposition) Transform() Transform {
	shear := Transform{A: 1, C: d.Shear, D: 1}
	return Mul(Translation(d.TX, d.TY), Mul(Rotation(d.Angle), Mul(shear, Scaling(d.SX, d.SY))))
}
