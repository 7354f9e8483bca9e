// Package geom provides the axis-aligned bounding box and the small
// matrix helpers shared by the scene package. Linear algebra itself
// comes from mgl32.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundBox is an axis-aligned box given by its min/max corners.
// The zero value is a degenerate point at the origin; use NewBoundBox
// for the empty (inverted) box so unions start from a clean slate.
type BoundBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewBoundBox returns an inverted box (Min > Max on every axis).
// Callers must treat it as "empty", never as an origin-centered point.
func NewBoundBox() BoundBox {
	return BoundBox{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// IsValid reports whether the box encloses at least one point.
func (b BoundBox) IsValid() bool {
	return b.Min.X() <= b.Max.X() && b.Min.Y() <= b.Max.Y() && b.Min.Z() <= b.Max.Z()
}

// Add grows the box to include the point p.
func (b BoundBox) Add(p mgl32.Vec3) BoundBox {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union merges two boxes componentwise.
func (b BoundBox) Union(other BoundBox) BoundBox {
	return b.Add(other.Min).Add(other.Max)
}

// Size returns the box extent along each axis.
func (b BoundBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the axis-aligned box enclosing b under m. All
// eight corners are projected: rotation or shear can move the extremal
// corner, so transforming just Min/Max is not conservative.
func (b BoundBox) Transform(m mgl32.Mat4) BoundBox {
	out := NewBoundBox()
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out = out.Add(m.Mul4x1(corner.Vec4(1)).Vec3())
	}
	return out
}

// SafeInv returns the inverse of m, or identity when m is singular.
// A degenerate transform still yields a defined (if wrong) pose
// instead of NaNs propagating through skinning.
func SafeInv(m mgl32.Mat4) mgl32.Mat4 {
	inv := m.Inv()
	if inv == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return inv
}
