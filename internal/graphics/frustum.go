package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six clip planes of a projection*view matrix in the
// order left, right, bottom, top, near, far.
type Frustum [6]plane

// NewFrustum extracts the clip planes of clip.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 matrices are column-major
	row := func(r int) [4]float32 {
		return [4]float32{clip[r], clip[4+r], clip[8+r], clip[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	combine := func(a [4]float32, s float32, b [4]float32) plane {
		return normalizePlane(plane{a[0] + s*b[0], a[1] + s*b[1], a[2] + s*b[2], a[3] + s*b[3]})
	}
	return Frustum{
		combine(r3, 1, r0),
		combine(r3, -1, r0),
		combine(r3, 1, r1),
		combine(r3, -1, r1),
		combine(r3, 1, r2),
		combine(r3, -1, r2),
	}
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// IntersectsAABB reports whether the box [lo, hi] is at least partly inside.
func (f *Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	for _, p := range f {
		// the corner furthest along the plane normal
		x, y, z := hi.X(), hi.Y(), hi.Z()
		if p.a < 0 {
			x = lo.X()
		}
		if p.b < 0 {
			y = lo.Y()
		}
		if p.c < 0 {
			z = lo.Z()
		}
		if p.a*x+p.b*y+p.c*z+p.d < 0 {
			return false
		}
	}
	return true
}
