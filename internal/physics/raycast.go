package physics

import (
	"projector/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Body     engine.BodyID
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast returns the closest body the ray hits within maxDistance.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	closest := RaycastHit{Distance: maxDistance}
	hit := false

	for _, b := range w.order {
		var h RaycastHit
		var ok bool
		if b.Shape.Type == engine.ShapeSphere {
			h, ok = RaySphere(origin, direction, b.center(), b.Shape.Radius, maxDistance)
		} else {
			t := b.Transform
			t.Position = b.center()
			h, ok = RayBox(origin, direction, t, b.Shape.HalfExtents, maxDistance)
		}
		if ok && h.Distance < closest.Distance {
			closest = h
			closest.Body = b.ID
			hit = true
		}
	}
	return closest, hit
}

// RayBox intersects a ray with an oriented box centered on t. direction
// must be normalized.
func RayBox(origin, direction rl.Vector3, t engine.Transform, half rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	// Work in the box frame, where it is axis aligned.
	o := t.InverseApply(origin)
	d := t.InverseApplyDirection(direction)

	tmin, tmax := float32(-1e30), float32(1e30)
	os := [3]float32{o.X, o.Y, o.Z}
	ds := [3]float32{d.X, d.Y, d.Z}
	hs := [3]float32{half.X, half.Y, half.Z}
	for i := range 3 {
		if ds[i] == 0 {
			if os[i] < -hs[i] || os[i] > hs[i] {
				return RaycastHit{}, false
			}
			continue
		}
		t1 := (-hs[i] - os[i]) / ds[i]
		t2 := (hs[i] - os[i]) / ds[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}
	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}

	dist := tmin
	if dist < 0 {
		dist = tmax
	}
	if dist > maxDistance {
		return RaycastHit{}, false
	}

	local := rl.Vector3Add(o, rl.Vector3Scale(d, dist))

	// The hit face is the one the local point lies on.
	var normal rl.Vector3
	best := float32(-1)
	for i, n := range worldAxes {
		c := [3]float32{local.X, local.Y, local.Z}[i] / hs[i]
		if math32.Abs(c) > best {
			best = math32.Abs(c)
			normal = rl.Vector3Scale(n, math32.Copysign(1, c))
		}
	}

	return RaycastHit{
		Point:    t.Apply(local),
		Normal:   t.ApplyDirection(normal),
		Distance: dist,
	}, true
}

// RaySphere intersects a ray with a sphere. direction must be normalized.
func RaySphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - c
	if discriminant < 0 {
		return RaycastHit{}, false
	}
	root := math32.Sqrt(discriminant)
	t := -b - root
	if t < 0 {
		t = -b + root
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
