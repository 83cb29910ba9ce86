package world

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Frustum holds the six clip planes of a camera, normals pointing inward.
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane is n·p + d = 0.
type Plane struct {
	normal   rl.Vector3
	distance float32
}

const (
	clipNear float32 = 0.1
	clipFar  float32 = 1000
)

// ExtractFrustum builds the frustum of camera at the given aspect ratio.
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	view := rl.GetCameraMatrix(camera)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, clipNear, clipFar)
	} else {
		halfH := camera.Fovy / 2
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, clipNear, clipFar)
	}
	return frustumFromMatrix(rl.MatrixMultiply(view, proj))
}

// frustumFromMatrix pulls the planes out of a view-projection matrix
// (Gribb/Hartmann): each plane is the last row plus or minus another row.
func frustumFromMatrix(vp rl.Matrix) Frustum {
	rows := [4][4]float32{
		{vp.M0, vp.M4, vp.M8, vp.M12},
		{vp.M1, vp.M5, vp.M9, vp.M13},
		{vp.M2, vp.M6, vp.M10, vp.M14},
		{vp.M3, vp.M7, vp.M11, vp.M15},
	}

	var f Frustum
	for i := range f.planes {
		row := rows[i/2]
		sign := float32(1)
		if i%2 == 1 {
			sign = -1
		}
		w := rows[3]
		f.planes[i] = normalizePlane(Plane{
			normal: rl.Vector3{
				X: w[0] + sign*row[0],
				Y: w[1] + sign*row[1],
				Z: w[2] + sign*row[2],
			},
			distance: w[3] + sign*row[3],
		})
	}
	return f
}

func normalizePlane(p Plane) Plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1/length),
		distance: p.distance / length,
	}
}

// ContainsSphere reports whether any part of the sphere is inside.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for _, p := range f.planes {
		if rl.Vector3DotProduct(p.normal, center)+p.distance < -radius {
			return false
		}
	}
	return true
}
