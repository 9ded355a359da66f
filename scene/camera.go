package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/accel/types"
)

// Stores the ray directions at the four corners of the camera frustrum
// (TL, TR, BL, BR). Per pixel rays are generated by interpolating the corner
// rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole camera used for generating batches of primary rays.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Pending rotations (in radians) applied by the next call to Update.
	Pitch float32
	Yaw   float32

	// Vertical field of view in degrees.
	FOV float32

	// Image width / height.
	Aspect float32

	Frustrum Frustrum
}

// Create a camera at the origin looking down the -Z axis.
func NewCamera(fov float32) *Camera {
	c := &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   1,
	}
	c.Update()
	return c
}

// Set the image aspect ratio and refresh the frustrum.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.Update()
}

// Apply any pending pitch/yaw rotation and recalculate the frustrum.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()

	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up).Normalize()
		pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up.Normalize(), c.Yaw)

		orientQuat := pitchQuat.Mul(yawQuat).Normalize()
		dir = orientQuat.Rotate(dir)
		c.LookAt = c.Position.Add(dir)
		c.Pitch, c.Yaw = 0, 0
	}

	c.updateFrustrum(dir)
}

// Build the corner rays from the camera basis.
func (c *Camera) updateFrustrum(dir types.Vec3) {
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir)

	halfHeight := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	halfWidth := halfHeight * c.Aspect

	dx := right.Mul(halfWidth)
	dy := up.Mul(halfHeight)
	c.Frustrum[0] = dir.Sub(dx).Add(dy)
	c.Frustrum[1] = dir.Add(dx).Add(dy)
	c.Frustrum[2] = dir.Sub(dx).Sub(dy)
	c.Frustrum[3] = dir.Add(dx).Sub(dy)
}

// Generate one primary ray through the center of each pixel of a
// width x height image in row-major order. The rays are appended to out
// which is returned.
func (c *Camera) GenerateRays(width, height int, tMax float32, out []types.Ray) []types.Ray {
	fr := c.Frustrum
	for y := 0; y < height; y++ {
		ty := (float32(y) + 0.5) / float32(height)
		left := fr[0].Add(fr[2].Sub(fr[0]).Mul(ty))
		right := fr[1].Add(fr[3].Sub(fr[1]).Mul(ty))
		for x := 0; x < width; x++ {
			tx := (float32(x) + 0.5) / float32(width)
			dir := left.Add(right.Sub(left).Mul(tx)).Normalize()
			out = append(out, types.NewRay(c.Position, dir, 0, tMax))
		}
	}
	return out
}

// Create a camera that looks at the center of bounds from the +Z side, far
// enough for the bounds to fit in the vertical field of view.
func NewCameraForBounds(bounds types.AABB, fov float32) *Camera {
	c := NewCamera(fov)
	radius := bounds.Size().Len() * 0.5
	if !bounds.Valid() || radius == 0 {
		return c
	}

	center := bounds.Center()
	dist := radius/float32(math.Tan(float64(fov)*math.Pi/360.0)) + radius

	c.Position = center.Add(types.Vec3{0, 0, dist})
	c.LookAt = center
	c.Update()
	return c
}
