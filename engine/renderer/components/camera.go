package components

import (
	"github.com/spaghettifunk/prism/engine/math"
)

// pitchLimit is 89 degrees, deg_to_rad(89.0).
const pitchLimit float32 = 1.55334306

/**
 * @brief A free-look camera. Its view matrix is rebuilt lazily the first
 * time it is asked for after the position or rotation changed, and is what
 * the testbed feeds into Renderer.SetView.
 */
type Camera struct {
	position math.Vec3
	// Euler angles (pitch, yaw, roll) in radians.
	eulerRotation math.Vec3
	isDirty       bool
	viewMatrix    math.Mat4
}

// NewCamera returns a camera at position looking down -Z.
func NewCamera(position math.Vec3) *Camera {
	c := &Camera{}
	c.Reset()
	c.SetPosition(position)
	return c
}

func (c *Camera) Reset() {
	c.eulerRotation = math.NewVec3Zero()
	c.position = math.NewVec3Zero()
	c.isDirty = false
	c.viewMatrix = math.NewMat4Identity()
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) EulerRotation() math.Vec3 {
	return c.eulerRotation
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.eulerRotation = rotation
	c.isDirty = true
}

// Dirty reports whether the next View call rebuilds the matrix.
func (c *Camera) Dirty() bool {
	return c.isDirty
}

func (c *Camera) View() math.Mat4 {
	if c.isDirty {
		rotation := math.NewMat4EulerXYZ(c.eulerRotation.X, c.eulerRotation.Y, c.eulerRotation.Z)
		translation := math.NewMat4Translation(c.position)

		c.viewMatrix = rotation.Mul(translation).Inverse()
		c.isDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) Forward() math.Vec3  { return c.View().Forward() }
func (c *Camera) Backward() math.Vec3 { return c.View().Backward() }
func (c *Camera) Left() math.Vec3     { return c.View().Left() }
func (c *Camera) Right() math.Vec3    { return c.View().Right() }

func (c *Camera) move(direction math.Vec3, amount float32) {
	c.position = c.position.Add(direction.MulScalar(amount))
	c.isDirty = true
}

func (c *Camera) MoveForward(amount float32)  { c.move(c.Forward(), amount) }
func (c *Camera) MoveBackward(amount float32) { c.move(c.Backward(), amount) }
func (c *Camera) MoveLeft(amount float32)     { c.move(c.Left(), amount) }
func (c *Camera) MoveRight(amount float32)    { c.move(c.Right(), amount) }
func (c *Camera) MoveUp(amount float32)       { c.move(math.NewVec3Up(), amount) }
func (c *Camera) MoveDown(amount float32)     { c.move(math.NewVec3Down(), amount) }

func (c *Camera) Yaw(amount float32) {
	c.eulerRotation.Y += amount
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.eulerRotation.X += amount
	// Clamp to avoid Gimbal lock.
	c.eulerRotation.X = math.Clamp(c.eulerRotation.X, -pitchLimit, pitchLimit)
	c.isDirty = true
}
