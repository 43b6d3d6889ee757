package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/math"
)

func TestCameraSystem(t *testing.T) {
	cs, err := NewCameraSystem(CameraSystemConfig{MaxCameraCount: 1, DefaultPosition: math.NewVec3(0, 0, 30)})
	if err != nil {
		t.Fatalf("NewCameraSystem() error = %v", err)
	}
	def, err := cs.Acquire(DefaultCameraName)
	if err != nil || def != cs.Default() {
		t.Fatalf("Acquire(default) = %v, %v", def, err)
	}
	if def.Position() != math.NewVec3(0, 0, 30) {
		t.Errorf("default camera position = %v", def.Position())
	}

	a, err := cs.Acquire("world")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if b, _ := cs.Acquire("world"); b != a {
		t.Error("same name should return the same camera")
	}
	if _, err := cs.Acquire("other"); !errors.Is(err, ErrNoFreeSlot) {
		t.Errorf("Acquire() past capacity error = %v, want %v", err, ErrNoFreeSlot)
	}

	a.MoveLeft(5)
	_ = cs.Release("world")
	_ = cs.Release("world")
	fresh, err := cs.Acquire("world")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if fresh == a || fresh.Position() != math.NewVec3(0, 0, 30) {
		t.Error("fully released camera should be recreated")
	}
	if err := cs.Release("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Release() of unknown error = %v, want %v", err, ErrNotFound)
	}
}

func TestNewCameraSystemRejectsZeroCount(t *testing.T) {
	if _, err := NewCameraSystem(CameraSystemConfig{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewCameraSystem() error = %v, want %v", err, ErrInvalidInput)
	}
}
