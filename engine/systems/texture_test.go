package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestNewTextureSystemRejectsZeroCount(t *testing.T) {
	if _, err := NewTextureSystem(TextureSystemConfig{}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewTextureSystem() error = %v, want %v", err, ErrInvalidInput)
	}
}

func TestDefaultTextureIsCheckerboard(t *testing.T) {
	_, backend, sm := newTestStack(t, DefaultSystemManagerConfig())
	def := sm.Textures().Default()
	if def == nil || def.Name != metadata.DEFAULT_TEXTURE_NAME {
		t.Fatalf("Default() = %+v", def)
	}
	if def.Width != 256 || def.Height != 256 || def.ChannelCount != 4 {
		t.Errorf("default texture is %dx%dx%d, want 256x256x4", def.Width, def.Height, def.ChannelCount)
	}
	if def.Generation != metadata.InvalidID {
		t.Errorf("default texture generation = %d, want invalid", def.Generation)
	}

	pixels, ok := backend.TexturePixels(def)
	if !ok {
		t.Fatal("default texture was not uploaded")
	}
	tests := []struct {
		row, col uint32
		want     [4]uint8
	}{
		{0, 0, [4]uint8{0, 0, 255, 255}},
		{0, 1, [4]uint8{255, 255, 255, 255}},
		{1, 0, [4]uint8{255, 255, 255, 255}},
		{255, 255, [4]uint8{0, 0, 255, 255}},
	}
	for _, tt := range tests {
		i := (tt.row*256 + tt.col) * 4
		var got [4]uint8
		copy(got[:], pixels[i:i+4])
		if got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestTextureCreateAndRelease(t *testing.T) {
	_, backend, sm := newTestStack(t, DefaultSystemManagerConfig())
	ts := sm.Textures()
	before := backend.Stats().Textures

	pixels := []uint8{
		255, 0, 0, 255, 0, 255, 0, 128,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	tex, err := ts.Create("bricks", 2, 2, 4, pixels, true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tex.Flags&metadata.TextureFlagBits(metadata.TextureFlagHasTransparency) == 0 {
		t.Error("texture with alpha < 255 should be flagged transparent")
	}
	if got := backend.Stats().Textures; got != before+1 {
		t.Errorf("backend textures = %d, want %d", got, before+1)
	}

	if _, err := ts.Create("bricks", 2, 2, 4, pixels, true); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("duplicate Create() error = %v, want %v", err, ErrInvalidInput)
	}
	if _, err := ts.Create(metadata.DEFAULT_TEXTURE_NAME, 2, 2, 4, pixels, true); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Create(default) error = %v, want %v", err, ErrInvalidInput)
	}

	if _, err := ts.Acquire("bricks"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got := ts.ReferenceCount("bricks"); got != 2 {
		t.Errorf("ReferenceCount() = %d, want 2", got)
	}
	if err := ts.Release("bricks"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := ts.Release("bricks"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if tex.ID != metadata.InvalidID {
		t.Errorf("released texture ID = %d, want invalid", tex.ID)
	}
	if got := backend.Stats().Textures; got != before {
		t.Errorf("backend textures after release = %d, want %d", got, before)
	}
	if _, err := ts.Acquire("bricks"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Acquire() after release error = %v, want %v", err, ErrNotFound)
	}
}

func TestTextureWithoutAutoReleaseSurvives(t *testing.T) {
	_, _, sm := newTestStack(t, DefaultSystemManagerConfig())
	ts := sm.Textures()
	if _, err := ts.Create("kept", 1, 1, 3, []uint8{1, 2, 3}, false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := ts.Release("kept"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := ts.Acquire("kept"); err != nil {
		t.Errorf("Acquire() error = %v, texture should still be registered", err)
	}
}

func TestTextureSlotsExhausted(t *testing.T) {
	config := DefaultSystemManagerConfig()
	config.MaxTextureCount = 1
	_, _, sm := newTestStack(t, config)
	ts := sm.Textures()
	if _, err := ts.Create("a", 1, 1, 1, []uint8{0}, false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := ts.Create("b", 1, 1, 1, []uint8{0}, false); !errors.Is(err, ErrNoFreeSlot) {
		t.Errorf("Create() error = %v, want %v", err, ErrNoFreeSlot)
	}
}
