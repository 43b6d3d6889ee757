package systems

import (
	"fmt"

	"golang.org/x/image/colornames"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const defaultTextureDimension uint32 = 256

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

// TextureSystem owns every texture uploaded to the renderer by name.
type TextureSystem struct {
	config         TextureSystemConfig
	renderer       TextureBackend
	defaultTexture *metadata.Texture
	// Array of registered textures.
	registeredTextures []*metadata.Texture
	// Hashtable for texture lookups.
	registeredTextureTable map[string]*metadata.TextureReference
}

func NewTextureSystem(config TextureSystemConfig, r TextureBackend) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0: %w", ErrInvalidInput)
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		config:                 config,
		renderer:               r,
		registeredTextures:     make([]*metadata.Texture, config.MaxTextureCount),
		registeredTextureTable: make(map[string]*metadata.TextureReference),
	}
	// Invalidate all textures in the array.
	for i := range ts.registeredTextures {
		ts.registeredTextures[i] = &metadata.Texture{ID: metadata.InvalidID, Generation: metadata.InvalidID}
	}
	return ts, nil
}

// Initialize uploads the default texture.
func (ts *TextureSystem) Initialize() error {
	texture, pixels := defaultCheckerboard()
	if err := ts.renderer.CreateTexture(pixels, texture); err != nil {
		core.LogError("Failed to create default texture: %s", err)
		return err
	}
	ts.defaultTexture = texture
	return nil
}

// defaultCheckerboard builds a 256x256 blue/white checkerboard pattern.
// This is done in code to eliminate asset dependencies.
func defaultCheckerboard() (*metadata.Texture, []uint8) {
	const channels = 4
	dim := defaultTextureDimension
	pixels := make([]uint8, dim*dim*channels)

	for row := uint32(0); row < dim; row++ {
		for col := uint32(0); col < dim; col++ {
			c := colornames.White
			if row%2 == col%2 {
				c = colornames.Blue
			}
			i := (row*dim + col) * channels
			pixels[i+0] = c.R
			pixels[i+1] = c.G
			pixels[i+2] = c.B
			pixels[i+3] = c.A
		}
	}

	return &metadata.Texture{
		ID:           metadata.InvalidID,
		TextureType:  metadata.TextureType2d,
		Name:         metadata.DEFAULT_TEXTURE_NAME,
		Width:        dim,
		Height:       dim,
		ChannelCount: channels,
		// A default texture never changes, so it keeps an invalid generation.
		Generation: metadata.InvalidID,
	}, pixels
}

// Create registers and uploads a texture from raw pixels with a reference count of one.
func (ts *TextureSystem) Create(name string, width, height uint32, channelCount uint8, pixels []uint8, autoRelease bool) (*metadata.Texture, error) {
	if name == "" || name == metadata.DEFAULT_TEXTURE_NAME {
		return nil, fmt.Errorf("texture create: name '%s' is reserved or empty: %w", name, ErrInvalidInput)
	}
	if _, ok := ts.registeredTextureTable[name]; ok {
		return nil, fmt.Errorf("texture create: '%s' already exists: %w", name, ErrInvalidInput)
	}

	slot := -1
	for i, t := range ts.registeredTextures {
		if t.ID == metadata.InvalidID {
			slot = i
			break
		}
	}
	if slot < 0 {
		core.LogError("Texture system cannot hold anymore textures. Adjust configuration to allow more.")
		return nil, fmt.Errorf("texture create '%s': %w", name, ErrNoFreeSlot)
	}

	t := &metadata.Texture{
		ID:           uint32(slot),
		TextureType:  metadata.TextureType2d,
		Name:         name,
		Width:        width,
		Height:       height,
		ChannelCount: channelCount,
	}
	if hasTransparency(pixels, channelCount) {
		t.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	if err := ts.renderer.CreateTexture(pixels, t); err != nil {
		return nil, fmt.Errorf("texture create '%s': %w", name, err)
	}
	t.Generation = 0

	ts.registeredTextures[slot] = t
	ts.registeredTextureTable[name] = &metadata.TextureReference{ReferenceCount: 1, Texture: t, AutoRelease: autoRelease}
	core.LogDebug("Texture '%s' created (%dx%d, %d channels).", name, width, height, channelCount)
	return t, nil
}

func hasTransparency(pixels []uint8, channelCount uint8) bool {
	if channelCount != 4 {
		return false
	}
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] < 255 {
			return true
		}
	}
	return false
}

// Acquire increments the reference count of a registered texture.
func (ts *TextureSystem) Acquire(name string) (*metadata.Texture, error) {
	// Return default texture, but warn about it since this should be returned via Default().
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("texture system Acquire called for default texture. Use Default() for texture 'default'")
		return ts.defaultTexture, nil
	}
	ref, ok := ts.registeredTextureTable[name]
	if !ok {
		return nil, fmt.Errorf("texture '%s': %w", name, ErrNotFound)
	}
	ref.ReferenceCount++
	return ref.Texture, nil
}

// Release decrements the reference count. A texture created with autoRelease
// is destroyed when its count reaches zero.
func (ts *TextureSystem) Release(name string) error {
	// Ignore release requests for the default texture.
	if name == metadata.DEFAULT_TEXTURE_NAME {
		return nil
	}
	ref, ok := ts.registeredTextureTable[name]
	if !ok {
		core.LogWarn("Tried to release non-existent texture: '%s'", name)
		return fmt.Errorf("texture '%s': %w", name, ErrNotFound)
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release a texture where autorelease=false, but references was already 0.")
		return nil
	}
	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		return ts.destroy(name, ref)
	}
	return nil
}

func (ts *TextureSystem) destroy(name string, ref *metadata.TextureReference) error {
	slot := ref.Texture.ID
	if err := ts.renderer.DestroyTexture(ref.Texture); err != nil {
		return err
	}
	ref.Texture.ID = metadata.InvalidID
	ref.Texture.Generation = metadata.InvalidID
	ts.registeredTextures[slot] = &metadata.Texture{ID: metadata.InvalidID, Generation: metadata.InvalidID}
	delete(ts.registeredTextureTable, name)
	core.LogDebug("Released texture '%s', texture unloaded because reference count=0 and AutoRelease=true.", name)
	return nil
}

// ReferenceCount reports the references held on name, or zero.
func (ts *TextureSystem) ReferenceCount(name string) uint64 {
	if ref, ok := ts.registeredTextureTable[name]; ok {
		return ref.ReferenceCount
	}
	return 0
}

func (ts *TextureSystem) Default() *metadata.Texture {
	return ts.defaultTexture
}

// Shutdown destroys every registered texture and the default one.
func (ts *TextureSystem) Shutdown() error {
	for name, ref := range ts.registeredTextureTable {
		if err := ts.destroy(name, ref); err != nil {
			return err
		}
	}
	if ts.defaultTexture != nil {
		if err := ts.renderer.DestroyTexture(ts.defaultTexture); err != nil {
			return err
		}
		ts.defaultTexture = nil
	}
	return nil
}
