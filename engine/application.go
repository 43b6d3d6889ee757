package engine

import (
	"github.com/spaghettifunk/prism/engine/config"
)

type ApplicationConfig struct {
	// Engine settings. Nil selects config.Default().
	Config *config.Config
	// Path the config was loaded from. When set, edits to the file are
	// picked up while running.
	ConfigPath string
	// Stop after this many frames. Zero runs until Quit or the context ends.
	MaxFrames uint64
	// Frames per second to cap the loop to. Zero means uncapped.
	TargetFrameRate float64
}
