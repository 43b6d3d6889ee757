package config

import "flag"

// Flags holds command line overrides for a loaded Config.
type Flags struct {
	Path    string
	Debug   bool
	Backend string
	Width   uint
	Height  uint
}

// RegisterFlags binds the engine flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Path, "config", "", "Path to config file (.toml, .yaml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Backend, "backend", "", "Renderer backend")
	fs.UintVar(&f.Width, "width", 0, "Window width")
	fs.UintVar(&f.Height, "height", 0, "Window height")
	return f
}

// Apply copies the flags that were set onto cfg and validates the result.
func (f *Flags) Apply(cfg *Config) error {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Backend != "" {
		cfg.Graphics.Backend = f.Backend
	}
	if f.Width > 0 {
		cfg.Window.Width = uint32(f.Width)
	}
	if f.Height > 0 {
		cfg.Window.Height = uint32(f.Height)
	}
	return cfg.Validate()
}
