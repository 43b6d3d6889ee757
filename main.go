/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/testbed"

	_ "github.com/spaghettifunk/prism/engine/renderer/headless"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	frames := flag.Uint64("frames", 600, "Frames to render before exiting (0 runs until interrupted)")
	fps := flag.Float64("fps", 60, "Frame rate cap (0 is uncapped)")
	flag.Parse()

	cfg, err := config.Load(flags.Path)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := flags.Apply(cfg); err != nil {
		core.LogFatal("%s", err)
	}
	core.ConfigureLogging(core.LogLevel(cfg.Logging.Level), cfg.Logging.LogFile)
	defer core.CloseLogging()

	tb := testbed.NewTestGame(&engine.ApplicationConfig{
		Config:          cfg,
		ConfigPath:      flags.Path,
		MaxFrames:       *frames,
		TargetFrameRate: *fps,
	})

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%s", err)
	}

	// capture sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	code := 0
	if err := e.Initialize(); err != nil {
		core.LogError("initialize: %s", err)
		code = 1
	} else if err := e.Run(ctx); err != nil {
		core.LogError("run: %s", err)
		code = 1
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
		code = 1
	}
	if code != 0 {
		core.CloseLogging()
		os.Exit(code)
	}
}
