package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"projector/internal/config"
	"projector/internal/injector"
	"runtime"
	"strings"
	"syscall"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file")
	scenePath := flag.String("scene", "", "scene file to open (overrides the config)")
	flag.Parse()

	// raylib needs the main OS thread.
	runtime.LockOSThread()

	// Deployed builds look for assets next to the binary. "go run" builds
	// into a go-build temp dir, so stay put there.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			_ = os.Chdir(execDir)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, cleanup, err := injector.InitializeGame(injector.ConfigPath(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "projector:", err)
		os.Exit(1)
	}
	defer cleanup()

	if *scenePath != "" {
		g.ScenePath = *scenePath
	}
	if err := g.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "projector:", err)
		cleanup()
		os.Exit(1)
	}
}
