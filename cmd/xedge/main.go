package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

// RootCmd is the xedge command line.
var RootCmd struct {
	Config   string     `short:"c" help:"Path to the TOML configuration file." placeholder:"PATH" type:"path"`
	LogLevel string     `short:"l" help:"Log level: debug, info, warn, error." default:"info"`
	Start    StartCmd   `cmd:"" help:"Boot the server and synchronize the time."`
	Version  VersionCmd `cmd:"" help:"Show version information."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx := kong.Parse(&RootCmd,
		kong.Name("xedge"),
		kong.Description("Embedded application server with a time-sync gated startup event."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultConfigPath is $XDG_CONFIG_HOME/xedge/xedge.toml
func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "xedge", "xedge.toml")
}

func versionString() string {
	return fmt.Sprintf("xedge %s (%s)", version, commit)
}
