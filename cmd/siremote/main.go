package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/config"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/logging"
)

type options struct {
	configPath string
	endpoint   string
	secret     string
	command    string
	value      string
	framePath  string
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("siremote", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "client config path (toml)")
	fs.StringVar(&opts.endpoint, "endpoint", "", "device endpoint, e.g. https://localhost:3003")
	fs.StringVar(&opts.secret, "secret", "", "scanner secret shown on the device")
	fs.StringVar(&opts.command, "cmd", commandDemo, "demo|state|start|stop|still|marker|exposure|sensitivity|nickname|upload|getfile|capture")
	fs.StringVar(&opts.value, "value", "", "command value")
	fs.StringVar(&opts.framePath, "out", "", "captured frame output path")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func loadConfig(opts options) (config.ClientConfig, error) {
	cfg := config.DefaultClientConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadClientConfig(opts.configPath)
		if err != nil {
			return config.ClientConfig{}, err
		}
		cfg = loaded
	}
	if opts.endpoint != "" {
		cfg.Remote.Transport.Endpoint = opts.endpoint
	}
	if opts.secret != "" {
		cfg.ServerSecret = opts.secret
	}
	if opts.framePath != "" {
		cfg.FramePath = opts.framePath
	}
	if err := config.ValidateClientConfig(cfg); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg, nil
}

func main() {
	logging.ConfigureRuntime("siremote")

	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "siremote: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.command, opts.value, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "siremote: %v\n", err)
		os.Exit(1)
	}
}
