package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/config"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/device"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime("scannersim")

	configPath := flag.String("config", "", "simulator config path (toml)")
	addr := flag.String("addr", "", "listen address override")
	secret := flag.String("secret", "", "scanner secret override")
	flag.Parse()

	cfg := device.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadSimulatorConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load simulator config")
		}
		log.Info().Str("path", *configPath).Msg("loaded simulator config")
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *secret != "" {
		cfg.ScannerSecret = *secret
	}

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("addr", cfg.Addr).
		Str("scanner_secret", cfg.ScannerSecret).
		Int("frame_width", cfg.FrameWidth).
		Int("frame_height", cfg.FrameHeight).
		Msg("scanner simulator started")
	if err := device.New(cfg).Serve(ctx); err != nil {
		log.Fatal().Err(err).Msg("scanner simulator stopped")
	}
}
