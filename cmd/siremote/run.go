package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/config"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol/transport"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/remote"
	"github.com/rs/zerolog/log"
)

const commandDemo = "demo"

var (
	// ErrDeviceRejected reports a well-formed response whose status is not success.
	ErrDeviceRejected = errors.New("device rejected request")
	ErrUnknownCommand = errors.New("unknown command")
)

func run(ctx context.Context, cfg config.ClientConfig, command, value string, out io.Writer) error {
	s, err := remote.New(cfg.Remote)
	if err != nil {
		return err
	}
	if err := register(ctx, s, cfg); err != nil {
		return err
	}
	if command == "" || command == commandDemo {
		return demo(ctx, s, cfg, out)
	}
	return runCommand(ctx, s, cfg, command, value, out)
}

// register retries exchange failures with backoff. A rejection from the
// device is final.
func register(ctx context.Context, s *remote.Session, cfg config.ClientConfig) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	backoff := cfg.Remote.Transport.WithDefaults().Backoff

	var err error
	for attempt := 1; attempt <= cfg.RegisterAttempts; attempt++ {
		if err = s.Register(ctx, cfg.ServerSecret); err == nil {
			return checkForFailure(s)
		}
		if attempt == cfg.RegisterAttempts {
			break
		}
		delay := transport.NextBackoffDelay(backoff, attempt, rng)
		log.Warn().
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Err(err).
			Msg("register failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("register after %d attempts: %w", cfg.RegisterAttempts, err)
}

// demo walks the typical remote session: capture and save a frame, adjust
// the scan requirements and camera settings, then read back the state.
func demo(ctx context.Context, s *remote.Session, cfg config.ClientConfig, out io.Writer) error {
	if err := capture(ctx, s, cfg.FramePath, out); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return s.SetStillnessRequired(ctx, false) },
		func() error { return s.SetMarkerRequired(ctx, true) },
		func() error { return s.SetCameraExposure(ctx, 10_000_000) },
		func() error { return s.SetCameraSensitivity(ctx, 800) },
		func() error { return s.GetState(ctx) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
		printResponse(out, s)
		if err := checkForFailure(s); err != nil {
			return err
		}
	}
	return nil
}

func runCommand(ctx context.Context, s *remote.Session, cfg config.ClientConfig, command, value string, out io.Writer) error {
	var err error
	name := strings.ToLower(strings.TrimSpace(command))
	switch name {
	case "capture":
		return capture(ctx, s, cfg.FramePath, out)
	case "state":
		err = s.GetState(ctx)
	case "start":
		err = s.StartScan(ctx)
	case "stop":
		err = s.StopScan(ctx)
	case "still", "marker":
		required, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("%s value: %w", name, perr)
		}
		if name == "still" {
			err = s.SetStillnessRequired(ctx, required)
		} else {
			err = s.SetMarkerRequired(ctx, required)
		}
	case "exposure":
		ns, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil {
			return fmt.Errorf("exposure value: %w", perr)
		}
		err = s.SetCameraExposure(ctx, ns)
	case "sensitivity":
		iso, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("sensitivity value: %w", perr)
		}
		err = s.SetCameraSensitivity(ctx, iso)
	case "nickname":
		err = s.SetNickname(ctx, value)
	case "upload":
		err = s.UploadScan(ctx, value)
	case "getfile":
		err = s.GetFile(ctx, value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	if err != nil {
		return err
	}
	printResponse(out, s)
	return checkForFailure(s)
}

func capture(ctx context.Context, s *remote.Session, path string, out io.Writer) error {
	img, err := s.CaptureFrame(ctx)
	if err != nil {
		return err
	}
	if err := remote.SaveImage(img, path); err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Fprintf(out, "FRAME: %s (%dx%d)\n", path, b.Dx(), b.Dy())
	return nil
}

func checkForFailure(s *remote.Session) error {
	if strings.EqualFold(s.Status(), protocol.StatusSuccess) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDeviceRejected, s.Message())
}

func printResponse(out io.Writer, s *remote.Session) {
	fmt.Fprintf(out, "RESPONSE: %s\nMESSAGE: %s\n", s.Status(), s.Message())
}
