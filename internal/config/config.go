package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/device"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol/transport"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/remote"
)

const (
	DefaultRegisterAttempts = 3
	DefaultFramePath        = "frame.jpg"
)

// ClientConfig is everything the remote CLI needs for one device.
type ClientConfig struct {
	Remote           remote.Config
	ServerSecret     string
	RegisterAttempts int
	FramePath        string
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Remote:           remote.DefaultConfig(),
		RegisterAttempts: DefaultRegisterAttempts,
		FramePath:        DefaultFramePath,
	}
}

type clientFile struct {
	Endpoint              string `toml:"endpoint"`
	ServerSecret          string `toml:"server_secret"`
	ProtocolVersion       int    `toml:"protocol_version"`
	RequestTimeout        string `toml:"request_timeout"`
	SecurityMode          string `toml:"security_mode"`
	TLSInsecureSkipVerify bool   `toml:"tls_insecure_skip_verify"`
	TLSCAFile             string `toml:"tls_ca_file"`
	TLSServerName         string `toml:"tls_server_name"`
	RegisterAttempts      int    `toml:"register_attempts"`
	FramePath             string `toml:"frame_path"`
}

// LoadClientConfig overlays the keys present in path onto DefaultClientConfig.
// Selecting production mode without an explicit tls_insecure_skip_verify
// turns skip-verify off.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}
	tr := &cfg.Remote.Transport

	if meta.IsDefined("endpoint") {
		tr.Endpoint = strings.TrimSpace(raw.Endpoint)
	}
	if meta.IsDefined("server_secret") {
		cfg.ServerSecret = strings.TrimSpace(raw.ServerSecret)
	}
	if meta.IsDefined("protocol_version") {
		cfg.Remote.ProtocolVersion = raw.ProtocolVersion
	}
	if meta.IsDefined("request_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RequestTimeout))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		tr.RequestTimeout = d
	}
	if meta.IsDefined("security_mode") {
		tr.SecurityMode = transport.NormalizeSecurityMode(transport.SecurityMode(raw.SecurityMode))
		if tr.SecurityMode == transport.SecurityModeProduction && !meta.IsDefined("tls_insecure_skip_verify") {
			tr.TLS.InsecureSkipVerify = false
		}
	}
	if meta.IsDefined("tls_insecure_skip_verify") {
		tr.TLS.InsecureSkipVerify = raw.TLSInsecureSkipVerify
	}
	if meta.IsDefined("tls_ca_file") {
		tr.TLS.CAFile = strings.TrimSpace(raw.TLSCAFile)
	}
	if meta.IsDefined("tls_server_name") {
		tr.TLS.ServerName = strings.TrimSpace(raw.TLSServerName)
	}
	if meta.IsDefined("register_attempts") {
		cfg.RegisterAttempts = raw.RegisterAttempts
	}
	if meta.IsDefined("frame_path") {
		cfg.FramePath = strings.TrimSpace(raw.FramePath)
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Remote.Transport.Endpoint) == "" {
		return fmt.Errorf("client config missing endpoint")
	}
	if cfg.Remote.Transport.RequestTimeout <= 0 {
		return fmt.Errorf("client config request_timeout must be positive")
	}
	if cfg.RegisterAttempts < 1 {
		return fmt.Errorf("client config register_attempts must be at least 1")
	}
	if err := cfg.Remote.Transport.ValidateClientTransport(); err != nil {
		return fmt.Errorf("client config: %w", err)
	}
	return nil
}

type simulatorFile struct {
	ListenAddr    string `toml:"listen_addr"`
	ScannerSecret string `toml:"scanner_secret"`
	CertFile      string `toml:"cert_file"`
	KeyFile       string `toml:"key_file"`
	FrameWidth    int    `toml:"frame_width"`
	FrameHeight   int    `toml:"frame_height"`
}

// LoadSimulatorConfig overlays the keys present in path onto device.DefaultConfig.
func LoadSimulatorConfig(path string) (device.Config, error) {
	cfg := device.DefaultConfig()

	var raw simulatorFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return device.Config{}, fmt.Errorf("load simulator config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		cfg.Addr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("scanner_secret") {
		cfg.ScannerSecret = strings.TrimSpace(raw.ScannerSecret)
	}
	if meta.IsDefined("cert_file") {
		cfg.CertFile = strings.TrimSpace(raw.CertFile)
	}
	if meta.IsDefined("key_file") {
		cfg.KeyFile = strings.TrimSpace(raw.KeyFile)
	}
	if meta.IsDefined("frame_width") {
		cfg.FrameWidth = raw.FrameWidth
	}
	if meta.IsDefined("frame_height") {
		cfg.FrameHeight = raw.FrameHeight
	}

	if err := ValidateSimulatorConfig(cfg); err != nil {
		return device.Config{}, err
	}
	return cfg, nil
}

func ValidateSimulatorConfig(cfg device.Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("simulator config missing listen_addr")
	}
	if strings.TrimSpace(cfg.ScannerSecret) == "" {
		return fmt.Errorf("simulator config missing scanner_secret")
	}
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return fmt.Errorf("simulator config requires cert_file and key_file together")
	}
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return fmt.Errorf("simulator config frame size must be positive")
	}
	return nil
}
