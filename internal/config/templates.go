package config

import (
	"fmt"
	"os"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/device"
)

const (
	KindClient    = "client"
	KindSimulator = "simulator"
)

// Template renders the default configuration for kind as TOML.
func Template(kind string) (string, error) {
	var (
		header string
		body   any
	)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		header = "# siremote client configuration\n"
		body = defaultClientFile()
	case KindSimulator:
		header = "# scannersim configuration\n"
		body = defaultSimulatorFile()
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
	out, err := gotoml.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", kind, err)
	}
	return header + string(out), nil
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

func defaultClientFile() clientFile {
	def := DefaultClientConfig()
	tr := def.Remote.Transport
	return clientFile{
		Endpoint:              tr.Endpoint,
		ServerSecret:          device.DefaultScannerSecret,
		ProtocolVersion:       def.Remote.ProtocolVersion,
		RequestTimeout:        tr.RequestTimeout.String(),
		SecurityMode:          string(tr.SecurityMode),
		TLSInsecureSkipVerify: tr.TLS.InsecureSkipVerify,
		RegisterAttempts:      def.RegisterAttempts,
		FramePath:             def.FramePath,
	}
}

func defaultSimulatorFile() simulatorFile {
	def := device.DefaultConfig()
	return simulatorFile{
		ListenAddr:    def.Addr,
		ScannerSecret: def.ScannerSecret,
		FrameWidth:    def.FrameWidth,
		FrameHeight:   def.FrameHeight,
	}
}
