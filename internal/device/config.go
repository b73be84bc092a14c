package device

const (
	DefaultAddr          = ":3003"
	DefaultScannerSecret = "9n0SQ"
	DefaultFrameWidth    = 640
	DefaultFrameHeight   = 480
)

// Config controls one simulated device. CertFile and KeyFile are optional;
// without them a self-signed certificate is generated at startup.
type Config struct {
	Addr          string
	ScannerSecret string
	CertFile      string
	KeyFile       string
	FrameWidth    int
	FrameHeight   int
}

func DefaultConfig() Config {
	return Config{
		Addr:          DefaultAddr,
		ScannerSecret: DefaultScannerSecret,
		FrameWidth:    DefaultFrameWidth,
		FrameHeight:   DefaultFrameHeight,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.FrameWidth <= 0 {
		c.FrameWidth = d.FrameWidth
	}
	if c.FrameHeight <= 0 {
		c.FrameHeight = d.FrameHeight
	}
	return c
}
