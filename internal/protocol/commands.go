package protocol

// Command is one entry of the device command vocabulary.
type Command string

const (
	CommandStartScan         Command = "START_SCAN"
	CommandStopScan          Command = "STOP_SCAN"
	CommandGetState          Command = "GET_STATE"
	CommandRequireStill      Command = "REQUIRE_STILL"
	CommandRequireMarker     Command = "REQUIRE_MARKER"
	CommandExposure          Command = "EXPOSURE"
	CommandSensitivity       Command = "SENSITIVITY"
	CommandSetNickname       Command = "SET_NICKNAME"
	CommandCaptureVideoFrame Command = "CAPTURE_VIDEO_FRAME"
	CommandUploadRemote      Command = "UPLOAD_REMOTE"
	CommandGetFile           Command = "GET_FILE"
)

var commands = []Command{
	CommandStartScan,
	CommandStopScan,
	CommandGetState,
	CommandRequireStill,
	CommandRequireMarker,
	CommandExposure,
	CommandSensitivity,
	CommandSetNickname,
	CommandCaptureVideoFrame,
	CommandUploadRemote,
	CommandGetFile,
}

// Commands returns the recognized vocabulary in declaration order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// Valid reports whether c is part of the vocabulary.
func (c Command) Valid() bool {
	for _, known := range commands {
		if c == known {
			return true
		}
	}
	return false
}

func (c Command) String() string {
	return string(c)
}
