// Package remote drives a Surface Inspector device through its remote-control
// protocol.
//
// A Session registers once with the scanner secret shown on the device, keeps
// the issued client credential, and sends named commands with it. Every
// command except frame capture answers with a (status, message) pair that the
// session keeps as its last response; callers check Status after each call,
// because a device rejection is a normal return and not an error.
//
// Lifecycle:
//
//	Unregistered -> Register (status success) -> Registered -> Disconnect -> Unregistered
//
// Commands issued while unregistered are still sent, with whatever credential
// the session holds, and are expected to be rejected by the device.
//
// A Session is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
package remote
