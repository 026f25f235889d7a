// Package miditransport abstracts the raw MIDI port layer consumed by the
// Platform M+ driver: enumerating ports, opening an input/output pair,
// sending raw messages, and delivering inbound messages to a callback.
//
// Two backends are provided: GomidiTransport (rtmidi via
// gitlab.com/gomidi/midi/v2, the default) and PortmidiTransport
// (github.com/rakyll/portmidi, polled input).
package miditransport

// Receiver consumes one raw inbound MIDI message. It is invoked from the
// transport's read context; implementations must not block for long.
type Receiver func(msg []byte)

// Transport is a bidirectional connection to the system MIDI subsystem.
// Send is safe for concurrent use once the output is open. Close is
// idempotent.
type Transport interface {
	// Inputs returns the names of the available input ports, in the
	// order their indexes are assigned.
	Inputs() ([]string, error)

	// Outputs returns the names of the available output ports.
	Outputs() ([]string, error)

	// OpenInput opens the input port at index and starts delivering
	// inbound messages to recv.
	OpenInput(index int, recv Receiver) error

	// OpenOutput opens the output port at index for sending.
	OpenOutput(index int) error

	// Send writes one raw MIDI message to the open output port.
	Send(msg []byte) error

	// Close stops delivery and releases both ports.
	Close() error
}
