package miditransport

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// GomidiTransport talks to the system MIDI subsystem through the rtmidi
// backend of gitlab.com/gomidi/midi/v2.
type GomidiTransport struct {
	drv *rtmididrv.Driver

	mu     sync.Mutex
	in     drivers.In
	out    drivers.Out
	stop   func()
	closed bool
}

var _ Transport = (*GomidiTransport)(nil)

// NewGomidiTransport initializes the rtmidi driver.
func NewGomidiTransport() (*GomidiTransport, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("miditransport: rtmidi driver: %w", err)
	}
	return &GomidiTransport{drv: drv}, nil
}

func (t *GomidiTransport) Inputs() ([]string, error) {
	ins, err := t.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("miditransport: list inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func (t *GomidiTransport) Outputs() ([]string, error) {
	outs, err := t.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("miditransport: list outputs: %w", err)
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

func (t *GomidiTransport) OpenInput(index int, recv Receiver) error {
	ins, err := t.drv.Ins()
	if err != nil {
		return fmt.Errorf("miditransport: list inputs: %w", err)
	}
	if index < 0 || index >= len(ins) {
		return fmt.Errorf("miditransport: input port %d out of range", index)
	}
	in := ins[index]
	if err := in.Open(); err != nil {
		return fmt.Errorf("miditransport: open input %q: %w", in.String(), err)
	}
	stop, err := in.Listen(func(msg []byte, _ int32) {
		recv(msg)
	}, drivers.ListenConfig{})
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("miditransport: listen on %q: %w", in.String(), err)
	}

	t.mu.Lock()
	t.in = in
	t.stop = stop
	t.mu.Unlock()
	return nil
}

func (t *GomidiTransport) OpenOutput(index int) error {
	outs, err := t.drv.Outs()
	if err != nil {
		return fmt.Errorf("miditransport: list outputs: %w", err)
	}
	if index < 0 || index >= len(outs) {
		return fmt.Errorf("miditransport: output port %d out of range", index)
	}
	out := outs[index]
	if err := out.Open(); err != nil {
		return fmt.Errorf("miditransport: open output %q: %w", out.String(), err)
	}

	t.mu.Lock()
	t.out = out
	t.mu.Unlock()
	return nil
}

func (t *GomidiTransport) Send(msg []byte) error {
	t.mu.Lock()
	out := t.out
	t.mu.Unlock()

	if out == nil {
		return fmt.Errorf("miditransport: output port is not open")
	}
	if err := out.Send(msg); err != nil {
		return fmt.Errorf("miditransport: send: %w", err)
	}
	return nil
}

func (t *GomidiTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
	if t.in != nil {
		_ = t.in.Close()
		t.in = nil
	}
	if t.out != nil {
		_ = t.out.Close()
		t.out = nil
	}
	return t.drv.Close()
}
