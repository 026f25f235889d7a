package miditransport

import (
	"fmt"
	"sync"
	"time"

	"github.com/rakyll/portmidi"
)

const (
	// Note: portmidi has no blocking read, so the input stream is polled.
	pollingPeriod    = 10 * time.Millisecond
	maxEventsPerPoll = 1024
)

// PortmidiTransport talks to the system MIDI subsystem through portmidi.
type PortmidiTransport struct {
	mu     sync.Mutex
	in     *portmidi.Stream
	out    *portmidi.Stream
	done   chan struct{}
	closed bool
}

var _ Transport = (*PortmidiTransport)(nil)

// NewPortmidiTransport initializes the portmidi library.
func NewPortmidiTransport() (*PortmidiTransport, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("miditransport: portmidi: %w", err)
	}
	return &PortmidiTransport{done: make(chan struct{})}, nil
}

func (t *PortmidiTransport) Inputs() ([]string, error) {
	names, _ := t.devices(true)
	return names, nil
}

func (t *PortmidiTransport) Outputs() ([]string, error) {
	names, _ := t.devices(false)
	return names, nil
}

// devices enumerates the portmidi device table, filtered by direction.
// Port indexes handed to callers index into the filtered list.
func (t *PortmidiTransport) devices(input bool) ([]string, []portmidi.DeviceID) {
	var names []string
	var ids []portmidi.DeviceID
	for i := 0; i < portmidi.CountDevices(); i++ {
		id := portmidi.DeviceID(i)
		info := portmidi.Info(id)
		if info == nil {
			continue
		}
		if (input && info.IsInputAvailable) || (!input && info.IsOutputAvailable) {
			names = append(names, info.Name)
			ids = append(ids, id)
		}
	}
	return names, ids
}

func (t *PortmidiTransport) OpenInput(index int, recv Receiver) error {
	_, ids := t.devices(true)
	if index < 0 || index >= len(ids) {
		return fmt.Errorf("miditransport: input port %d out of range", index)
	}
	stream, err := portmidi.NewInputStream(ids[index], maxEventsPerPoll)
	if err != nil {
		return fmt.Errorf("miditransport: open input %d: %w", index, err)
	}

	t.mu.Lock()
	t.in = stream
	t.mu.Unlock()

	go t.poll(stream, recv)
	return nil
}

func (t *PortmidiTransport) poll(stream *portmidi.Stream, recv Receiver) {
	ticker := time.NewTicker(pollingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			evts, err := stream.Read(maxEventsPerPoll)
			if err != nil {
				return
			}
			for _, evt := range evts {
				recv([]byte{byte(evt.Status), byte(evt.Data1), byte(evt.Data2)})
			}
		}
	}
}

func (t *PortmidiTransport) OpenOutput(index int) error {
	_, ids := t.devices(false)
	if index < 0 || index >= len(ids) {
		return fmt.Errorf("miditransport: output port %d out of range", index)
	}
	stream, err := portmidi.NewOutputStream(ids[index], maxEventsPerPoll, 0)
	if err != nil {
		return fmt.Errorf("miditransport: open output %d: %w", index, err)
	}

	t.mu.Lock()
	t.out = stream
	t.mu.Unlock()
	return nil
}

func (t *PortmidiTransport) Send(msg []byte) error {
	if len(msg) != 3 {
		return fmt.Errorf("miditransport: portmidi send expects 3-byte messages, got %d", len(msg))
	}

	t.mu.Lock()
	out := t.out
	t.mu.Unlock()

	if out == nil {
		return fmt.Errorf("miditransport: output port is not open")
	}
	if err := out.WriteShort(int64(msg[0]), int64(msg[1]), int64(msg[2])); err != nil {
		return fmt.Errorf("miditransport: send: %w", err)
	}
	return nil
}

func (t *PortmidiTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)

	if t.in != nil {
		_ = t.in.Close()
		t.in = nil
	}
	if t.out != nil {
		_ = t.out.Close()
		t.out = nil
	}
	return portmidi.Terminate()
}
