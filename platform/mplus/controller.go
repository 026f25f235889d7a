// Package mplus drives the Icon Platform M+ MIDI control surface via MIDI
// in and out: motorized touch-sensitive faders, lit buttons, and endless
// rotary encoders.
package mplus

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pmpcontrol/platformmidi/midi/miditransport"
)

// DeviceName is matched as a substring against the system MIDI port names.
const DeviceName = "Platform M+"

var (
	ErrDeviceNotFound = errors.New("mplus: no Platform M+ device is connected")
	ErrNotConnected   = errors.New("mplus: not connected")
	ErrUnknownControl = errors.New("mplus: unknown control index")
)

// Controller is the connection to one Platform M+ device. It owns the
// control state table and the per-fader sync machines; all reads and
// mutations go through one mutex. Listener callbacks run synchronously on
// whichever goroutine triggered the dispatch and receive value copies only.
type Controller struct {
	portName string
	logger   *slog.Logger
	codec    codec
	dispatch *dispatcher

	mu           sync.Mutex
	transport    miditransport.Transport
	ownTransport bool
	connected    bool
	inPort       int
	outPort      int
	state        stateTable
	engine       syncEngine
}

// Option configures a Controller at construction.
type Option func(*Controller)

// WithTransport substitutes the MIDI transport. The default is a
// GomidiTransport created on Connect.
func WithTransport(t miditransport.Transport) Option {
	return func(c *Controller) { c.transport = t }
}

// WithPortName overrides the substring used to locate the device among the
// system MIDI ports.
func WithPortName(name string) Option {
	return func(c *Controller) { c.portName = name }
}

// WithFaderSync enables drift correction from construction. Equivalent to
// calling SetFaderSync(true).
func WithFaderSync(enabled bool) Option {
	return func(c *Controller) { c.engine.enabled = enabled }
}

// WithEpsilon overrides the echo/drift tolerance, in normalized [0, 1]
// position units.
func WithEpsilon(epsilon float64) Option {
	return func(c *Controller) { c.engine.epsilon = epsilon }
}

// WithPendingTimeout overrides how long an unanswered position command may
// suppress echo detection. Zero disables the safety net.
func WithPendingTimeout(d time.Duration) Option {
	return func(c *Controller) { c.engine.pendingTimeout = d }
}

// WithLogger substitutes the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a disconnected controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		portName: DeviceName,
		logger:   slog.Default(),
	}
	c.engine.epsilon = DefaultEpsilon
	c.engine.pendingTimeout = DefaultPendingTimeout
	for _, opt := range opts {
		opt(c)
	}
	c.engine.logger = c.logger
	c.dispatch = newDispatcher(c.logger)
	return c
}

// Connect locates the device among the available MIDI ports by name and
// opens the input/output pair, returning their port indexes. It fails with
// ErrDeviceNotFound if either direction is missing.
func (c *Controller) Connect() (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return c.inPort, c.outPort, nil
	}

	if c.transport == nil {
		t, err := miditransport.NewGomidiTransport()
		if err != nil {
			return 0, 0, fmt.Errorf("mplus: connect: %w", err)
		}
		c.transport = t
		c.ownTransport = true
	}

	inputs, err := c.transport.Inputs()
	if err != nil {
		return 0, 0, fmt.Errorf("mplus: connect: %w", err)
	}
	outputs, err := c.transport.Outputs()
	if err != nil {
		return 0, 0, fmt.Errorf("mplus: connect: %w", err)
	}

	in := findPort(inputs, c.portName)
	out := findPort(outputs, c.portName)
	if in < 0 || out < 0 {
		return 0, 0, ErrDeviceNotFound
	}

	if err := c.transport.OpenInput(in, c.handleMessage); err != nil {
		return 0, 0, fmt.Errorf("mplus: connect: %w", err)
	}
	if err := c.transport.OpenOutput(out); err != nil {
		return 0, 0, fmt.Errorf("mplus: connect: %w", err)
	}

	c.connected = true
	c.inPort, c.outPort = in, out
	c.logger.Info("connected", "device", c.portName, "in", in, "out", out)
	return in, out, nil
}

// Disconnect closes the transport. It is idempotent.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false

	err := c.transport.Close()
	if c.ownTransport {
		c.transport = nil
		c.ownTransport = false
	}
	if err != nil {
		return fmt.Errorf("mplus: disconnect: %w", err)
	}
	c.logger.Info("disconnected", "device", c.portName)
	return nil
}

// SetFader moves a motorized fader to a normalized [0, 1] position. The
// position becomes the fader's intended position and the fader awaits the
// hardware echo.
func (c *Controller) SetFader(index int, position float64) error {
	if index < 0 || index >= NumFaders {
		return fmt.Errorf("%w: fader %d", ErrUnknownControl, index)
	}
	position = clamp01(position)

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.engine.commandSent(&c.state, index, position, time.Now())
	c.mu.Unlock()

	return c.send(SetFaderPosition{Index: index, Position: position})
}

// GetFader returns a fader's intended position.
func (c *Controller) GetFader(index int) (float64, error) {
	if index < 0 || index >= NumFaders {
		return 0, fmt.Errorf("%w: fader %d", ErrUnknownControl, index)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.fader(index), nil
}

// SetButton switches a button light on or off.
func (c *Controller) SetButton(index int, on bool) error {
	if index < 0 || index >= NumButtons {
		return fmt.Errorf("%w: button %d", ErrUnknownControl, index)
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.state.setLight(index, on)
	c.mu.Unlock()

	return c.send(SetButtonLight{Index: index, On: on})
}

// GetButton returns a button's last commanded light state.
func (c *Controller) GetButton(index int) (bool, error) {
	if index < 0 || index >= NumButtons {
		return false, fmt.Errorf("%w: button %d", ErrUnknownControl, index)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.light(index), nil
}

// Reset drives every fader to 0 and every button light off. Each fader
// transitions to Pending awaiting its echo.
func (c *Controller) Reset() error {
	for i := 0; i < NumFaders; i++ {
		if err := c.SetFader(i, 0); err != nil {
			return err
		}
	}
	for i := 0; i < NumButtons; i++ {
		if err := c.SetButton(i, false); err != nil {
			return err
		}
	}
	return nil
}

// SetFaderSync enables or disables drift correction for all faders.
func (c *Controller) SetFaderSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.enabled = enabled
}

// AddFaderListener registers a callback for fader movements. Listeners are
// invoked in registration order.
func (c *Controller) AddFaderListener(cb FaderCallback) ListenerHandle {
	return c.dispatch.add(EventFader, cb)
}

// AddButtonListener registers a callback for button presses and releases.
func (c *Controller) AddButtonListener(cb ButtonCallback) ListenerHandle {
	return c.dispatch.add(EventButton, cb)
}

// AddEncoderListener registers a callback for encoder turns.
func (c *Controller) AddEncoderListener(cb EncoderCallback) ListenerHandle {
	return c.dispatch.add(EventEncoder, cb)
}

// RemoveEventListener unregisters a listener. Removing during a dispatch
// pass does not affect that pass.
func (c *Controller) RemoveEventListener(h ListenerHandle) {
	c.dispatch.remove(h)
}

// handleMessage is the transport receive callback: decode, update state,
// let the sync engine classify fader reports, then fan out to listeners.
func (c *Controller) handleMessage(raw []byte) {
	ev, ok := c.codec.Decode(raw)
	if !ok {
		c.logger.Debug("dropping unrecognized midi message", "len", len(raw))
		return
	}

	switch e := ev.(type) {
	case FaderMoved:
		c.handleFaderMoved(e)
	case ButtonChanged:
		if e.Index >= NumButtons {
			c.logger.Warn("dropping event for unknown button", "button", e.Index)
			return
		}
		c.mu.Lock()
		c.state.setPressed(e.Index, e.Pressed)
		light := c.state.light(e.Index)
		c.mu.Unlock()
		c.dispatch.dispatch(e, light)
	case EncoderTurned:
		c.dispatch.dispatch(e, false)
	}
}

func (c *Controller) handleFaderMoved(e FaderMoved) {
	c.mu.Lock()
	decision := c.engine.observe(&c.state, e.Index, e.Position, time.Now())
	c.mu.Unlock()

	if decision.correct {
		if err := c.send(SetFaderPosition{Index: e.Index, Position: decision.target}); err != nil {
			c.logger.Warn("drift correction send failed", "fader", e.Index, "err", err)
		}
	}
	if decision.forward {
		c.dispatch.dispatch(e, false)
	}
}

func (c *Controller) send(cmd DeviceCommand) error {
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()

	if transport == nil {
		return ErrNotConnected
	}
	if err := transport.Send(c.codec.Encode(cmd)); err != nil {
		return fmt.Errorf("mplus: send: %w", err)
	}
	return nil
}

func findPort(names []string, match string) int {
	for i, name := range names {
		if strings.Contains(name, match) {
			return i
		}
	}
	return -1
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
