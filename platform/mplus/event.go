package mplus

// EventCategory selects which kind of control a listener is interested in.
type EventCategory int

const (
	EventFader EventCategory = iota
	EventButton
	EventEncoder
)

func (c EventCategory) String() string {
	switch c {
	case EventFader:
		return "FADER"
	case EventButton:
		return "BUTTON"
	case EventEncoder:
		return "ENCODER"
	default:
		return "UNKNOWN"
	}
}

// DeviceEvent is the decoded form of one inbound MIDI message. Events are
// value types; listeners never receive references into controller state.
type DeviceEvent interface {
	Category() EventCategory
}

// FaderMoved reports a fader position in normalized [0, 1] units.
type FaderMoved struct {
	Index    int
	Position float64
}

func (FaderMoved) Category() EventCategory { return EventFader }

// ButtonChanged reports a physical press or release.
type ButtonChanged struct {
	Index   int
	Pressed bool
}

func (ButtonChanged) Category() EventCategory { return EventButton }

// EncoderTurned reports one relative turn of an endless encoder. Value
// keeps the device's native encoding: 1-7 are rightward turns of
// increasing speed, 65-71 leftward turns of increasing speed.
type EncoderTurned struct {
	Index int
	Value uint8
}

func (EncoderTurned) Category() EventCategory { return EventEncoder }

const (
	encoderRightMin = 1
	encoderRightMax = 7
	encoderLeftMin  = 65
	encoderLeftMax  = 71
)

// Direction returns +1 for a rightward turn, -1 for a leftward turn, and 0
// for values outside the documented relative-encoder ranges.
func (e EncoderTurned) Direction() int {
	switch {
	case e.Value >= encoderRightMin && e.Value <= encoderRightMax:
		return 1
	case e.Value >= encoderLeftMin && e.Value <= encoderLeftMax:
		return -1
	default:
		return 0
	}
}

// Magnitude returns the turn speed, 1-7, or 0 for unrecognized values.
func (e EncoderTurned) Magnitude() uint8 {
	switch e.Direction() {
	case 1:
		return e.Value
	case -1:
		return e.Value - 64
	default:
		return 0
	}
}

// DeviceCommand is an outbound instruction for the device.
type DeviceCommand interface {
	command()
}

// SetFaderPosition moves a motorized fader to a normalized [0, 1] position.
type SetFaderPosition struct {
	Index    int
	Position float64
}

func (SetFaderPosition) command() {}

// SetButtonLight switches a button light on or off.
type SetButtonLight struct {
	Index int
	On    bool
}

func (SetButtonLight) command() {}

// Listener callback shapes, one per event category.
type (
	FaderCallback   func(index int, position float64)
	ButtonCallback  func(index int, pressed bool, lightState bool)
	EncoderCallback func(index int, value uint8)
)
