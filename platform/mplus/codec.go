package mplus

import "math"

const (
	MIDIStatusNoteOn        = 0x90
	MIDIStatusControlChange = 0xb0
	MIDIStatusPitchBend     = 0xe0

	velocityOn  = 0x7f
	velocityOff = 0x00

	max7Bit  = 0x7f
	max14Bit = 16383
)

// codec translates between raw 3-byte MIDI messages and typed device
// events/commands using the Platform M+ fixed message layout: one pitch
// bend channel per fader (14-bit position, LSB first), note-on for buttons,
// control change for encoders.
//
// Positions are normalized to [0, 1] with round-to-nearest, ties away from
// zero, so a set followed by a decode of its echo agrees to within one
// 14-bit step.
type codec struct{}

// Decode maps one raw message to a device event. It reports false for
// anything outside the recognized set; unrecognized traffic is never an
// error at this layer.
func (codec) Decode(raw []byte) (DeviceEvent, bool) {
	if len(raw) != 3 {
		return nil, false
	}
	status, data1, data2 := raw[0], raw[1], raw[2]
	switch {
	case status >= MIDIStatusPitchBend && status < MIDIStatusPitchBend+NumFaders:
		value := int(data2)<<7 | int(data1)
		return FaderMoved{
			Index:    int(status - MIDIStatusPitchBend),
			Position: float64(value) / max14Bit,
		}, true
	case status == MIDIStatusNoteOn:
		return ButtonChanged{Index: int(data1), Pressed: data2 > 0}, true
	case status == MIDIStatusControlChange:
		return EncoderTurned{Index: int(data1), Value: data2}, true
	default:
		return nil, false
	}
}

// Encode maps a command to its raw message. Commands reaching the codec
// are pre-validated, so Encode always succeeds.
func (codec) Encode(cmd DeviceCommand) []byte {
	switch c := cmd.(type) {
	case SetFaderPosition:
		v := int(math.Round(c.Position * max14Bit))
		return []byte{
			MIDIStatusPitchBend + byte(c.Index),
			byte(v & max7Bit),
			byte((v >> 7) & max7Bit),
		}
	case SetButtonLight:
		velocity := byte(velocityOff)
		if c.On {
			velocity = velocityOn
		}
		return []byte{MIDIStatusNoteOn, byte(c.Index), velocity}
	default:
		return nil
	}
}
