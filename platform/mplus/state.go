package mplus

const (
	// NumFaders counts the 8 channel faders plus the master fader.
	NumFaders = 9

	// NumButtons is the button index range swept by Reset, matching the
	// device's note-number assignments.
	NumButtons = 100
)

// stateTable is the authoritative record of the last known or intended
// state of every control. It has no locking of its own; the controller
// serializes all access under one mutex.
type stateTable struct {
	intended     [NumFaders]float64
	lastReported [NumFaders]float64
	lightOn      [NumButtons]bool
	pressed      [NumButtons]bool
}

func (t *stateTable) fader(index int) float64 {
	return t.intended[index]
}

// setIntended records a position confirmed by software or accepted user
// motion. It is the only way intended positions change.
func (t *stateTable) setIntended(index int, position float64) {
	t.intended[index] = position
}

func (t *stateTable) light(index int) bool {
	return t.lightOn[index]
}

func (t *stateTable) setLight(index int, on bool) {
	t.lightOn[index] = on
}

func (t *stateTable) setPressed(index int, pressed bool) {
	t.pressed[index] = pressed
}
