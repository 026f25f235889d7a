package mplus

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchRegistrationOrder(t *testing.T) {
	d := newDispatcher(slog.Default())

	var order []int
	d.add(EventFader, FaderCallback(func(int, float64) { order = append(order, 1) }))
	d.add(EventFader, FaderCallback(func(int, float64) { order = append(order, 2) }))
	d.add(EventFader, FaderCallback(func(int, float64) { order = append(order, 3) }))

	d.dispatch(FaderMoved{Index: 0, Position: 0.5}, false)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatchOnlyMatchingCategory(t *testing.T) {
	d := newDispatcher(slog.Default())

	faderCalls := 0
	buttonCalls := 0
	d.add(EventFader, FaderCallback(func(int, float64) { faderCalls++ }))
	d.add(EventButton, ButtonCallback(func(int, bool, bool) { buttonCalls++ }))

	d.dispatch(ButtonChanged{Index: 7, Pressed: true}, true)
	assert.Equal(t, 0, faderCalls)
	assert.Equal(t, 1, buttonCalls)
}

func TestRemoveDuringDispatchKeepsSnapshot(t *testing.T) {
	d := newDispatcher(slog.Default())

	secondCalls := 0
	var second ListenerHandle
	d.add(EventFader, FaderCallback(func(int, float64) {
		d.remove(second)
	}))
	second = d.add(EventFader, FaderCallback(func(int, float64) {
		secondCalls++
	}))

	d.dispatch(FaderMoved{Index: 0, Position: 0.1}, false)
	assert.Equal(t, 1, secondCalls, "removal must not affect the current pass")

	d.dispatch(FaderMoved{Index: 0, Position: 0.2}, false)
	assert.Equal(t, 1, secondCalls, "removed listener must not fire again")
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	d := newDispatcher(slog.Default())

	received := false
	d.add(EventButton, ButtonCallback(func(int, bool, bool) {
		panic("listener failure")
	}))
	d.add(EventButton, ButtonCallback(func(index int, pressed, light bool) {
		received = true
		assert.Equal(t, 7, index)
		assert.True(t, pressed)
	}))

	assert.NotPanics(t, func() {
		d.dispatch(ButtonChanged{Index: 7, Pressed: true}, false)
	})
	assert.True(t, received, "second listener still runs after the first panics")
}

func TestRemoveUnknownHandle(t *testing.T) {
	d := newDispatcher(slog.Default())
	d.add(EventEncoder, EncoderCallback(func(int, uint8) {}))

	// Removing a handle that was never issued is a no-op.
	d.remove(ListenerHandle{category: EventEncoder, id: 999})

	calls := 0
	d.add(EventEncoder, EncoderCallback(func(int, uint8) { calls++ }))
	d.dispatch(EncoderTurned{Index: 16, Value: 3}, false)
	assert.Equal(t, 1, calls)
}
