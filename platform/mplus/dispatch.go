package mplus

import (
	"log/slog"
	"sync"
)

// ListenerHandle identifies one registered listener for removal. The zero
// value is never a valid handle.
type ListenerHandle struct {
	category EventCategory
	id       uint64
}

type listener struct {
	id uint64
	fn any // FaderCallback, ButtonCallback, or EncoderCallback
}

// dispatcher fans decoded events out to the registered listeners of the
// matching category, in registration order. Dispatch iterates a snapshot
// of the list, so adding or removing listeners during a pass does not
// affect that pass, and each callback is isolated: a panic is logged and
// swallowed so the remaining callbacks still run.
type dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[EventCategory][]listener
	logger    *slog.Logger
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	return &dispatcher{
		nextID:    1,
		listeners: make(map[EventCategory][]listener),
		logger:    logger,
	}
}

func (d *dispatcher) add(category EventCategory, fn any) ListenerHandle {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.listeners[category] = append(d.listeners[category], listener{id: id, fn: fn})
	return ListenerHandle{category: category, id: id}
}

func (d *dispatcher) remove(h ListenerHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.listeners[h.category]
	for i, l := range list {
		if l.id == h.id {
			d.listeners[h.category] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// dispatch delivers one event. lightState accompanies button events; it is
// ignored for the other categories.
func (d *dispatcher) dispatch(ev DeviceEvent, lightState bool) {
	category := ev.Category()

	d.mu.Lock()
	snapshot := make([]listener, len(d.listeners[category]))
	copy(snapshot, d.listeners[category])
	d.mu.Unlock()

	for _, l := range snapshot {
		d.invoke(l, ev, lightState)
	}
}

func (d *dispatcher) invoke(l listener, ev DeviceEvent, lightState bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event listener panicked",
				"category", ev.Category().String(), "panic", r)
		}
	}()

	switch e := ev.(type) {
	case FaderMoved:
		l.fn.(FaderCallback)(e.Index, e.Position)
	case ButtonChanged:
		l.fn.(ButtonCallback)(e.Index, e.Pressed, lightState)
	case EncoderTurned:
		l.fn.(EncoderCallback)(e.Index, e.Value)
	}
}
