package mplus

import (
	"log/slog"
	"math"
	"time"
)

const (
	// DefaultEpsilon is one 7-bit wire step, above the quantization noise
	// of the 14-bit position encoding.
	DefaultEpsilon = 1.0 / 128

	// DefaultPendingTimeout bounds how long an unanswered position
	// command suppresses echo detection before the fader falls back to
	// Idle.
	DefaultPendingTimeout = 2 * time.Second
)

type syncPhase int

const (
	phaseIdle syncPhase = iota
	phasePending
)

// faderMachine tracks one fader's echo state. While Pending, commanded
// holds the position of the in-flight set command.
type faderMachine struct {
	phase        syncPhase
	commanded    float64
	pendingSince time.Time
}

// syncEngine decides, per inbound fader report, whether the movement is
// genuine user motion, the echo of a prior set command, or motor drift
// that must be corrected back to the intended position.
//
// The caller holds the controller mutex for every method.
type syncEngine struct {
	enabled        bool
	epsilon        float64
	pendingTimeout time.Duration
	faders         [NumFaders]faderMachine
	logger         *slog.Logger
}

// syncDecision is the outcome of classifying one fader report.
type syncDecision struct {
	// forward indicates the event is user-visible and goes to listeners.
	forward bool

	// correct indicates a corrective set command must be sent to pull
	// the fader back to target.
	correct bool
	target  float64
}

// commandSent records a software-issued position command: the intended
// position updates immediately and the fader enters Pending, awaiting the
// hardware echo.
func (s *syncEngine) commandSent(t *stateTable, index int, position float64, now time.Time) {
	t.setIntended(index, position)
	m := &s.faders[index]
	m.phase = phasePending
	m.commanded = position
	m.pendingSince = now
}

// observe classifies one reported fader position.
//
// Pending: a report within epsilon of the commanded position is the
// expected echo; it confirms the intended position and is suppressed. A
// report beyond epsilon means the user grabbed the fader mid-motorization,
// which overrides the in-flight command. Either way the fader returns to
// Idle, so every transition is total.
//
// Idle with sync disabled: every report is user motion. Idle with sync
// enabled: a report deviating from the intended position beyond epsilon is
// treated as drift (a dropping motor), answered with a corrective command
// back to the intended position; the intended position itself does not
// move. Corrections are only ever issued from Idle, so a correction
// already in flight is never doubled.
func (s *syncEngine) observe(t *stateTable, index int, position float64, now time.Time) syncDecision {
	m := &s.faders[index]
	t.lastReported[index] = position

	if m.phase == phasePending && s.pendingTimeout > 0 && now.Sub(m.pendingSince) > s.pendingTimeout {
		s.logger.Warn("fader echo never arrived, resyncing",
			"fader", index, "commanded", m.commanded)
		m.phase = phaseIdle
	}

	switch m.phase {
	case phasePending:
		if math.Abs(position-m.commanded) <= s.epsilon {
			// The expected echo: physical confirmation, not user input.
			m.phase = phaseIdle
			t.setIntended(index, m.commanded)
			return syncDecision{}
		}
		// User override during motorization; the in-flight command is
		// physically abandoned.
		m.phase = phaseIdle
		t.setIntended(index, position)
		return syncDecision{forward: true}

	default:
		if s.enabled {
			if math.Abs(position-t.intended[index]) > s.epsilon {
				m.phase = phasePending
				m.commanded = t.intended[index]
				m.pendingSince = now
				s.logger.Debug("correcting fader drift",
					"fader", index, "reported", position, "intended", t.intended[index])
				return syncDecision{forward: true, correct: true, target: t.intended[index]}
			}
			return syncDecision{forward: true}
		}
		t.setIntended(index, position)
		return syncDecision{forward: true}
	}
}
