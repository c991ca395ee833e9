// Package countdown counts down to the next candle close of each task and
// raises a notification once per candle when the close gets near.
package countdown

import (
	"time"

	"github.com/rustyeddy/candlewaker/market"
)

// State is where an Engine is in its cycle.
type State int

const (
	Idle State = iota // stopped, ticks are ignored
	Counting          // waiting for the notify window
	Notified          // reminder sent for this cycle
)

func (s State) String() string {
	switch s {
	case Counting:
		return "counting"
	case Notified:
		return "notified"
	}
	return "idle"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DefaultUrgentSeconds is the isUrgent threshold unless SetUrgentSeconds changes it.
const DefaultUrgentSeconds = 10

// Snapshot is what a tick reports.
type Snapshot struct {
	SecondsLeft int       `json:"secondsLeft"`
	Formatted   string    `json:"formattedTime"`
	Urgent      bool      `json:"isUrgent"`
	Target      time.Time `json:"target"`
	State       State     `json:"state"`
}

// Engine is the per-task countdown state machine. It is driven by calling
// Tick about once a second and is not safe for concurrent use.
//
// A cycle runs from one aligned target to the next. onNotify fires at most
// once per cycle: when secondsLeft first drops to notifyBefore or below, or
// on the closing tick when notifyBefore is 0.
type Engine struct {
	period       int // minutes
	notifyBefore int // seconds
	urgent       int
	target       time.Time
	state        State
	onNotify     func(Snapshot)
}

// NewEngine returns an engine already counting towards the next close after now.
func NewEngine(periodMinutes, notifyBefore int, now time.Time, onNotify func(Snapshot)) *Engine {
	e := &Engine{
		period:       periodMinutes,
		notifyBefore: notifyBefore,
		urgent:       DefaultUrgentSeconds,
		onNotify:     onNotify,
	}
	e.Start(now)
	return e
}

// SetUrgentSeconds changes the isUrgent threshold. n <= 0 restores the default.
func (e *Engine) SetUrgentSeconds(n int) {
	if n <= 0 {
		n = DefaultUrgentSeconds
	}
	e.urgent = n
}

// Start begins a fresh cycle towards the next aligned close.
func (e *Engine) Start(now time.Time) {
	e.target = market.NextAlignedTime(e.period, now)
	e.state = Counting
}

// Stop puts the engine in Idle; ticks are ignored until Start.
func (e *Engine) Stop() {
	e.state = Idle
}

// Reconfigure applies a new period or notify window immediately: the target
// is recomputed and the notified flag cleared.
func (e *Engine) Reconfigure(periodMinutes, notifyBefore int, now time.Time) {
	e.period = periodMinutes
	e.notifyBefore = notifyBefore
	if e.state != Idle {
		e.Start(now)
	}
}

func (e *Engine) State() State      { return e.state }
func (e *Engine) Target() time.Time { return e.target }

// Tick advances the engine to now and reports the countdown. It fires
// onNotify when the notify window opens and starts a new cycle once the
// target has passed.
func (e *Engine) Tick(now time.Time) Snapshot {
	if e.state == Idle {
		return e.snapshot(0)
	}

	left := secondsUntil(e.target, now)
	if left == 0 {
		if e.notifyBefore == 0 && e.state != Notified {
			e.fire(e.snapshot(0))
		}
		snap := e.snapshot(0)
		e.target = market.NextAlignedTime(e.period, now)
		e.state = Counting
		snap.State = Counting
		return snap
	}

	if left <= e.notifyBefore && e.state != Notified {
		e.state = Notified
		e.fire(e.snapshot(left))
	}
	return e.snapshot(left)
}

func (e *Engine) fire(s Snapshot) {
	if e.onNotify != nil {
		e.onNotify(s)
	}
}

func (e *Engine) snapshot(left int) Snapshot {
	return Snapshot{
		SecondsLeft: left,
		Formatted:   FormatTimeLeft(left),
		Urgent:      left > 0 && left <= e.urgent,
		Target:      e.target,
		State:       e.state,
	}
}

// secondsUntil is ceil((target-now)/1s), floored at 0.
func secondsUntil(target, now time.Time) int {
	d := target.Sub(now)
	if d <= 0 {
		return 0
	}
	s := d / time.Second
	if d%time.Second != 0 {
		s++
	}
	return int(s)
}
