package session

import (
	"fmt"

	"github.com/reel-player/reel/constant"
	"github.com/samber/mo"
)

// State of the active item.
type State int

const (
	// Idle means no item is assigned.
	Idle State = iota
	// Loading means an item is assigned but its duration is not known yet.
	Loading
	// Ready means the duration is known; play, pause, seek and loops are available.
	Ready
	// Ended means the item played to its natural end.
	Ended
	// Error is terminal for the item until another one is loaded.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateError is the playback failure reported for an item.
type StateError struct {
	Ref    string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("playback of %s failed: %s", e.Ref, e.Reason)
}

// Loop is a bounded segment replayed while both points are set and B lies past A.
type Loop struct {
	A mo.Option[float64]
	B mo.Option[float64]
}

// Active reports whether the loop is replaying.
func (l Loop) Active() bool {
	a, okA := l.A.Get()
	b, okB := l.B.Get()
	return okA && okB && b > a+constant.LoopEpsilon
}

// SetA places point A at t. An existing B at or before t is dropped.
func (l Loop) SetA(t float64) Loop {
	l.A = mo.Some(t)
	if b, ok := l.B.Get(); ok && t >= b {
		l.B = mo.None[float64]()
	}
	return l
}

// SetB places point B at t. Without an A, or with t not past A, t becomes the new A instead.
func (l Loop) SetB(t float64) Loop {
	if a, ok := l.A.Get(); !ok || t <= a {
		return Loop{A: mo.Some(t), B: mo.None[float64]()}
	}
	l.B = mo.Some(t)
	return l
}

func (l Loop) String() string {
	format := func(o mo.Option[float64]) string {
		if v, ok := o.Get(); ok {
			return fmt.Sprintf("%.2f", v)
		}
		return "-"
	}
	return fmt.Sprintf("[%s, %s]", format(l.A), format(l.B))
}
