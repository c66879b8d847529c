package reveal

import (
	"sync"
	"sync/atomic"
	"time"
)

// CancelFunc stops a reveal without completing it. Calling it more than once, or after the
// reveal completed, does nothing. Like every Revealer method it must run on the loop.
type CancelFunc func()

// Revealer shows a growing prefix of a text, one rune per tick, and then reports completion.
// A Revealer owns at most one active reveal; starting another cancels the previous one.
//
// Revealer is confined to its Loop: call its methods and the returned CancelFuncs from loop
// callbacks (onTick, onComplete, or any posted function) or through Loop.Do.
type Revealer struct {
	loop    *Loop
	current *state
}

// state is the bookkeeping for one reveal. Only the loop goroutine reads or writes
// source, cursor and active.
type state struct {
	source     []rune
	cursor     int
	active     bool
	onTick     func(prefix string)
	onComplete func()

	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
	pending  atomic.Bool
}

// New creates a Revealer whose ticks are delivered on loop.
func New(loop *Loop) *Revealer {
	return &Revealer{loop: loop}
}

// Start begins revealing source, delivering onTick every interval with the next longer prefix.
// After the full text has been shown, the following tick stops the timer and calls onComplete.
// Either callback may be nil. A non-positive interval is rejected before anything changes.
func (r *Revealer) Start(source string, interval time.Duration, onTick func(prefix string), onComplete func()) (CancelFunc, error) {
	if interval <= 0 {
		return nil, &IntervalError{Interval: interval}
	}

	r.cancel(r.current)

	s := &state{
		source:     []rune(source),
		active:     true,
		onTick:     onTick,
		onComplete: onComplete,
		ticker:     time.NewTicker(interval),
		stop:       make(chan struct{}),
	}
	r.current = s

	go r.pump(s)

	return func() { r.cancel(s) }, nil
}

// Active reports whether a reveal is in progress.
func (r *Revealer) Active() bool {
	return r.current != nil && r.current.active
}

// Close cancels the active reveal, if any. It is the unmount hook.
func (r *Revealer) Close() {
	r.cancel(r.current)
}

// pump forwards timer ticks to the loop. At most one tick per reveal is queued at a time,
// so a busy loop delays ticks rather than piling them up.
func (r *Revealer) pump(s *state) {
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C:
			if !s.pending.CompareAndSwap(false, true) {
				continue
			}
			if !r.loop.Post(func() { r.step(s) }) {
				s.halt()
				return
			}
		}
	}
}

// step runs on the loop for every delivered tick.
func (r *Revealer) step(s *state) {
	s.pending.Store(false)
	if !s.active {
		return
	}

	if s.cursor < len(s.source) {
		s.cursor++
		if s.onTick != nil {
			s.onTick(string(s.source[:s.cursor]))
		}
		return
	}

	r.deactivate(s)
	if s.onComplete != nil {
		s.onComplete()
	}
}

func (r *Revealer) cancel(s *state) {
	if s == nil || !s.active {
		return
	}
	r.deactivate(s)
}

func (r *Revealer) deactivate(s *state) {
	s.active = false
	s.halt()
	if r.current == s {
		r.current = nil
	}
}

// halt stops the timer and the pump goroutine.
func (s *state) halt() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stop)
	})
}
