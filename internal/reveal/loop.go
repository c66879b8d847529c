// Package reveal drives the character-by-character typing effect used to display generated
// job descriptions. All callbacks run on a single serial Loop, so a reveal's state is only
// ever touched by one goroutine at a time.
package reveal

import (
	"context"
	"sync"
)

// Loop runs posted functions one at a time, in posting order, on its own goroutine.
// It plays the role of a UI event loop: timers post into it, callbacks run on it.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	closed  bool
	done    chan struct{}
	running bool
}

// NewLoop creates a loop. Call Run (usually in its own goroutine) to start processing.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn to run on the loop. It never blocks and is safe from any goroutine,
// including from inside a loop callback. Posts after Close are dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to finish. It must not be called from a loop
// callback, which would wait on itself. Returns ErrLoopClosed if the loop is closed first.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Run drains the queue before closing done, so fn has either run or never will.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopClosed
		}
	}
}

// Run processes queued functions until ctx is cancelled or Close is called.
// Functions already queued when the loop stops are still run.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.done)

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}

		if l.isClosed() {
			l.drain()
			return nil
		}

		select {
		case <-ctx.Done():
			l.Close()
			l.drain()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops accepting new work. Run returns once the queue is empty.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// drain runs whatever is still queued after the loop was closed.
func (l *Loop) drain() {
	for {
		fn, ok := l.next()
		if !ok {
			return
		}
		fn()
	}
}
