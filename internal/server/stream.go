package server

import (
	"context"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/jonathan/jdstudio/internal/reveal"
)

// outcome is how a reveal stream ended.
type outcome int

const (
	outcomeRunning outcome = iota
	outcomeCompleted
	outcomeCancelled
)

// revealSession is the one revealer a recruiter session owns. It lives in Server.sessions
// and, like the map, is only touched on the loop.
type revealSession struct {
	revealer *reveal.Revealer
	current  *revealStream
	cancel   reveal.CancelFunc
}

// revealStream hands reveal progress from the loop to the HTTP handler writing the stream.
// The loop only stores the latest prefix and signals, so a slow client never stalls it;
// the handler sends whatever was added since its last write.
type revealStream struct {
	mu      sync.Mutex
	prefix  string
	outcome outcome
	notify  chan struct{}
}

func newRevealStream() *revealStream {
	return &revealStream{notify: make(chan struct{}, 1)}
}

// tick records the prefix shown so far.
func (st *revealStream) tick(prefix string) {
	st.mu.Lock()
	st.prefix = prefix
	st.mu.Unlock()
	st.signal()
}

// finish records the first outcome; later ones are ignored.
func (st *revealStream) finish(o outcome) {
	st.mu.Lock()
	if st.outcome == outcomeRunning {
		st.outcome = o
	}
	st.mu.Unlock()
	st.signal()
}

func (st *revealStream) snapshot() (string, outcome) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.prefix, st.outcome
}

func (st *revealStream) signal() {
	select {
	case st.notify <- struct{}{}:
	default:
	}
}

// startReveal begins revealing text for the session key. A reveal already running for the
// same key is cancelled and its stream told so.
func (s *Server) startReveal(key, text string) (*revealStream, error) {
	st := newRevealStream()

	var startErr error
	err := s.loop.Do(func() {
		sess := s.sessions[key]
		if sess == nil {
			sess = &revealSession{revealer: reveal.New(s.loop)}
			s.sessions[key] = sess
		}
		previous := sess.current

		cancel, err := sess.revealer.Start(text, s.interval, st.tick, func() {
			st.finish(outcomeCompleted)
			if s.sessions[key] == sess && sess.current == st {
				delete(s.sessions, key)
			}
		})
		if err != nil {
			startErr = err
			if sess.current == nil {
				delete(s.sessions, key)
			}
			return
		}

		if previous != nil {
			previous.finish(outcomeCancelled)
		}
		sess.current = st
		sess.cancel = cancel
	})
	if err != nil {
		return nil, err
	}
	if startErr != nil {
		return nil, startErr
	}
	return st, nil
}

// stopReveal cancels st if it is still the session's current reveal.
func (s *Server) stopReveal(key string, st *revealStream) {
	s.loop.Post(func() {
		sess := s.sessions[key]
		if sess == nil || sess.current != st {
			return
		}
		sess.cancel()
		st.finish(outcomeCancelled)
		delete(s.sessions, key)
	})
}

// activeReveals returns how many sessions have a reveal in progress.
func (s *Server) activeReveals() (int, error) {
	n := 0
	err := s.loop.Do(func() {
		for _, sess := range s.sessions {
			if sess.revealer.Active() {
				n++
			}
		}
	})
	return n, err
}

// pumpReveal writes st's progress to sse until the reveal ends, the client goes away or the
// loop stops. onComplete writes the final event of a completed reveal.
func (s *Server) pumpReveal(ctx context.Context, sse *SSEWriter, key string, st *revealStream, onComplete func()) {
	sent, cursor := 0, 0

	// flush sends the text revealed since the last write.
	flush := func(prefix string) bool {
		if len(prefix) <= sent {
			return true
		}
		delta := prefix[sent:]
		cursor += utf8.RuneCountInString(delta)
		sent = len(prefix)
		if err := sse.WriteTick(cursor, delta); err != nil {
			log.Printf("[REVEAL] Error writing tick for %s: %v", key, err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			s.stopReveal(key, st)
			return
		case <-s.loop.Done():
			// A reveal that ended before the loop stopped still reports how it ended.
			prefix, o := st.snapshot()
			if o == outcomeRunning {
				sse.WriteError(HTTPStatus(reveal.ErrLoopClosed), "server shutting down")
				return
			}
			if flush(prefix) {
				endStream(sse, o, onComplete)
			}
			return
		case <-st.notify:
		}

		prefix, o := st.snapshot()
		if !flush(prefix) {
			s.stopReveal(key, st)
			return
		}
		if endStream(sse, o, onComplete) {
			return
		}
	}
}

// endStream writes the final event for a finished outcome and reports whether there was one.
func endStream(sse *SSEWriter, o outcome, onComplete func()) bool {
	switch o {
	case outcomeCompleted:
		onComplete()
		return true
	case outcomeCancelled:
		sse.WriteCancelled("superseded by a newer reveal")
		return true
	}
	return false
}
