package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jdstudio/internal/reveal"
)

// stoppedLoopServer returns a server whose loop has already stopped.
func stoppedLoopServer(t *testing.T) *Server {
	t.Helper()
	loop := reveal.NewLoop()
	loop.Close()
	require.NoError(t, loop.Run(context.Background()))
	return &Server{loop: loop, sessions: map[string]*revealSession{}}
}

func TestPumpReveal_FinishedBeforeLoopStopped(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		outcome    outcome
		wantEvents []string
	}{
		{"completed", "héllo", outcomeCompleted, []string{EventTick, EventComplete}},
		{"cancelled", "hé", outcomeCancelled, []string{EventTick, EventCancelled}},
		{"still running", "", outcomeRunning, []string{EventError}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stoppedLoopServer(t)

			// Both the stream and the stopped loop are ready, so repeat to cover either select order.
			for i := 0; i < 50; i++ {
				st := newRevealStream()
				if tt.prefix != "" {
					st.tick(tt.prefix)
				}
				if tt.outcome != outcomeRunning {
					st.finish(tt.outcome)
				}

				rec := httptest.NewRecorder()
				sse, err := NewSSEWriter(rec)
				require.NoError(t, err)

				s.pumpReveal(context.Background(), sse, "k", st, func() {
					sse.WriteComplete(nil, tt.prefix)
				})

				events := newSSEReader(rec.Body).all(t)
				names := make([]string, 0, len(events))
				for _, ev := range events {
					names = append(names, ev.Name)
				}
				require.Equal(t, tt.wantEvents, names, "run %d", i)

				if tt.prefix != "" {
					var tick TickEvent
					require.NoError(t, json.Unmarshal(events[0].Data, &tick))
					assert.Equal(t, tt.prefix, tick.Delta)
					assert.Equal(t, len([]rune(tt.prefix)), tick.Cursor)
				}
				if tt.outcome == outcomeRunning {
					var ev ErrorEvent
					require.NoError(t, json.Unmarshal(events[0].Data, &ev))
					assert.Equal(t, http.StatusServiceUnavailable, ev.Status)
				}
			}
		})
	}
}
