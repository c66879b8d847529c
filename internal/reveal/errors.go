package reveal

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLoopClosed is returned when work is handed to a loop that has stopped.
	ErrLoopClosed = errors.New("reveal loop is closed")
	// ErrLoopRunning is returned when Run is called on a loop that is already running.
	ErrLoopRunning = errors.New("reveal loop is already running")
	// ErrInvalidInterval is matched by every IntervalError.
	ErrInvalidInterval = errors.New("tick interval must be positive")
)

// IntervalError reports a rejected tick interval.
type IntervalError struct {
	Interval time.Duration
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid tick interval %v: must be positive", e.Interval)
}

// Is lets errors.Is match ErrInvalidInterval.
func (e *IntervalError) Is(target error) bool {
	return target == ErrInvalidInterval
}
