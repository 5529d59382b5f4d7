package domain

import "context"

// Timer status values as stored in the key-value store
const (
	TimerStatusActive = "ACTIVE"
	TimerStatusEnded  = "ENDED"
)

// SessionTimer tracks wall-clock session lifetime in a shared low-latency
// store so timer state survives process restarts. Implementations swallow
// storage errors and return safe defaults (0 duration, false active); the
// timer is never a source of fatal errors for the rest of the system.
type SessionTimer interface {
	// StartTimer records the session start. The first caller wins; repeat
	// calls while a timer is running do not reset the clock.
	StartTimer(ctx context.Context, sessionID string)

	// GetDuration returns elapsed whole seconds since start, 0 if the
	// session never started or already ended.
	GetDuration(ctx context.Context, sessionID string) int64

	// EndTimer returns the final duration, removes the start key and marks
	// the session ENDED with a retention window. Ending a session that
	// never started returns 0 and still marks it ENDED.
	EndTimer(ctx context.Context, sessionID string) int64

	// IsActive reports whether the stored status is ACTIVE.
	IsActive(ctx context.Context, sessionID string) bool
}
