package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/peerbridge/chat-service/internal/domain"
)

const (
	startKeyPrefix  = "session:start:"
	statusKeyPrefix = "session:status:"
)

// TimerStore implements domain.SessionTimer on top of Redis. All storage
// errors are swallowed into safe defaults (0 / false) and logged; chat flow
// must never fail because the timer store hiccuped.
type TimerStore struct {
	client          *Client
	activeTTL       time.Duration
	statusRetention time.Duration
}

// NewTimerStore creates a new session timer store
func NewTimerStore(client *Client, activeTTL, statusRetention time.Duration) *TimerStore {
	return &TimerStore{
		client:          client,
		activeTTL:       activeTTL,
		statusRetention: statusRetention,
	}
}

func startKey(sessionID string) string {
	return startKeyPrefix + sessionID
}

func statusKey(sessionID string) string {
	return statusKeyPrefix + sessionID
}

// StartTimer records the session start time. SETNX makes the first caller
// win: concurrent or repeat joins never reset a running clock. The status
// key always moves (back) to ACTIVE, so a join after end-session opens a
// fresh timer epoch.
func (s *TimerStore) StartTimer(ctx context.Context, sessionID string) {
	now := time.Now().UnixMilli()

	pipe := s.client.rdb.TxPipeline()
	setCmd := pipe.SetNX(ctx, startKey(sessionID), now, s.activeTTL)
	pipe.Set(ctx, statusKey(sessionID), domain.TimerStatusActive, s.activeTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to start session timer")
		return
	}

	if setCmd.Val() {
		log.Debug().Str("session_id", sessionID).Int64("start_ms", now).Msg("Session timer started")
	}
}

// GetDuration returns elapsed whole seconds since the session started,
// or 0 when the session never started, already ended, or the store errored.
func (s *TimerStore) GetDuration(ctx context.Context, sessionID string) int64 {
	val, err := s.client.rdb.Get(ctx, startKey(sessionID)).Result()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to read session start time")
		return 0
	}

	startMillis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("value", val).Msg("Corrupt session start time")
		return 0
	}

	return durationSeconds(startMillis, time.Now().UnixMilli())
}

// EndTimer computes the final duration, removes the start key and marks the
// session ENDED with the retention window. Ending a session that never
// started returns 0 and still writes the ENDED status.
func (s *TimerStore) EndTimer(ctx context.Context, sessionID string) int64 {
	var duration int64

	// GETDEL keeps read-and-remove atomic so two racing end-session calls
	// cannot both report a nonzero duration.
	val, err := s.client.rdb.GetDel(ctx, startKey(sessionID)).Result()
	switch {
	case err == redis.Nil:
		// Never started or already ended
	case err != nil:
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to clear session start time")
	default:
		if startMillis, parseErr := strconv.ParseInt(val, 10, 64); parseErr == nil {
			duration = durationSeconds(startMillis, time.Now().UnixMilli())
		} else {
			log.Error().Err(parseErr).Str("session_id", sessionID).Str("value", val).Msg("Corrupt session start time")
		}
	}

	if err := s.client.rdb.Set(ctx, statusKey(sessionID), domain.TimerStatusEnded, s.statusRetention).Err(); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to mark session ended")
	}

	return duration
}

// IsActive reports whether the stored status equals ACTIVE; storage errors
// yield false.
func (s *TimerStore) IsActive(ctx context.Context, sessionID string) bool {
	val, err := s.client.rdb.Get(ctx, statusKey(sessionID)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to read session status")
		return false
	}
	return val == domain.TimerStatusActive
}

func durationSeconds(startMillis, nowMillis int64) int64 {
	if nowMillis <= startMillis {
		return 0
	}
	return (nowMillis - startMillis) / 1000
}
