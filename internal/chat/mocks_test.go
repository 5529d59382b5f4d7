package chat_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/peerbridge/chat-service/internal/domain"
)

// MockTranscriptRepository mocks the TranscriptRepository interface
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Append(ctx context.Context, sessionID string, msg domain.ChatMessage) error {
	args := m.Called(ctx, sessionID, msg)
	return args.Error(0)
}

func (m *MockTranscriptRepository) GetHistory(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *MockTranscriptRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockTicketChatRepository mocks the TicketChatRepository interface
type MockTicketChatRepository struct {
	mock.Mock
}

func (m *MockTicketChatRepository) Append(ctx context.Context, ticketID string, msg domain.SupportMessage) error {
	args := m.Called(ctx, ticketID, msg)
	return args.Error(0)
}

func (m *MockTicketChatRepository) GetHistory(ctx context.Context, ticketID string) ([]domain.SupportMessage, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).([]domain.SupportMessage), args.Error(1)
}

// auditRecorder is an in-memory audit sink. Record runs on a background
// goroutine in the coordinator, so every write also signals a channel the
// tests can wait on.
type auditRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	written chan struct{}
}

func newAuditRecorder() *auditRecorder {
	return &auditRecorder{written: make(chan struct{}, 16)}
}

func (a *auditRecorder) Record(ctx context.Context, entry *domain.AuditEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, *entry)
	a.mu.Unlock()
	a.written <- struct{}{}
}

func (a *auditRecorder) Query(ctx context.Context, filter domain.AuditFilter, limit int64) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out, nil
}

func (a *auditRecorder) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make([]domain.AuditAction, 0, len(a.entries))
	for _, e := range a.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// fakeTimer mirrors the store's first-join-wins semantics in memory
type fakeTimer struct {
	mu     sync.Mutex
	starts map[string]time.Time
	ended  map[string]bool
	// startCalls counts how many StartTimer invocations actually opened a
	// timer, per session.
	startCalls map[string]int
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{
		starts:     make(map[string]time.Time),
		ended:      make(map[string]bool),
		startCalls: make(map[string]int),
	}
}

func (f *fakeTimer) StartTimer(ctx context.Context, sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.starts[sessionID]; !ok {
		f.starts[sessionID] = time.Now()
		f.startCalls[sessionID]++
	}
	f.ended[sessionID] = false
}

func (f *fakeTimer) GetDuration(ctx context.Context, sessionID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, ok := f.starts[sessionID]
	if !ok {
		return 0
	}
	return int64(time.Since(start).Seconds())
}

func (f *fakeTimer) EndTimer(ctx context.Context, sessionID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var duration int64
	if start, ok := f.starts[sessionID]; ok {
		duration = int64(time.Since(start).Seconds())
		delete(f.starts, sessionID)
	}
	f.ended[sessionID] = true
	return duration
}

func (f *fakeTimer) IsActive(ctx context.Context, sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, started := f.starts[sessionID]
	return started && !f.ended[sessionID]
}

func (f *fakeTimer) timerOpens(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls[sessionID]
}
