package orchestration

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrRecordNotFound is returned when no execution record matches.
	ErrRecordNotFound = errors.New("execution record not found")

	// ErrRecordInvalid is returned for a nil record or a missing request ID.
	ErrRecordInvalid = errors.New("execution record invalid")
)

// HistoryStore keeps execution records for inspection and metrics.
// Implementations must be safe for concurrent use. Recording is best-effort
// from the orchestrator's perspective: errors are logged, never propagated,
// so a slow or unavailable backend cannot block orchestration.
type HistoryStore interface {
	// Record saves one execution record.
	Record(ctx context.Context, record *ExecutionRecord) error

	// Get retrieves a record by request ID.
	Get(ctx context.Context, requestID string) (*ExecutionRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]ExecutionRecord, error)
}

// NoOpHistoryStore discards all records. Used when history is disabled.
type NoOpHistoryStore struct{}

func (n *NoOpHistoryStore) Record(ctx context.Context, record *ExecutionRecord) error {
	return nil
}

func (n *NoOpHistoryStore) Get(ctx context.Context, requestID string) (*ExecutionRecord, error) {
	return nil, ErrRecordNotFound
}

func (n *NoOpHistoryStore) ListRecent(ctx context.Context, limit int) ([]ExecutionRecord, error) {
	return nil, nil
}

// MemoryHistoryStore keeps the most recent records in a bounded in-process
// ring. It is the default backend when no Redis URL is configured.
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	records []ExecutionRecord
	size    int
}

// NewMemoryHistoryStore creates a memory store that retains at most size
// records, evicting oldest first.
func NewMemoryHistoryStore(size int) *MemoryHistoryStore {
	if size <= 0 {
		size = 100
	}
	return &MemoryHistoryStore{size: size}
}

func (m *MemoryHistoryStore) Record(ctx context.Context, record *ExecutionRecord) error {
	if record == nil || record.RequestID == "" {
		return ErrRecordInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	if len(m.records) > m.size {
		m.records = m.records[len(m.records)-m.size:]
	}
	return nil
}

func (m *MemoryHistoryStore) Get(ctx context.Context, requestID string) (*ExecutionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].RequestID == requestID {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *MemoryHistoryStore) ListRecent(ctx context.Context, limit int) ([]ExecutionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]ExecutionRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}
