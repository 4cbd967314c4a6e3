package storage

import (
	"fmt"
	"sync"

	"whiteknight/core"
)

// table is an insertion-ordered map of records. It is not safe for concurrent
// use on its own; MemoryStore guards all tables with one lock.
type table[T any] struct {
	rows     map[string]*T
	order    []string
	clone    func(*T) *T
	notFound error
}

func newTable[T any](clone func(*T) *T, notFound error) *table[T] {
	return &table[T]{
		rows:     make(map[string]*T),
		clone:    clone,
		notFound: notFound,
	}
}

func (t *table[T]) insert(id string, rec *T) error {
	if _, exists := t.rows[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	t.rows[id] = t.clone(rec)
	t.order = append(t.order, id)
	return nil
}

func (t *table[T]) get(id string) (*T, error) {
	rec, ok := t.rows[id]
	if !ok {
		return nil, t.notFound
	}
	return t.clone(rec), nil
}

func (t *table[T]) update(id string, mutate func(*T)) (*T, error) {
	rec, ok := t.rows[id]
	if !ok {
		return nil, t.notFound
	}
	next := t.clone(rec)
	mutate(next)
	t.rows[id] = next
	return t.clone(next), nil
}

func (t *table[T]) remove(id string) (*T, error) {
	rec, ok := t.rows[id]
	if !ok {
		return nil, t.notFound
	}
	delete(t.rows, id)
	for i, key := range t.order {
		if key == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return rec, nil
}

// list returns copies of every record accepted by keep, in insertion order
func (t *table[T]) list(keep func(*T) bool) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		rec := t.rows[id]
		if keep != nil && !keep(rec) {
			continue
		}
		out = append(out, *t.clone(rec))
	}
	return out
}

// MemoryStore keeps the four entity tables in process memory.
// State is lost on restart.
type MemoryStore struct {
	mu              sync.RWMutex
	cases           *table[core.Case]
	signals         *table[core.Signal]
	threats         *table[core.Threat]
	recommendations *table[core.Recommendation]
	closed          bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:           newTable((*core.Case).Clone, ErrCaseNotFound),
		signals:         newTable((*core.Signal).Clone, ErrSignalNotFound),
		threats:         newTable((*core.Threat).Clone, ErrThreatNotFound),
		recommendations: newTable((*core.Recommendation).Clone, ErrRecommendationNotFound),
	}
}

func (m *MemoryStore) CreateCase(c *core.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrDatabaseClosed
	}
	return m.cases.insert(c.CaseID, c)
}

func (m *MemoryStore) GetCase(id string) (*core.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cases.get(id)
}

func (m *MemoryStore) ListCases() ([]core.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cases.list(nil), nil
}

func (m *MemoryStore) UpdateCase(id string, mutate func(*core.Case)) (*core.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cases.update(id, mutate)
}

func (m *MemoryStore) DeleteCase(id string) (*core.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cases.remove(id)
}

func (m *MemoryStore) CreateSignal(s *core.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrDatabaseClosed
	}
	return m.signals.insert(s.SignalID, s)
}

func (m *MemoryStore) GetSignal(id string) (*core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.signals.get(id)
}

func (m *MemoryStore) ListSignals(filter core.SignalFilter) ([]core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.signals.list(filter.Matches), nil
}

func (m *MemoryStore) CreateThreat(t *core.Threat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrDatabaseClosed
	}
	return m.threats.insert(t.ThreatID, t)
}

func (m *MemoryStore) GetThreat(id string) (*core.Threat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.threats.get(id)
}

func (m *MemoryStore) ListThreats(filter core.ThreatFilter) ([]core.Threat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.threats.list(filter.Matches), nil
}

func (m *MemoryStore) UpdateThreat(id string, mutate func(*core.Threat)) (*core.Threat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threats.update(id, mutate)
}

func (m *MemoryStore) CreateRecommendation(r *core.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrDatabaseClosed
	}
	return m.recommendations.insert(r.RecommendationID, r)
}

func (m *MemoryStore) GetRecommendation(id string) (*core.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recommendations.get(id)
}

func (m *MemoryStore) ListRecommendations(filter core.RecommendationFilter) ([]core.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recommendations.list(filter.Matches), nil
}

func (m *MemoryStore) UpdateRecommendation(id string, mutate func(*core.Recommendation)) (*core.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recommendations.update(id, mutate)
}

// Close marks the store closed; further creates fail with ErrDatabaseClosed
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
