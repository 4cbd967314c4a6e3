package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"whiteknight/core"
	"whiteknight/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultCacheSize is the per-table record cache size used when none is configured
const DefaultCacheSize = 1024

// recordTable maps one entity type onto one SQLite table
type recordTable[T any] struct {
	name     string
	columns  []string
	values   func(*T) []interface{}
	id       func(*T) string
	clone    func(*T) *T
	notFound error
	cache    *lru.Cache[string, *T]
}

// condition is an equality predicate on a denormalized column; empty values are skipped
type condition struct {
	column string
	value  string
}

func (rt *recordTable[T]) insert(tx *sql.Tx, rec *T) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	cols := append(append([]string{"id"}, rt.columns...), "payload")
	args := append(append([]interface{}{rt.id(rec)}, rt.values(rec)...), payload)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		rt.name, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	if _, err := tx.Exec(query, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rt.id(rec))
		}
		return fmt.Errorf("failed to insert into %s: %w", rt.name, err)
	}
	return nil
}

// remember caches a committed record
func (rt *recordTable[T]) remember(rec *T) {
	rt.cache.Add(rt.id(rec), rt.clone(rec))
}

func (rt *recordTable[T]) load(q interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}, id string) (*T, error) {
	var payload []byte
	err := q.QueryRow("SELECT payload FROM "+rt.name+" WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rt.notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rt.name, err)
	}
	rec := new(T)
	if err := decodeRecord(payload, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (rt *recordTable[T]) get(db *sql.DB, id string) (*T, error) {
	if cached, ok := rt.cache.Get(id); ok {
		metrics.StoreCacheHits.WithLabelValues(rt.name).Inc()
		return rt.clone(cached), nil
	}
	metrics.StoreCacheMisses.WithLabelValues(rt.name).Inc()

	rec, err := rt.load(db, id)
	if err != nil {
		return nil, err
	}
	rt.cache.Add(id, rt.clone(rec))
	return rec, nil
}

func (rt *recordTable[T]) update(tx *sql.Tx, id string, mutate func(*T)) (*T, error) {
	rec, err := rt.load(tx, id)
	if err != nil {
		return nil, err
	}
	mutate(rec)

	payload, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}
	sets := make([]string, 0, len(rt.columns)+1)
	for _, col := range rt.columns {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "payload = ?")
	args := append(append(rt.values(rec), payload), id)

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", rt.name, strings.Join(sets, ", ")), args...); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", rt.name, err)
	}
	return rec, nil
}

func (rt *recordTable[T]) remove(tx *sql.Tx, id string) (*T, error) {
	rec, err := rt.load(tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM "+rt.name+" WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to delete from %s: %w", rt.name, err)
	}
	return rec, nil
}

func (rt *recordTable[T]) list(db *sql.DB, conds ...condition) ([]T, error) {
	query := "SELECT payload FROM " + rt.name
	var where []string
	var args []interface{}
	for _, c := range conds {
		if c.value == "" {
			continue
		}
		where = append(where, c.column+" = ?")
		args = append(args, c.value)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rt.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", rt.name, err)
		}
		var rec T
		if err := decodeRecord(payload, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", rt.name, err)
	}
	return out, nil
}

func newRecordTable[T any](name string, cacheSize int, def recordTable[T]) (*recordTable[T], error) {
	cache, err := lru.New[string, *T](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", name, err)
	}
	def.name = name
	def.cache = cache
	if def.values == nil {
		def.values = func(*T) []interface{} { return nil }
	}
	return &def, nil
}

// SQLiteStore persists the entity tables in SQLite.
//
// Point lookups are served from a per-table LRU cache that is kept in step
// with writes. mu orders cache fills on the read path against writes so a
// slow reader cannot put a stale record back into the cache.
type SQLiteStore struct {
	db     *SQLite
	logger *zap.SugaredLogger
	mu     sync.RWMutex

	cases           *recordTable[core.Case]
	signals         *recordTable[core.Signal]
	threats         *recordTable[core.Threat]
	recommendations *recordTable[core.Recommendation]
}

// NewSQLiteStore wraps an open SQLite database. cacheSize <= 0 selects DefaultCacheSize.
func NewSQLiteStore(db *SQLite, cacheSize int, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cases, err := newRecordTable("cases", cacheSize, recordTable[core.Case]{
		id:       func(c *core.Case) string { return c.CaseID },
		clone:    (*core.Case).Clone,
		notFound: ErrCaseNotFound,
	})
	if err != nil {
		return nil, err
	}

	signals, err := newRecordTable("signals", cacheSize, recordTable[core.Signal]{
		columns: []string{"signal_type", "case_id"},
		values: func(s *core.Signal) []interface{} {
			return []interface{}{string(s.SignalType), s.CaseID}
		},
		id:       func(s *core.Signal) string { return s.SignalID },
		clone:    (*core.Signal).Clone,
		notFound: ErrSignalNotFound,
	})
	if err != nil {
		return nil, err
	}

	threats, err := newRecordTable("threats", cacheSize, recordTable[core.Threat]{
		columns: []string{"threat_level", "case_id"},
		values: func(t *core.Threat) []interface{} {
			return []interface{}{string(t.ThreatLevel), t.CaseID}
		},
		id:       func(t *core.Threat) string { return t.ThreatID },
		clone:    (*core.Threat).Clone,
		notFound: ErrThreatNotFound,
	})
	if err != nil {
		return nil, err
	}

	recommendations, err := newRecordTable("recommendations", cacheSize, recordTable[core.Recommendation]{
		columns: []string{"threat_id"},
		values: func(r *core.Recommendation) []interface{} {
			return []interface{}{r.ThreatID}
		},
		id:       func(r *core.Recommendation) string { return r.RecommendationID },
		clone:    (*core.Recommendation).Clone,
		notFound: ErrRecommendationNotFound,
	})
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{
		db:              db,
		logger:          logger,
		cases:           cases,
		signals:         signals,
		threats:         threats,
		recommendations: recommendations,
	}, nil
}

// DB returns the underlying SQLite handle
func (s *SQLiteStore) DB() *SQLite {
	return s.db
}

func (s *SQLiteStore) CreateCase(c *core.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		return s.cases.insert(tx, c)
	})
	if err != nil {
		return err
	}
	s.cases.remember(c)
	return nil
}

func (s *SQLiteStore) GetCase(id string) (*core.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases.get(s.db.ReadDB, id)
}

func (s *SQLiteStore) ListCases() ([]core.Case, error) {
	return s.cases.list(s.db.ReadDB)
}

func (s *SQLiteStore) UpdateCase(id string, mutate func(*core.Case)) (*core.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *core.Case
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		out, err = s.cases.update(tx, id, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cases.remember(out)
	return out, nil
}

func (s *SQLiteStore) DeleteCase(id string) (*core.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *core.Case
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		out, err = s.cases.remove(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cases.cache.Remove(id)
	return out, nil
}

func (s *SQLiteStore) CreateSignal(sig *core.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		return s.signals.insert(tx, sig)
	})
	if err != nil {
		return err
	}
	s.signals.remember(sig)
	return nil
}

func (s *SQLiteStore) GetSignal(id string) (*core.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signals.get(s.db.ReadDB, id)
}

func (s *SQLiteStore) ListSignals(filter core.SignalFilter) ([]core.Signal, error) {
	return s.signals.list(s.db.ReadDB,
		condition{"signal_type", string(filter.SignalType)},
		condition{"case_id", filter.CaseID},
	)
}

func (s *SQLiteStore) CreateThreat(t *core.Threat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		return s.threats.insert(tx, t)
	})
	if err != nil {
		return err
	}
	s.threats.remember(t)
	return nil
}

func (s *SQLiteStore) GetThreat(id string) (*core.Threat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threats.get(s.db.ReadDB, id)
}

func (s *SQLiteStore) ListThreats(filter core.ThreatFilter) ([]core.Threat, error) {
	return s.threats.list(s.db.ReadDB,
		condition{"threat_level", string(filter.ThreatLevel)},
		condition{"case_id", filter.CaseID},
	)
}

func (s *SQLiteStore) UpdateThreat(id string, mutate func(*core.Threat)) (*core.Threat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *core.Threat
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		out, err = s.threats.update(tx, id, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.threats.remember(out)
	return out, nil
}

func (s *SQLiteStore) CreateRecommendation(r *core.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		return s.recommendations.insert(tx, r)
	})
	if err != nil {
		return err
	}
	s.recommendations.remember(r)
	return nil
}

func (s *SQLiteStore) GetRecommendation(id string) (*core.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recommendations.get(s.db.ReadDB, id)
}

func (s *SQLiteStore) ListRecommendations(filter core.RecommendationFilter) ([]core.Recommendation, error) {
	return s.recommendations.list(s.db.ReadDB, condition{"threat_id", filter.ThreatID})
}

func (s *SQLiteStore) UpdateRecommendation(id string, mutate func(*core.Recommendation)) (*core.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out *core.Recommendation
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		out, err = s.recommendations.update(tx, id, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recommendations.remember(out)
	return out, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
