package storage

import (
	"whiteknight/core"
)

// CaseStorageInterface defines the interface for case storage
type CaseStorageInterface interface {
	CreateCase(c *core.Case) error
	GetCase(id string) (*core.Case, error)
	ListCases() ([]core.Case, error)
	// UpdateCase applies mutate to the stored case atomically and returns the result
	UpdateCase(id string, mutate func(*core.Case)) (*core.Case, error)
	// DeleteCase removes the case and returns the record as it was before removal
	DeleteCase(id string) (*core.Case, error)
}

// SignalStorageInterface defines the interface for signal storage.
// Signals are append-only.
type SignalStorageInterface interface {
	CreateSignal(s *core.Signal) error
	GetSignal(id string) (*core.Signal, error)
	ListSignals(filter core.SignalFilter) ([]core.Signal, error)
}

// ThreatStorageInterface defines the interface for threat storage
type ThreatStorageInterface interface {
	CreateThreat(t *core.Threat) error
	GetThreat(id string) (*core.Threat, error)
	ListThreats(filter core.ThreatFilter) ([]core.Threat, error)
	UpdateThreat(id string, mutate func(*core.Threat)) (*core.Threat, error)
}

// RecommendationStorageInterface defines the interface for recommendation storage
type RecommendationStorageInterface interface {
	CreateRecommendation(r *core.Recommendation) error
	GetRecommendation(id string) (*core.Recommendation, error)
	ListRecommendations(filter core.RecommendationFilter) ([]core.Recommendation, error)
	UpdateRecommendation(id string, mutate func(*core.Recommendation)) (*core.Recommendation, error)
}

// Store is the full entity store.
//
// Every method is atomic with respect to the single table it touches. Lists are
// returned in insertion order. Returned records are copies; mutating them does
// not affect the store.
type Store interface {
	CaseStorageInterface
	SignalStorageInterface
	ThreatStorageInterface
	RecommendationStorageInterface
	Close() error
}

// Backend names accepted by storage.backend
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)
