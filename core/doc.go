// Package core defines the domain model for the WhiteKnight investigation API.
//
// # Overview
//
// The core package provides:
//   - Domain types (Case, Evidence, Signal, Threat, Recommendation)
//   - Closed enumerations for signal types and threat levels
//   - The static mitigation tables behind the "AI" recommendation endpoint
//   - Dashboard aggregation over a snapshot of the entity tables
//   - List filters shared by every storage backend
//
// Nothing in this package performs I/O. Storage lives in package storage and
// cross-table bookkeeping lives in package service.
package core
