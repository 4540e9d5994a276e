package backend

import (
	"context"

	"moneytracker/internal/storage"
)

// Pinger is implemented by stores that sit behind a network or file
// connection and can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store instance and its cleanup function
type BackendResult struct {
	Store   storage.Store
	Type    BackendType
	Cleanup CleanupFunc
}

// Ping checks the store when it supports readiness checks.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates stores based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for store creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Redis specific
	RedisURL       string
	RedisKeyPrefix string

	// Memory backend specific; seed_transactions.json is read from here
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	RedisBackend  BackendType = "redis"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, RedisBackend:
		return true
	default:
		return false
	}
}
