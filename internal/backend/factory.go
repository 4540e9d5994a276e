package backend

import (
	"context"
	"fmt"

	"moneytracker/internal/log"
	"moneytracker/internal/storage"
	"moneytracker/internal/storage/memory"
	"moneytracker/internal/storage/redis"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldBackend, SQLiteBackend,
		"db_path", config.SQLiteDBPath)

	return &BackendResult{Store: store, Type: SQLiteBackend, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := redis.New(ctx, config.RedisURL, config.RedisKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Redis backend",
		log.FieldBackend, RedisBackend,
		"key_prefix", config.RedisKeyPrefix)

	return &BackendResult{Store: store, Type: RedisBackend, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromDir(dataDir)

	f.logger.InfoContext(ctx, "Initialized memory backend",
		log.FieldBackend, MemoryBackend,
		"data_directory", dataDir)

	return &BackendResult{Store: store, Type: MemoryBackend, Cleanup: store.Close}, nil
}
