// Package storage persists the transaction collection and the settings as
// JSON documents in an opaque key-value slot.
package storage

import (
	"context"
	"errors"
)

// Fixed slot keys.
const (
	TransactionsKey = "money-tracker:v1"
	SettingsKey     = "money-tracker:settings"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// Ports implemented by every backend.
type (
	Getter interface {
		// Get returns the value under key and whether it exists.
		Get(ctx context.Context, key string) (value string, ok bool, err error)
	}

	Setter interface {
		// Set overwrites the value under key.
		Set(ctx context.Context, key, value string) error
	}

	Store interface {
		Getter
		Setter
		Close() error
	}
)
