package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"moneytracker/internal/core"
)

// TransactionRepository reads and writes the collection under
// TransactionsKey.
type TransactionRepository struct {
	store Store
}

func NewTransactionRepository(store Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// SkippedRecordsError is returned by Load alongside the records that did
// decode when some stored records did not.
type SkippedRecordsError struct {
	Skipped int
	Total   int
	First   error
}

func (e *SkippedRecordsError) Error() string {
	return fmt.Sprintf("skipped %d of %d stored transactions: %v", e.Skipped, e.Total, e.First)
}

func (e *SkippedRecordsError) Unwrap() error { return e.First }

// Load returns the stored collection. A missing slot is an empty
// collection; an unreadable slot or one that is not a JSON array is an
// error. Records that fail to decode are left out and reported with a
// *SkippedRecordsError next to the rest.
func (r *TransactionRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	raw, ok, err := r.store.Get(ctx, TransactionsKey)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []core.Transaction{}, nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(elements))
	var skipped *SkippedRecordsError
	for i, element := range elements {
		var tx core.Transaction
		if err := json.Unmarshal(element, &tx); err != nil {
			if skipped == nil {
				skipped = &SkippedRecordsError{Total: len(elements), First: fmt.Errorf("record %d: %w", i, err)}
			}
			skipped.Skipped++
			continue
		}
		txs = append(txs, tx)
	}
	if skipped != nil {
		return txs, skipped
	}
	return txs, nil
}

// Save overwrites the stored collection.
func (r *TransactionRepository) Save(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := r.store.Set(ctx, TransactionsKey, string(data)); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	return nil
}

// SettingsRepository reads and writes settings under SettingsKey.
type SettingsRepository struct {
	store    Store
	defaults core.Settings
}

func NewSettingsRepository(store Store, defaults core.Settings) *SettingsRepository {
	if defaults.Currency == "" {
		defaults.Currency = core.DefaultCurrency
	}
	if defaults.Theme != core.ThemeDark {
		defaults.Theme = core.ThemeLight
	}
	return &SettingsRepository{store: store, defaults: defaults}
}

// Defaults returns the settings used when nothing valid is stored.
func (r *SettingsRepository) Defaults() core.Settings {
	return r.defaults
}

type storedSettings struct {
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

// Load returns the stored settings. The currency is upper-cased and falls
// back to the default when empty; any theme other than "dark" is light.
// On error the defaults are returned alongside it.
func (r *SettingsRepository) Load(ctx context.Context) (core.Settings, error) {
	raw, ok, err := r.store.Get(ctx, SettingsKey)
	if err != nil {
		return r.defaults, fmt.Errorf("read settings: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return r.defaults, nil
	}
	var s storedSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return r.defaults, fmt.Errorf("decode settings: %w", err)
	}
	out := core.Settings{
		Currency: strings.ToUpper(strings.TrimSpace(s.Currency)),
		Theme:    core.ThemeLight,
	}
	if out.Currency == "" {
		out.Currency = r.defaults.Currency
	}
	if core.Theme(s.Theme) == core.ThemeDark {
		out.Theme = core.ThemeDark
	}
	return out, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s core.Settings) error {
	data, err := json.Marshal(storedSettings{Currency: s.Currency, Theme: string(s.Theme)})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.store.Set(ctx, SettingsKey, string(data)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
