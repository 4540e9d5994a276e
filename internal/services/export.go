package services

import (
	"encoding/json"
	"fmt"
	"time"

	"moneytracker/internal/core"
)

// ExportFile is a downloadable copy of the whole collection.
type ExportFile struct {
	Name string
	Data []byte
}

// ExportFilename is money-tracker-<unix millis>.json.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("money-tracker-%d.json", now.UnixMilli())
}

// EncodeExport renders transactions as an indented JSON array.
func EncodeExport(txs []core.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}
