package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"moneytracker/internal/core"
)

// ErrMalformedImport is returned when the payload is not a JSON array.
var ErrMalformedImport = errors.New("import payload is not a JSON array")

// Defect describes one field that could not be taken as-is. Dropped defects
// mean the whole record was discarded.
type Defect struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Problem string `json:"problem"`
	Dropped bool   `json:"dropped,omitempty"`
}

// ImportReport summarises a decoded import.
type ImportReport struct {
	Received  int      `json:"received"`
	Imported  int      `json:"imported"`
	Dropped   int      `json:"dropped"`
	Defects   []Defect `json:"defects"`
	Malformed bool     `json:"malformed,omitempty"`
}

type recordDecoder struct {
	today core.Date
	newID func() string
	seen  map[string]struct{}
}

// DecodeImport turns an untrusted JSON array into transactions.
//
// Each element is coerced field by field:
//   - id: a non-empty string or a number; otherwise, or when repeated, a
//     fresh id is generated
//   - type: income only when exactly "income", expense otherwise
//   - amount: absolute value of a number or numeric string; missing, null,
//     false and "" count as zero, true as one; anything else drops the record
//   - category, note: strings as-is, numbers and booleans in text form,
//     everything else empty
//   - date: the first ten characters of a string when they form a valid
//     date, today otherwise
//
// Elements that are not objects are dropped.
func DecodeImport(data []byte, today core.Date, newID func() string) ([]core.Transaction, ImportReport, error) {
	report := ImportReport{Defects: []Defect{}}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		report.Malformed = true
		return nil, report, ErrMalformedImport
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		report.Malformed = true
		return nil, report, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	d := &recordDecoder{today: today, newID: newID, seen: make(map[string]struct{})}
	txs := make([]core.Transaction, 0, len(elements))
	report.Received = len(elements)
	for i, raw := range elements {
		tx, defects, ok := d.decode(i, raw)
		report.Defects = append(report.Defects, defects...)
		if !ok {
			report.Dropped++
			continue
		}
		txs = append(txs, tx)
	}
	report.Imported = len(txs)
	return txs, report, nil
}

func (d *recordDecoder) decode(index int, raw json.RawMessage) (core.Transaction, []Defect, bool) {
	var defects []Defect
	defect := func(field, problem string, dropped bool) {
		defects = append(defects, Defect{Index: index, Field: field, Problem: problem, Dropped: dropped})
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		defect("", "not an object", true)
		return core.Transaction{}, defects, false
	}

	amount, ok := coerceAmount(fields["amount"])
	if !ok {
		defect("amount", "not a number", true)
		return core.Transaction{}, defects, false
	}

	tx := core.Transaction{
		Amount: amount,
		Type:   core.Expense,
	}

	id, present := coerceID(fields["id"])
	switch {
	case id == "" && present:
		defect("id", "invalid id replaced", false)
		id = d.newID()
	case id == "":
		id = d.newID()
	}
	if _, dup := d.seen[id]; dup {
		defect("id", "duplicate id replaced", false)
		id = d.newID()
	}
	d.seen[id] = struct{}{}
	tx.ID = id

	if v, ok := fields["type"]; ok {
		s, _ := v.(string)
		switch s {
		case string(core.Income):
			tx.Type = core.Income
		case string(core.Expense):
		default:
			defect("type", "unknown type treated as expense", false)
		}
	}

	var bad bool
	if tx.Category, bad = coerceText(fields["category"]); bad {
		defect("category", "not text", false)
	}
	if tx.Note, bad = coerceText(fields["note"]); bad {
		defect("note", "not text", false)
	}

	tx.Date = d.today
	switch v := fields["date"].(type) {
	case nil:
	case string:
		if v == "" {
			break
		}
		date, err := core.ParseDate(truncateRunes(v, 10))
		if err != nil {
			defect("date", "invalid date replaced with today", false)
			break
		}
		tx.Date = date
	default:
		defect("date", "invalid date replaced with today", false)
	}

	return tx, defects, true
}

func coerceID(v any) (id string, present bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	default:
		return "", true
	}
}

func coerceAmount(v any) (core.Money, bool) {
	switch x := v.(type) {
	case nil:
		return core.Money{}, true
	case bool:
		if x {
			return core.MoneyFromInt(1), true
		}
		return core.Money{}, true
	case json.Number:
		d, err := core.ParseDecimal(x.String())
		if err != nil {
			return core.Money{}, false
		}
		return core.NewMoney(d.Abs()), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return core.Money{}, true
		}
		d, err := core.ParseDecimal(s)
		if err != nil {
			return core.Money{}, false
		}
		return core.NewMoney(d.Abs()), true
	default:
		return core.Money{}, false
	}
}

// coerceText reports bad when v had to be discarded.
func coerceText(v any) (text string, bad bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, false
	case json.Number:
		return x.String(), false
	case bool:
		if x {
			return "true", false
		}
		return "", false
	default:
		return "", true
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
