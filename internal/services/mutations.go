package services

import (
	"context"
	"errors"
	"strings"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

// NewTransaction is raw user input for Add.
type NewTransaction struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Note     string `json:"note"`
	Date     string `json:"date"`
}

// TransactionPatch holds the fields Edit should change. Nil fields keep
// their value.
type TransactionPatch struct {
	Type     *string `json:"type,omitempty"`
	Amount   *string `json:"amount,omitempty"`
	Category *string `json:"category,omitempty"`
	Note     *string `json:"note,omitempty"`
	Date     *string `json:"date,omitempty"`
}

// Add appends a new transaction with a fresh id. An amount that is not a
// non-negative number, or a date that does not parse, rejects the input.
// A blank date means today.
func (t *Tracker) Add(ctx context.Context, in NewTransaction) (core.Transaction, Outcome) {
	t.mu.Lock()
	defer t.unlock(ctx)

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		t.reject(ctx, core.OpAdd, "", err)
		return core.Transaction{}, Rejected
	}
	date := t.today()
	if strings.TrimSpace(in.Date) != "" {
		if date, err = core.ParseDate(in.Date); err != nil {
			t.reject(ctx, core.OpAdd, "", err)
			return core.Transaction{}, Rejected
		}
	}

	tx := core.Transaction{
		ID:       t.newID(),
		Type:     core.ParseTransactionType(in.Type),
		Amount:   amount.Abs(),
		Category: strings.TrimSpace(in.Category),
		Note:     strings.TrimSpace(in.Note),
		Date:     date,
	}
	t.transactions = append(t.transactions, tx)
	t.commit(ctx, core.OpAdd, tx.ID)
	return tx, Applied
}

// Edit updates the transaction with id. Unknown ids are NotFound; an
// invalid amount or date rejects the whole edit.
func (t *Tracker) Edit(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, Outcome) {
	t.mu.Lock()
	defer t.unlock(ctx)

	i := t.indexOf(id)
	if i < 0 {
		t.miss(ctx, core.OpEdit, id)
		return core.Transaction{}, NotFound
	}

	tx := t.transactions[i]
	if patch.Amount != nil {
		amount, err := core.ParseAmount(*patch.Amount)
		if err != nil {
			t.reject(ctx, core.OpEdit, id, err)
			return core.Transaction{}, Rejected
		}
		tx.Amount = amount
	}
	if patch.Date != nil && strings.TrimSpace(*patch.Date) != "" {
		date, err := core.ParseDate(*patch.Date)
		if err != nil {
			t.reject(ctx, core.OpEdit, id, err)
			return core.Transaction{}, Rejected
		}
		tx.Date = date
	}
	if patch.Type != nil {
		tx.Type = core.ParseTransactionType(strings.TrimSpace(*patch.Type))
	}
	if patch.Category != nil {
		tx.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Note != nil {
		tx.Note = strings.TrimSpace(*patch.Note)
	}

	t.transactions[i] = tx
	t.commit(ctx, core.OpEdit, id)
	return tx, Applied
}

// Delete removes the transaction with id.
func (t *Tracker) Delete(ctx context.Context, id string) Outcome {
	t.mu.Lock()
	defer t.unlock(ctx)

	i := t.indexOf(id)
	if i < 0 {
		t.miss(ctx, core.OpDelete, id)
		return NotFound
	}
	t.transactions = append(t.transactions[:i:i], t.transactions[i+1:]...)
	t.commit(ctx, core.OpDelete, id)
	return Applied
}

// Import replaces the whole collection with the decoded payload and returns
// to page 1. A payload that is not a JSON array is Rejected and changes
// nothing.
func (t *Tracker) Import(ctx context.Context, data []byte) (ImportReport, Outcome) {
	t.mu.Lock()
	defer t.unlock(ctx)

	txs, report, err := DecodeImport(data, t.today(), t.newID)
	if err != nil {
		t.reject(ctx, core.OpImport, "", err)
		return report, Rejected
	}
	if report.Dropped > 0 || len(report.Defects) > 0 {
		t.logger.InfoContext(ctx, "Import coerced records",
			"dropped", report.Dropped,
			"defects", len(report.Defects))
	}

	t.transactions = txs
	t.pager.Reset()
	t.commit(ctx, core.OpImport, "")
	return report, Applied
}

// Seed replaces the collection with generated demo data and returns to
// page 1.
func (t *Tracker) Seed(ctx context.Context) (int, Outcome) {
	t.mu.Lock()
	defer t.unlock(ctx)

	t.transactions = GenerateSeed(t.now(), t.rand, t.newID)
	t.pager.Reset()
	t.commit(ctx, core.OpSeed, "")
	return len(t.transactions), Applied
}

// Reset clears the collection once confirm agrees. A nil confirmer never
// agrees.
func (t *Tracker) Reset(ctx context.Context, confirm Confirmer) Outcome {
	t.mu.Lock()
	defer t.unlock(ctx)

	prompt := t.translate(nil, "confirm_clear", nil)
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		t.metrics.RecordMutation(string(core.OpReset), Cancelled.String())
		t.logger.InfoContext(ctx, "Reset cancelled")
		return Cancelled
	}

	t.transactions = []core.Transaction{}
	t.pager.Reset()
	t.commit(ctx, core.OpReset, "")
	return Applied
}

// Export returns the whole collection as an indented JSON document.
func (t *Tracker) Export(ctx context.Context) (ExportFile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := EncodeExport(t.transactions)
	if err != nil {
		return ExportFile{}, err
	}
	return ExportFile{Name: ExportFilename(t.now()), Data: data}, nil
}

// commit runs after every applied mutation: bump the version, persist,
// record and queue the change event. Persistence failures are logged only.
func (t *Tracker) commit(ctx context.Context, op core.Operation, id string) {
	t.version++

	if err := t.transactionsRepo.Save(ctx, t.transactions); err != nil {
		t.storageFailure(ctx, log.OpWrite, err)
	}

	t.metrics.RecordMutation(string(op), Applied.String())
	t.events.LogMutation(ctx, string(op), Applied.String(), id, t.version, len(t.transactions))

	if t.notifier == nil {
		return
	}
	t.pending = append(t.pending, core.ChangeEvent{
		Operation:     op,
		TransactionID: id,
		Version:       t.version,
		Count:         len(t.transactions),
		Timestamp:     t.now().UTC(),
	})
}

// unlock releases the mutex taken by a mutation and then publishes the
// events commit queued. A slow or redialling broker delays only the caller.
func (t *Tracker) unlock(ctx context.Context) {
	events := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, event := range events {
		t.publish(ctx, event)
	}
}

func (t *Tracker) publish(ctx context.Context, event core.ChangeEvent) {
	if err := t.notifier.PublishChange(ctx, event); err != nil {
		t.metrics.RecordPublish(false)
		t.logger.WarnContext(ctx, "Change event not published",
			log.FieldOperation, event.Operation,
			log.FieldVersion, event.Version,
			log.FieldError, err)
		return
	}
	t.metrics.RecordPublish(true)
}

func (t *Tracker) reject(ctx context.Context, op core.Operation, id string, err error) {
	t.metrics.RecordMutation(string(op), Rejected.String())
	level := t.logger.InfoContext
	if errors.Is(err, ErrMalformedImport) {
		level = t.logger.WarnContext
	}
	level(ctx, "Mutation rejected",
		log.FieldOperation, op,
		log.FieldTransactionID, id,
		log.FieldError, err)
}

func (t *Tracker) miss(ctx context.Context, op core.Operation, id string) {
	t.metrics.RecordMutation(string(op), NotFound.String())
	t.logger.DebugContext(ctx, "Mutation target not found",
		log.FieldOperation, op,
		log.FieldTransactionID, id)
}
