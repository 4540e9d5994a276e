// Package services holds the Tracker, the single owner of the transaction
// collection and everything derived from it.
package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneytracker/internal/cache"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/query"
	"moneytracker/internal/storage"
)

// Notifier receives an event after every applied mutation.
type Notifier interface {
	PublishChange(ctx context.Context, event core.ChangeEvent) error
}

// Translator looks up user-facing labels.
type Translator interface {
	T(key string, params i18n.Params) string
}

// Confirmer gates destructive operations.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed and Declined are fixed answers.
var (
	Confirmed = ConfirmFunc(func(context.Context, string) bool { return true })
	Declined  = ConfirmFunc(func(context.Context, string) bool { return false })
)

// Tracker serializes every action behind one mutex: each mutation is
// applied and persisted before the next one starts. Its change event is
// published once the mutex is released.
type Tracker struct {
	mu sync.Mutex

	transactionsRepo *storage.TransactionRepository
	settingsRepo     *storage.SettingsRepository

	transactions []core.Transaction
	settings     core.Settings
	criteria     query.Criteria
	pager        *query.Pager
	version      uint64
	pending      []core.ChangeEvent

	now        func() time.Time
	newID      func() string
	rand       *rand.Rand
	notifier   Notifier
	metrics    metrics.Collector
	translator Translator
	views      cache.Cache[Aggregates]
	logger     *log.Logger
	events     *log.StructuredLogger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source used for today's date, the monthly window
// and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces uuid generation.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithRand sets the random source used by Seed.
func WithRand(r *rand.Rand) Option {
	return func(t *Tracker) { t.rand = r }
}

func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func WithMetrics(m metrics.Collector) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithTranslator sets the default translator for labels. Without one,
// labels degrade to their raw keys.
func WithTranslator(tr Translator) Option {
	return func(t *Tracker) { t.translator = tr }
}

// WithViewCache memoizes derived views by collection version and criteria.
func WithViewCache(c cache.Cache[Aggregates]) Option {
	return func(t *Tracker) { t.views = c }
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewViewCache returns a cache suitable for WithViewCache.
func NewViewCache(size int, ttl time.Duration) *cache.ViewCache[Aggregates] {
	return cache.NewViewCache[Aggregates](size, ttl)
}

// NewTracker loads the collection and settings. Read failures are logged
// and the tracker starts empty with default settings.
func NewTracker(ctx context.Context, transactions *storage.TransactionRepository, settings *storage.SettingsRepository, opts ...Option) *Tracker {
	t := &Tracker{
		transactionsRepo: transactions,
		settingsRepo:     settings,
		criteria:         query.Criteria{}.Normalize(),
		pager:            query.NewPager(query.PageSize),
		now:              time.Now,
		newID:            uuid.NewString,
		metrics:          metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rand == nil {
		seed := uint64(t.now().UnixNano())
		t.rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if t.logger == nil {
		t.logger = log.FromContext(ctx)
	}
	t.logger = t.logger.WithComponent(log.ComponentTracker)
	t.events = log.NewStructuredLogger(t.logger)

	t.load(ctx)
	return t
}

func (t *Tracker) load(ctx context.Context) {
	txs, err := t.transactionsRepo.Load(ctx)
	var skipped *storage.SkippedRecordsError
	switch {
	case errors.As(err, &skipped):
		t.metrics.RecordStorageFailure(log.OpRead)
		t.logger.WarnContext(ctx, "Stored transactions skipped",
			"skipped", skipped.Skipped,
			log.FieldCount, skipped.Total,
			log.FieldError, skipped.First)
	case err != nil:
		t.storageFailure(ctx, log.OpRead, err)
		txs = []core.Transaction{}
	}
	t.transactions = txs

	s, err := t.settingsRepo.Load(ctx)
	if err != nil {
		t.storageFailure(ctx, log.OpRead, err)
	}
	t.settings = s

	t.logger.InfoContext(ctx, "Tracker loaded",
		log.FieldCount, len(t.transactions),
		"currency", t.settings.Currency,
		"theme", t.settings.Theme)
}

func (t *Tracker) storageFailure(ctx context.Context, op string, err error) {
	t.metrics.RecordStorageFailure(op)
	t.events.LogError(ctx, "Storage failure ignored", err, op, nil)
}

// Version increases with every applied mutation.
func (t *Tracker) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Len returns the size of the whole collection.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.transactions)
}

// Get returns the transaction with id.
func (t *Tracker) Get(id string) (core.Transaction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexOf(id); i >= 0 {
		return t.transactions[i], true
	}
	return core.Transaction{}, false
}

// Transactions returns a copy of the whole collection in stored order.
func (t *Tracker) Transactions() []core.Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.Transaction{}, t.transactions...)
}

func (t *Tracker) indexOf(id string) int {
	for i, tx := range t.transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// Criteria returns the active filter.
func (t *Tracker) Criteria() query.Criteria {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.criteria
}

// SetCriteria replaces the active filter. A change of criteria returns the
// table to page 1; setting the same criteria again keeps the page.
func (t *Tracker) SetCriteria(c query.Criteria) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c = c.Normalize()
	if c.Equal(t.criteria) {
		return false
	}
	t.criteria = c
	t.pager.Reset()
	return true
}

// NextPage advances; the next render clamps to the last page.
func (t *Tracker) NextPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pager.Next()
}

// PrevPage steps back unless on page 1.
func (t *Tracker) PrevPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pager.Prev()
}

// GoToPage jumps to page n.
func (t *Tracker) GoToPage(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pager.GoTo(n)
}

// CurrentPage returns the remembered page number.
func (t *Tracker) CurrentPage() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Current()
}

func (t *Tracker) today() core.Date {
	return core.DateOf(t.now())
}

func (t *Tracker) translate(tr Translator, key string, params i18n.Params) string {
	if tr == nil {
		tr = t.translator
	}
	if tr == nil {
		return key
	}
	return tr.T(key, params)
}
