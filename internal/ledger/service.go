package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/filter"
	"finledger/internal/grouping"
	"finledger/internal/log"
	"finledger/internal/query"
	"finledger/internal/transform"
)

const (
	ViewDefault         ViewMode = "default"
	ViewBankGrouped     ViewMode = "bankGrouped"
	ViewCategoryGrouped ViewMode = "categoryGrouped"
)

const (
	banksKey         = "banks"
	allCategoriesKey = "categories:all"
)

// ErrStore wraps every failure reported by the store. It is never returned
// for rejected input; see core.IsValidation.
var ErrStore = errors.New("ledger store failure")

var ErrInvalidViewMode = errors.New("view mode must be default, bankGrouped or categoryGrouped")

// Store is the narrow persistence surface the ledger needs.
type Store interface {
	ListTransactions(ctx context.Context, q query.Query) ([]core.TransactionRow, error)
	InsertTransaction(ctx context.Context, t core.NewTransaction) (int64, error)
	UpdateTransaction(ctx context.Context, u core.TransactionUpdate) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListBanks(ctx context.Context) ([]core.Bank, error)
	DeleteBank(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, typ *core.TransactionType) ([]core.Category, error)
	InsertCategory(ctx context.Context, name string, typ core.TransactionType) (int64, error)
}

type (
	ViewMode string

	// State is an immutable snapshot of the ledger view. Subscribers and
	// callers get copies; mutating them has no effect on the service.
	State struct {
		Filter       filter.Filter
		Transactions []core.TransformedTransaction
		Summary      core.Summary
		ViewMode     ViewMode
		Initialized  bool
	}

	// View is the current transaction list shaped for one view mode. Only
	// the field matching Mode is populated.
	View struct {
		Mode         ViewMode
		Transactions []core.TransformedTransaction
		Banks        []grouping.BankGroup
		Categories   []grouping.CategoryGroup
	}

	Options struct {
		Location  *time.Location
		Logger    *log.Logger
		CacheSize int
		CacheTTL  time.Duration
		Now       func() time.Time
	}

	// Service owns the view state. Every refresh runs the full pipeline
	// (query, transform, summarize) under one lock and publishes the result
	// in a single swap, so readers never see a half-built state.
	Service struct {
		store  Store
		loc    *time.Location
		now    func() time.Time
		logger *log.Logger

		banks      cache.Cache[[]core.Bank]
		categories cache.Cache[[]core.Category]

		pipeline sync.Mutex // serializes store access and refreshes

		mu          sync.RWMutex
		state       State
		subscribers map[int]func(State)
		nextSub     int
	}
)

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewDefault:
		return ViewDefault, nil
	case ViewBankGrouped, ViewCategoryGrouped:
		return ViewMode(s), nil
	}
	return "", &core.ValidationError{Field: "view", Err: ErrInvalidViewMode}
}

func NewService(store Store, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		store:       store,
		loc:         opts.Location,
		now:         opts.Now,
		logger:      opts.Logger.WithComponent(log.ComponentLedger),
		banks:       cache.NewLRUCache[[]core.Bank](opts.CacheSize, opts.CacheTTL).WithClock(opts.Now),
		categories:  cache.NewLRUCache[[]core.Category](opts.CacheSize, opts.CacheTTL).WithClock(opts.Now),
		subscribers: make(map[int]func(State)),
	}
	s.state = State{Filter: filter.Default(s.now(), s.loc), ViewMode: ViewDefault}
	return s
}

// Location is the reference timezone used for date boundaries.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the service clock in the reference timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Init marks the store as ready and loads the default view.
func (s *Service) Init(ctx context.Context) error {
	return s.exclusive(func() error {
		return s.refreshLocked(ctx, filter.Default(s.now(), s.loc), log.OpSetup)
	})
}

// Teardown forgets all view state. Call it after the store file is removed.
func (s *Service) Teardown(ctx context.Context) {
	_ = s.exclusive(func() error {
		s.banks.Clear()
		s.categories.Clear()

		s.mu.Lock()
		s.state = State{Filter: filter.Default(s.now(), s.loc), ViewMode: ViewDefault}
		s.mu.Unlock()

		s.logger.InfoContext(ctx, "Ledger view cleared", log.FieldOperation, log.OpTeardown)
		return nil
	})
}

// Refresh re-runs the pipeline with the current filter.
func (s *Service) Refresh(ctx context.Context) error {
	return s.exclusive(func() error {
		return s.refreshLocked(ctx, s.Filter(), log.OpRefresh)
	})
}

// ApplyFilter replaces the active filter wholesale and refreshes.
func (s *Service) ApplyFilter(ctx context.Context, f filter.Filter) error {
	if f.Order == "" {
		f.Order = filter.Descending
	}
	if f.Order != filter.Ascending && f.Order != filter.Descending {
		return &core.ValidationError{Field: "order", Err: filter.ErrInvalidOrder}
	}

	return s.exclusive(func() error {
		return s.refreshLocked(ctx, f, log.OpFilter)
	})
}

// ApplyParams builds a filter from raw form input in the reference
// timezone and applies it.
func (s *Service) ApplyParams(ctx context.Context, p filter.Params) error {
	f, err := filter.New(p, s.now(), s.loc)
	if err != nil {
		return err
	}
	return s.ApplyFilter(ctx, f)
}

// ResetFilter restores the default filter and refreshes.
func (s *Service) ResetFilter(ctx context.Context) error {
	return s.exclusive(func() error {
		return s.refreshLocked(ctx, filter.Default(s.now(), s.loc), log.OpFilter)
	})
}

func (s *Service) InsertTransaction(ctx context.Context, t core.NewTransaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	t.Amount = t.Amount.Round(core.AmountPlaces)

	var id int64
	err := s.exclusive(func() error {
		fields := log.NewFields().WithTransaction(0, core.FormatAmount(t.Amount), t.Type.String(), t.BankID, t.CategoryID)
		var err error
		id, err = s.store.InsertTransaction(ctx, t)
		if err != nil {
			s.logger.LogError(ctx, "Failed to insert transaction", err, log.ErrorTypeDatabase, log.OpCreate, fields)
			return storeError("insert transaction", err)
		}
		s.logger.InfoContext(ctx, "Transaction inserted", fields.With(log.FieldTransactionID, id).ToSlice()...)

		return s.refreshLocked(ctx, filter.Default(s.now(), s.loc), log.OpCreate)
	})
	return id, err
}

// UpdateTransaction replaces every editable field of an existing transaction.
func (s *Service) UpdateTransaction(ctx context.Context, u core.TransactionUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.Amount = u.Amount.Round(core.AmountPlaces)

	return s.exclusive(func() error {
		fields := log.NewFields().WithTransaction(u.ID, core.FormatAmount(u.Amount), u.Type.String(), u.BankID, u.CategoryID)
		if err := s.store.UpdateTransaction(ctx, u); err != nil {
			s.logger.LogError(ctx, "Failed to update transaction", err, log.ErrorTypeDatabase, log.OpUpdate, fields)
			return storeError("update transaction", err)
		}
		s.logger.InfoContext(ctx, "Transaction updated", fields.ToSlice()...)

		return s.refreshLocked(ctx, filter.Default(s.now(), s.loc), log.OpUpdate)
	})
}

func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	if id <= 0 {
		return &core.ValidationError{Field: "id", Err: core.ErrMissingID}
	}

	return s.exclusive(func() error {
		if err := s.store.DeleteTransaction(ctx, id); err != nil {
			s.logger.LogError(ctx, "Failed to delete transaction", err, log.ErrorTypeDatabase, log.OpDelete,
				log.NewFields().With(log.FieldTransactionID, id))
			return storeError("delete transaction", err)
		}
		s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)

		return s.refreshLocked(ctx, filter.Default(s.now(), s.loc), log.OpDelete)
	})
}

// DeleteBank removes a bank. Its transactions survive with no bank and
// show up in the Unassigned group.
func (s *Service) DeleteBank(ctx context.Context, id int64) error {
	if id <= 0 {
		return &core.ValidationError{Field: "bank_id", Err: filter.ErrInvalidReference}
	}

	return s.exclusive(func() error {
		if err := s.store.DeleteBank(ctx, id); err != nil {
			s.logger.LogError(ctx, "Failed to delete bank", err, log.ErrorTypeDatabase, log.OpDelete,
				log.NewFields().With(log.FieldBankID, id))
			return storeError("delete bank", err)
		}
		s.banks.Delete(banksKey)
		s.logger.InfoContext(ctx, "Bank deleted", log.FieldBankID, id)

		return s.refreshLocked(ctx, s.Filter(), log.OpDelete)
	})
}

func (s *Service) Banks(ctx context.Context) ([]core.Bank, error) {
	if banks, ok := s.banks.Get(banksKey); ok {
		return banks, nil
	}

	s.pipeline.Lock()
	defer s.pipeline.Unlock()

	banks, err := s.store.ListBanks(ctx)
	if err != nil {
		s.logger.LogError(ctx, "Failed to list banks", err, log.ErrorTypeDatabase, log.OpList, nil)
		return nil, storeError("list banks", err)
	}
	s.banks.Set(banksKey, banks)
	return banks, nil
}

// Categories lists categories, optionally only those of one type.
func (s *Service) Categories(ctx context.Context, typ *core.TransactionType) ([]core.Category, error) {
	key := allCategoriesKey
	if typ != nil {
		if !typ.Valid() {
			return nil, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
		}
		key = "categories:" + typ.String()
	}
	if categories, ok := s.categories.Get(key); ok {
		return categories, nil
	}

	s.pipeline.Lock()
	defer s.pipeline.Unlock()

	categories, err := s.store.ListCategories(ctx, typ)
	if err != nil {
		s.logger.LogError(ctx, "Failed to list categories", err, log.ErrorTypeDatabase, log.OpList, nil)
		return nil, storeError("list categories", err)
	}
	s.categories.Set(key, categories)
	return categories, nil
}

func (s *Service) InsertCategory(ctx context.Context, name string, typ core.TransactionType) (int64, error) {
	if err := core.ValidateCategoryName(name); err != nil {
		return 0, err
	}
	if !typ.Valid() {
		return 0, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}

	s.pipeline.Lock()
	defer s.pipeline.Unlock()

	id, err := s.store.InsertCategory(ctx, name, typ)
	if err != nil {
		s.logger.LogError(ctx, "Failed to insert category", err, log.ErrorTypeDatabase, log.OpCreate,
			log.NewFields().With("category_name", name))
		return 0, storeError("insert category", err)
	}
	s.categories.Clear()
	s.logger.InfoContext(ctx, "Category inserted", log.FieldCategoryID, id, log.FieldType, typ.String())
	return id, nil
}

// SetViewMode switches how the current list is presented. No store access.
func (s *Service) SetViewMode(mode ViewMode) error {
	if _, err := ParseViewMode(string(mode)); err != nil {
		return err
	}
	if mode == "" {
		mode = ViewDefault
	}

	s.mu.Lock()
	s.state.ViewMode = mode
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Service) Filter() filter.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Filter.Clone()
}

func (s *Service) Summary() core.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Summary
}

// Grouped shapes the current transaction list for mode. Grouping is pure, so
// calling it repeatedly on the same state yields equal results.
func (s *Service) Grouped(mode ViewMode) (View, error) {
	if _, err := ParseViewMode(string(mode)); err != nil {
		return View{}, err
	}
	if mode == "" {
		mode = ViewDefault
	}

	s.mu.RLock()
	txs := core.CloneTransactions(s.state.Transactions)
	s.mu.RUnlock()

	v := View{Mode: mode}
	switch mode {
	case ViewBankGrouped:
		v.Banks = grouping.ByBank(txs)
	case ViewCategoryGrouped:
		v.Categories = grouping.ByCategory(txs)
	default:
		v.Transactions = txs
	}
	return v, nil
}

// Current is Grouped for the active view mode.
func (s *Service) Current() View {
	s.mu.RLock()
	mode := s.state.ViewMode
	s.mu.RUnlock()

	v, _ := s.Grouped(mode)
	return v
}

// Subscribe registers fn to receive every published state. The returned
// function unregisters it.
func (s *Service) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// exclusive runs fn while holding s.pipeline. Subscribers are notified only
// after the lock is released, and only when fn succeeded, so a subscriber
// may call back into s.
func (s *Service) exclusive(fn func() error) error {
	s.pipeline.Lock()
	err := fn()
	s.pipeline.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// refreshLocked runs query, transform and summarize for f and swaps the
// result into the state. On failure the previous state, filter included, is
// kept. The caller must hold s.pipeline and notify after releasing it.
func (s *Service) refreshLocked(ctx context.Context, f filter.Filter, op string) error {
	start := time.Now()

	rows, err := s.store.ListTransactions(ctx, query.Transactions(f))
	if err != nil {
		s.logger.LogError(ctx, "Failed to refresh ledger view", err, log.ErrorTypeDatabase, op,
			log.NewFields().With(log.FieldFilterTitle, f.Title))
		return storeError("refresh", err)
	}

	txs := transform.NormalizeAll(rows)
	summary := transform.Summarize(txs)

	s.mu.Lock()
	s.state.Filter = f
	s.state.Transactions = txs
	s.state.Summary = summary
	s.state.Initialized = true
	mode := s.state.ViewMode
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Ledger view refreshed", log.NewFields().
		WithOperation(op).
		WithRefresh(len(txs), string(mode), f.Title, time.Since(start).Milliseconds()).
		ToSlice()...)

	return nil
}

func (s *Service) notify() {
	s.mu.RLock()
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (st State) clone() State {
	st.Filter = st.Filter.Clone()
	st.Transactions = core.CloneTransactions(st.Transactions)
	return st
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
