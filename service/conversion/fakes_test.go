package conversion

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/shopspring/decimal"
)

// ledger is an in-memory stand-in for the postgres stores with the same
// all-or-nothing and compare-and-swap behaviour.
type ledger struct {
	mux          sync.Mutex
	wallets      map[string]*core.Wallet
	conversions  map[string]*core.LockedConversion
	transactions []*core.Transaction
	failWrites   error
}

func newLedger(wallets ...*core.Wallet) *ledger {
	l := &ledger{
		wallets:     map[string]*core.Wallet{},
		conversions: map[string]*core.LockedConversion{},
	}

	for _, w := range wallets {
		l.wallets[w.ID] = w
	}

	return l
}

func (l *ledger) balance(id string) decimal.Decimal {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.wallets[id].Balance
}

func (l *ledger) transactionsOf(id string) []*core.Transaction {
	l.mux.Lock()
	defer l.mux.Unlock()

	var out []*core.Transaction
	for _, t := range l.transactions {
		if t.LockedConversionID == id {
			out = append(out, t)
		}
	}

	return out
}

func (l *ledger) Find(ctx context.Context, id string) (*core.Wallet, error) {
	l.mux.Lock()
	defer l.mux.Unlock()

	w, ok := l.wallets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	cp := *w
	return &cp, nil
}

func (l *ledger) ListAccount(ctx context.Context, accountID string) ([]*core.Wallet, error) {
	l.mux.Lock()
	defer l.mux.Unlock()

	var out []*core.Wallet
	for _, w := range l.wallets {
		if w.AccountID == accountID {
			cp := *w
			out = append(out, &cp)
		}
	}

	return out, nil
}

type conversionStore struct {
	*ledger
}

func (s conversionStore) Create(ctx context.Context, conversion *core.LockedConversion, source *core.Wallet, t *core.Transaction) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.failWrites != nil {
		return s.failWrites
	}

	w := s.wallets[source.ID]
	if w.Balance.LessThan(conversion.SourceAmount) {
		return store.ErrOptimisticLock
	}

	w.Balance = w.Balance.Sub(conversion.SourceAmount)
	w.UpdatedAt = conversion.LockDate
	source.Balance, source.UpdatedAt = w.Balance, w.UpdatedAt

	cp := *conversion
	s.conversions[conversion.ID] = &cp
	s.transactions = append(s.transactions, t)
	return nil
}

func (s conversionStore) Unlock(ctx context.Context, conversion *core.LockedConversion, target *core.Wallet, t *core.Transaction) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.failWrites != nil {
		return s.failWrites
	}

	stored := s.conversions[conversion.ID]
	if stored.Status != core.ConversionStatusActive {
		return store.ErrOptimisticLock
	}

	w := s.wallets[target.ID]
	w.Balance = w.Balance.Add(conversion.TargetAmount)
	w.UpdatedAt = conversion.UpdatedAt
	target.Balance, target.UpdatedAt = w.Balance, w.UpdatedAt

	stored.Status = core.ConversionStatusUnlocked
	stored.ActualUnlockDate = conversion.ActualUnlockDate
	stored.UpdatedAt = conversion.UpdatedAt
	s.transactions = append(s.transactions, t)

	conversion.Status = core.ConversionStatusUnlocked
	return nil
}

func (s conversionStore) Find(ctx context.Context, id string) (*core.LockedConversion, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	c, ok := s.conversions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	cp := *c
	return &cp, nil
}

func (s conversionStore) ListAccount(ctx context.Context, accountID string, status core.ConversionStatus) ([]*core.LockedConversion, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	var out []*core.LockedConversion
	for _, c := range s.conversions {
		if c.AccountID == accountID && (status == "" || c.Status == status) {
			cp := *c
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].LockDate.After(out[j].LockDate) })
	return out, nil
}

func (s conversionStore) ListUpdated(ctx context.Context, since time.Time, afterID string, limit int) ([]*core.LockedConversion, error) {
	return nil, errors.New("not implemented")
}

type rateFunc func(ctx context.Context, source, target string) (decimal.Decimal, error)

func (f rateFunc) GetRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	return f(ctx, source, target)
}

func fixedRate(s string) rateFunc {
	rate := decimal.RequireFromString(s)
	return func(ctx context.Context, source, target string) (decimal.Decimal, error) {
		return rate, nil
	}
}
