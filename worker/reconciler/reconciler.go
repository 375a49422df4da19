package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pandodao/lock-wallet/core"
	"golang.org/x/sync/errgroup"
)

const propertyReconcileCursor = "reconcile_cursor"

type Config struct {
	Batch    int           `valid:"required"`
	Interval time.Duration `valid:"required"`
	// Settle is how far behind the clock the cursor stays.
	Settle time.Duration `valid:"-"`
}

func New(
	conversions core.ConversionStore,
	transactions core.TransactionStore,
	properties core.PropertyStore,
	clock clockwork.Clock,
	logger *slog.Logger,
	cfg Config,
) *Reconciler {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Reconciler{
		conversions:  conversions,
		transactions: transactions,
		properties:   properties,
		clock:        clock,
		logger:       logger.With("worker", "reconciler"),
		cfg:          cfg,
	}
}

// Reconciler replays the LOCK_FROM and UNLOCK_TO transactions a locked
// conversion implies, inserting whichever are missing.
type Reconciler struct {
	conversions  core.ConversionStore
	transactions core.TransactionStore
	properties   core.PropertyStore
	clock        clockwork.Clock
	logger       *slog.Logger
	cfg          Config
}

type cursor struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

func (w *Reconciler) Run(ctx context.Context) error {
	w.logger.Info("reconciler start")

	for {
		dur := w.cfg.Interval
		if more, _, err := w.pass(ctx); err == nil && more {
			dur = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.clock.After(dur):
		}
	}
}

// RunOnce reconciles everything updated since the stored cursor and returns
// the number of transactions written.
func (w *Reconciler) RunOnce(ctx context.Context) (int, error) {
	var total int
	for {
		more, written, err := w.pass(ctx)
		if err != nil {
			return total, err
		}

		total += written
		if !more {
			return total, nil
		}
	}
}

// pass handles one batch and reports whether another batch is ready along
// with the number of transactions written.
//
// updated_at comes from the application clock, so a row can commit after
// rows stamped later than it. The cursor therefore only moves over rows older
// than the settle window; younger rows are reconciled but listed again.
func (w *Reconciler) pass(ctx context.Context) (bool, int, error) {
	var c cursor
	if err := w.properties.Get(ctx, propertyReconcileCursor, &c); err != nil {
		w.logger.Error("properties.Get", "err", err)
		return false, 0, err
	}

	conversions, err := w.conversions.ListUpdated(ctx, c.UpdatedAt, c.ID, w.cfg.Batch)
	if err != nil {
		w.logger.Error("conversions.ListUpdated", "err", err)
		return false, 0, err
	}

	if len(conversions) == 0 {
		return false, 0, nil
	}

	written := make([]int, len(conversions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, conversion := range conversions {
		i, conversion := i, conversion
		g.Go(func() error {
			n, err := w.reconcile(gctx, conversion)
			written[i] = n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return false, 0, err
	}

	var total int
	for _, n := range written {
		total += n
	}

	if total > 0 {
		w.logger.Info("transactions restored", "count", total)
	}

	horizon := w.clock.Now().Add(-w.cfg.Settle)
	settled := -1
	for i, conversion := range conversions {
		if conversion.UpdatedAt.After(horizon) {
			break
		}

		settled = i
	}

	if settled < 0 {
		return false, total, nil
	}

	next := cursor{UpdatedAt: conversions[settled].UpdatedAt, ID: conversions[settled].ID}
	if err := w.properties.Set(ctx, propertyReconcileCursor, next); err != nil {
		w.logger.Error("properties.Set", "err", err)
		return false, 0, err
	}

	more := len(conversions) == w.cfg.Batch && settled == len(conversions)-1
	return more, total, nil
}

func (w *Reconciler) reconcile(ctx context.Context, conversion *core.LockedConversion) (int, error) {
	var written int
	for _, t := range derive(conversion) {
		ok, err := w.transactions.CreateIfMissing(ctx, t)
		if err != nil {
			w.logger.Error("transactions.CreateIfMissing", "conversion", conversion.ID, "type", t.Type, "err", err)
			return written, err
		}

		if ok {
			written++
		}
	}

	return written, nil
}

// derive builds the transactions implied by the conversion's state. Ids are
// name based so replays produce the same rows.
func derive(conversion *core.LockedConversion) []*core.Transaction {
	transactions := []*core.Transaction{{
		ID:                 transactionID(conversion.ID, core.TransactionTypeLockFrom),
		CreatedAt:          conversion.LockDate,
		Type:               core.TransactionTypeLockFrom,
		Amount:             conversion.SourceAmount.Neg(),
		Currency:           conversion.SourceCurrency,
		WalletID:           conversion.SourceWalletID,
		LockedConversionID: conversion.ID,
	}}

	if conversion.Status == core.ConversionStatusUnlocked {
		at := conversion.UpdatedAt
		if conversion.ActualUnlockDate != nil {
			at = *conversion.ActualUnlockDate
		}

		transactions = append(transactions, &core.Transaction{
			ID:                 transactionID(conversion.ID, core.TransactionTypeUnlockTo),
			CreatedAt:          at,
			Type:               core.TransactionTypeUnlockTo,
			Amount:             conversion.TargetAmount,
			Currency:           conversion.TargetCurrency,
			WalletID:           conversion.TargetWalletID,
			LockedConversionID: conversion.ID,
		})
	}

	return transactions
}

func transactionID(conversionID string, typ core.TransactionType) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(conversionID+":"+string(typ))).String()
}
