package conversion

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/shopspring/decimal"
)

// debit lowers the wallet balance by amount unless that would take it below zero.
func debit(ctx context.Context, r sq.BaseRunner, wallet *core.Wallet, amount decimal.Decimal, at time.Time) error {
	b := store.Builder.Update("wallets").
		Set("balance", sq.Expr("balance - ?", amount)).
		Set("updated_at", at).
		Where("id = ? AND balance >= ?", wallet.ID, amount).
		Suffix("RETURNING balance, updated_at")

	err := b.RunWith(r).QueryRowContext(ctx).Scan(&wallet.Balance, &wallet.UpdatedAt)
	if store.IsErrNotFound(err) {
		return store.ErrOptimisticLock
	}

	return err
}

func credit(ctx context.Context, r sq.BaseRunner, wallet *core.Wallet, amount decimal.Decimal, at time.Time) error {
	b := store.Builder.Update("wallets").
		Set("balance", sq.Expr("balance + ?", amount)).
		Set("updated_at", at).
		Where("id = ?", wallet.ID).
		Suffix("RETURNING balance, updated_at")

	return b.RunWith(r).QueryRowContext(ctx).Scan(&wallet.Balance, &wallet.UpdatedAt)
}
