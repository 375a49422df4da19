package transaction

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.TransactionStore {
	return &transactionStore{db: db}
}

type transactionStore struct {
	db *nap.DB
}

// Insert writes the transaction with r, ignoring a conflict on
// (locked_conversion_id, type). It reports whether a row was written.
func Insert(ctx context.Context, r sq.BaseRunner, transaction *core.Transaction) (bool, error) {
	b := store.Builder.Insert("transactions").
		Columns("id", "created_at", "type", "amount", "currency", "wallet_id", "source_wallet_id", "exchange_rate", "locked_conversion_id").
		Values(
			transaction.ID,
			transaction.CreatedAt,
			transaction.Type,
			transaction.Amount,
			transaction.Currency,
			transaction.WalletID,
			nullString(transaction.SourceWalletID),
			transaction.ExchangeRate,
			nullString(transaction.LockedConversionID),
		).
		Suffix("ON CONFLICT DO NOTHING")

	result, err := b.RunWith(r).ExecContext(ctx)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *transactionStore) CreateIfMissing(ctx context.Context, transaction *core.Transaction) (bool, error) {
	return Insert(ctx, s.db, transaction)
}

func (s *transactionStore) ListWallet(ctx context.Context, walletID string, limit int) ([]*core.Transaction, error) {
	b := store.Builder.Select(scanColumns...).
		From("transactions").
		Where("transactions.wallet_id = ?", walletID).
		OrderBy("transactions.created_at DESC").
		Limit(uint64(limit))

	return s.list(ctx, b)
}

func (s *transactionStore) ListAccount(ctx context.Context, accountID string, limit int) ([]*core.Transaction, error) {
	b := store.Builder.Select(scanColumns...).
		From("transactions").
		Join("wallets ON wallets.id = transactions.wallet_id").
		Where("wallets.account_id = ?", accountID).
		OrderBy("transactions.created_at DESC").
		Limit(uint64(limit))

	return s.list(ctx, b)
}

func (s *transactionStore) list(ctx context.Context, b sq.SelectBuilder) ([]*core.Transaction, error) {
	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var transactions []*core.Transaction
	for rows.Next() {
		var transaction core.Transaction
		if err := scanTransaction(rows, &transaction); err != nil {
			return nil, err
		}

		transactions = append(transactions, &transaction)
	}

	return transactions, rows.Err()
}
