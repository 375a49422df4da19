package wallet

import (
	"context"

	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.WalletStore {
	return &walletStore{db: db}
}

type walletStore struct {
	db *nap.DB
}

var columns = []string{"id", "account_id", "name", "currency", "balance", "created_at", "updated_at"}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWallet(scanner scanner, wallet *core.Wallet) error {
	return scanner.Scan(
		&wallet.ID,
		&wallet.AccountID,
		&wallet.Name,
		&wallet.Currency,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
}

func (s *walletStore) Find(ctx context.Context, id string) (*core.Wallet, error) {
	b := store.Builder.Select(columns...).From("wallets").Where("id = ?", id)
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var wallet core.Wallet
	if err := scanWallet(row, &wallet); err != nil {
		return nil, err
	}

	return &wallet, nil
}

func (s *walletStore) ListAccount(ctx context.Context, accountID string) ([]*core.Wallet, error) {
	b := store.Builder.Select(columns...).
		From("wallets").
		Where("account_id = ?", accountID).
		OrderBy("created_at")

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var wallets []*core.Wallet
	for rows.Next() {
		var wallet core.Wallet
		if err := scanWallet(rows, &wallet); err != nil {
			return nil, err
		}

		wallets = append(wallets, &wallet)
	}

	return wallets, rows.Err()
}
