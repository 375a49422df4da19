package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/zyedidia/generic/mapset"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

func New(
	wallets core.WalletStore,
	transactions core.TransactionStore,
	conversions core.ConversionStore,
	logger *slog.Logger,
) core.LedgerService {
	return &service{
		wallets:      wallets,
		transactions: transactions,
		conversions:  conversions,
		logger:       logger.With("service", "ledger"),
	}
}

type service struct {
	wallets      core.WalletStore
	transactions core.TransactionStore
	conversions  core.ConversionStore
	logger       *slog.Logger
}

func (s *service) ListTransactions(ctx context.Context, accountID, walletID string, limit int) ([]*core.Transaction, error) {
	if accountID == "" {
		return nil, fmt.Errorf("missing account: %w", core.ErrInvalidInput)
	}

	if limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", limit, core.ErrInvalidInput)
	}

	if limit == 0 {
		limit = DefaultLimit
	}

	limit = min(limit, MaxLimit)

	var (
		transactions []*core.Transaction
		err          error
	)

	if walletID != "" {
		wallet, err := s.wallets.Find(ctx, walletID)
		if err != nil {
			if store.IsErrNotFound(err) {
				return nil, fmt.Errorf("wallet %s: %w", walletID, core.ErrNotFound)
			}

			s.logger.Error("wallets.Find", "wallet", walletID, "err", err)
			return nil, err
		}

		if wallet.AccountID != accountID {
			return nil, fmt.Errorf("wallet %s: %w", walletID, core.ErrUnauthorized)
		}

		transactions, err = s.transactions.ListWallet(ctx, walletID, limit)
		if err != nil {
			s.logger.Error("transactions.ListWallet", "wallet", walletID, "err", err)
			return nil, err
		}
	} else {
		transactions, err = s.transactions.ListAccount(ctx, accountID, limit)
		if err != nil {
			s.logger.Error("transactions.ListAccount", "account", accountID, "err", err)
			return nil, err
		}
	}

	if err := s.attachConversions(ctx, transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}

// attachConversions loads each referenced conversion once.
func (s *service) attachConversions(ctx context.Context, transactions []*core.Transaction) error {
	ids := mapset.New[string]()
	for _, t := range transactions {
		if t.LockedConversionID != "" {
			ids.Put(t.LockedConversionID)
		}
	}

	if ids.Size() == 0 {
		return nil
	}

	conversions := make(map[string]*core.LockedConversion, ids.Size())
	var err error
	ids.Each(func(id string) {
		if err != nil {
			return
		}

		c, e := s.conversions.Find(ctx, id)
		switch {
		case e == nil:
			conversions[id] = c
		case store.IsErrNotFound(e):
		default:
			s.logger.Error("conversions.Find", "conversion", id, "err", e)
			err = e
		}
	})

	if err != nil {
		return err
	}

	for _, t := range transactions {
		t.LockedConversion = conversions[t.LockedConversionID]
	}

	return nil
}
