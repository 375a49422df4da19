package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeImport      TransactionType = "IMPORT"
	TransactionTypeConvertFrom TransactionType = "CONVERT_FROM"
	TransactionTypeConvertTo   TransactionType = "CONVERT_TO"
	TransactionTypeLockFrom    TransactionType = "LOCK_FROM"
	TransactionTypeLockTo      TransactionType = "LOCK_TO"
	TransactionTypeUnlockFrom  TransactionType = "UNLOCK_FROM"
	TransactionTypeUnlockTo    TransactionType = "UNLOCK_TO"
)

// Transaction is an append-only ledger entry. A negative Amount debits WalletID,
// a positive one credits it.
type Transaction struct {
	ID                 string              `json:"id"`
	CreatedAt          time.Time           `json:"created_at"`
	Type               TransactionType     `json:"type"`
	Amount             decimal.Decimal     `json:"amount"`
	Currency           string              `json:"currency"`
	WalletID           string              `json:"wallet_id"`
	SourceWalletID     string              `json:"source_wallet_id,omitempty"`
	ExchangeRate       decimal.NullDecimal `json:"exchange_rate"`
	LockedConversionID string              `json:"locked_conversion_id,omitempty"`

	// LockedConversion is attached for display only.
	LockedConversion *LockedConversion `json:"locked_conversion,omitempty"`
}

type TransactionStore interface {
	// CreateIfMissing inserts the transaction unless one with the same
	// locked conversion id and type exists. It reports whether a row was written.
	CreateIfMissing(ctx context.Context, transaction *Transaction) (bool, error)
	ListWallet(ctx context.Context, walletID string, limit int) ([]*Transaction, error)
	ListAccount(ctx context.Context, accountID string, limit int) ([]*Transaction, error)
}

// LedgerService is the read side of the transaction log.
type LedgerService interface {
	// ListTransactions returns the caller's transactions newest first. With
	// a wallet id only that wallet is listed and it must belong to the caller.
	ListTransactions(ctx context.Context, accountID, walletID string, limit int) ([]*Transaction, error)
}
