package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ConversionStatus string

const (
	ConversionStatusActive   ConversionStatus = "ACTIVE"
	ConversionStatusUnlocked ConversionStatus = "UNLOCKED"
)

func (s ConversionStatus) IsValid() bool {
	return s == ConversionStatusActive || s == ConversionStatusUnlocked
}

// LockedConversion holds SourceAmount converted at a fixed ExchangeRate, minus Fee,
// until UnlockDate. It moves from ACTIVE to UNLOCKED exactly once.
type LockedConversion struct {
	ID               string           `json:"id"`
	AccountID        string           `json:"account_id"`
	SourceWalletID   string           `json:"source_wallet_id"`
	TargetWalletID   string           `json:"target_wallet_id"`
	SourceCurrency   string           `json:"source_currency"`
	TargetCurrency   string           `json:"target_currency"`
	SourceAmount     decimal.Decimal  `json:"source_amount"`
	TargetAmount     decimal.Decimal  `json:"target_amount"`
	ExchangeRate     decimal.Decimal  `json:"exchange_rate"`
	Fee              decimal.Decimal  `json:"fee"`
	FeePercentage    decimal.Decimal  `json:"fee_percentage"`
	Status           ConversionStatus `json:"status"`
	LockDate         time.Time        `json:"lock_date"`
	UnlockDate       time.Time        `json:"unlock_date"`
	ActualUnlockDate *time.Time       `json:"actual_unlock_date"`
	UpdatedAt        time.Time        `json:"updated_at"`

	SourceWallet *Wallet `json:"source_wallet,omitempty"`
	TargetWallet *Wallet `json:"target_wallet,omitempty"`
}

// Matured reports whether the conversion may be released at t.
func (c *LockedConversion) Matured(t time.Time) bool {
	return !t.Before(c.UnlockDate)
}

type ConversionStore interface {
	// Create debits source by conversion.SourceAmount, inserts the conversion and
	// records the LOCK_FROM transaction in one database transaction. The source
	// balance is refreshed in place. It fails with store.ErrOptimisticLock when
	// the balance is lower than the amount.
	Create(ctx context.Context, conversion *LockedConversion, source *Wallet, transaction *Transaction) error
	// Unlock flips an ACTIVE conversion to UNLOCKED using its ActualUnlockDate and
	// UpdatedAt, credits target and records the UNLOCK_TO transaction in one
	// database transaction. It fails with store.ErrOptimisticLock when the stored
	// row is no longer ACTIVE.
	Unlock(ctx context.Context, conversion *LockedConversion, target *Wallet, transaction *Transaction) error
	Find(ctx context.Context, id string) (*LockedConversion, error)
	ListAccount(ctx context.Context, accountID string, status ConversionStatus) ([]*LockedConversion, error)
	// ListUpdated pages through conversions ordered by (UpdatedAt, ID), starting
	// after the given position.
	ListUpdated(ctx context.Context, since time.Time, afterID string, limit int) ([]*LockedConversion, error)
}

type CreateConversionInput struct {
	SourceWalletID   string          `json:"source_wallet_id"`
	TargetWalletID   string          `json:"target_wallet_id"`
	SourceAmount     decimal.Decimal `json:"source_amount"`
	LockPeriodMonths int             `json:"lock_period_months"`
}

type ConversionDetail struct {
	LockedConversion *LockedConversion `json:"locked_conversion"`
	CurrentRate      *decimal.Decimal  `json:"current_rate"`
	RateDifference   *decimal.Decimal  `json:"rate_difference"`
	CanUnlock        bool              `json:"can_unlock"`
}

type UnlockResult struct {
	LockedConversion *LockedConversion `json:"locked_conversion"`
	TargetWallet     *Wallet           `json:"target_wallet"`
}

type ConversionService interface {
	Create(ctx context.Context, accountID string, input CreateConversionInput) (*LockedConversion, error)
	Inspect(ctx context.Context, accountID, id string) (*ConversionDetail, error)
	Unlock(ctx context.Context, accountID, id string) (*UnlockResult, error)
	List(ctx context.Context, accountID string, status ConversionStatus) ([]*LockedConversion, error)
}
