package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type WalletStore interface {
	Find(ctx context.Context, id string) (*Wallet, error)
	ListAccount(ctx context.Context, accountID string) ([]*Wallet, error)
}
