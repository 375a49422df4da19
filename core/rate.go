package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type RateService interface {
	// GetRate returns the spot rate converting one unit of source into target.
	GetRate(ctx context.Context, source, target string) (decimal.Decimal, error)
}
