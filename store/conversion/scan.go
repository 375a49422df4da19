package conversion

import (
	"database/sql"

	"github.com/pandodao/lock-wallet/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"account_id",
	"source_wallet_id",
	"target_wallet_id",
	"source_currency",
	"target_currency",
	"source_amount",
	"target_amount",
	"exchange_rate",
	"fee",
	"fee_percentage",
	"status",
	"lock_date",
	"unlock_date",
	"actual_unlock_date",
	"updated_at",
}

func scanConversion(scanner scanner, conversion *core.LockedConversion) error {
	var actualUnlockDate sql.NullTime

	if err := scanner.Scan(
		&conversion.ID,
		&conversion.AccountID,
		&conversion.SourceWalletID,
		&conversion.TargetWalletID,
		&conversion.SourceCurrency,
		&conversion.TargetCurrency,
		&conversion.SourceAmount,
		&conversion.TargetAmount,
		&conversion.ExchangeRate,
		&conversion.Fee,
		&conversion.FeePercentage,
		&conversion.Status,
		&conversion.LockDate,
		&conversion.UnlockDate,
		&actualUnlockDate,
		&conversion.UpdatedAt,
	); err != nil {
		return err
	}

	if actualUnlockDate.Valid {
		t := actualUnlockDate.Time
		conversion.ActualUnlockDate = &t
	}

	return nil
}
