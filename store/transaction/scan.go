package transaction

import (
	"database/sql"

	"github.com/pandodao/lock-wallet/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"transactions.id",
	"transactions.created_at",
	"transactions.type",
	"transactions.amount",
	"transactions.currency",
	"transactions.wallet_id",
	"transactions.source_wallet_id",
	"transactions.exchange_rate",
	"transactions.locked_conversion_id",
}

func scanTransaction(scanner scanner, transaction *core.Transaction) error {
	var (
		sourceWalletID     sql.NullString
		lockedConversionID sql.NullString
	)

	if err := scanner.Scan(
		&transaction.ID,
		&transaction.CreatedAt,
		&transaction.Type,
		&transaction.Amount,
		&transaction.Currency,
		&transaction.WalletID,
		&sourceWalletID,
		&transaction.ExchangeRate,
		&lockedConversionID,
	); err != nil {
		return err
	}

	transaction.SourceWalletID = sourceWalletID.String
	transaction.LockedConversionID = lockedConversionID.String
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
