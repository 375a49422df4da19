package conversion

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/pandodao/lock-wallet/store/transaction"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.ConversionStore {
	return &conversionStore{db: db}
}

type conversionStore struct {
	db *nap.DB
}

func insert(ctx context.Context, r sq.BaseRunner, conversion *core.LockedConversion) error {
	b := store.Builder.Insert("locked_conversions").
		Columns(scanColumns...).
		Values(
			conversion.ID,
			conversion.AccountID,
			conversion.SourceWalletID,
			conversion.TargetWalletID,
			conversion.SourceCurrency,
			conversion.TargetCurrency,
			conversion.SourceAmount,
			conversion.TargetAmount,
			conversion.ExchangeRate,
			conversion.Fee,
			conversion.FeePercentage,
			conversion.Status,
			conversion.LockDate,
			conversion.UnlockDate,
			conversion.ActualUnlockDate,
			conversion.UpdatedAt,
		)

	_, err := b.RunWith(r).ExecContext(ctx)
	return err
}

// release is a compare-and-swap on status: only one caller can move a given
// conversion out of ACTIVE.
func release(ctx context.Context, r sq.BaseRunner, conversion *core.LockedConversion) error {
	b := store.Builder.Update("locked_conversions").
		Set("status", core.ConversionStatusUnlocked).
		Set("actual_unlock_date", conversion.ActualUnlockDate).
		Set("updated_at", conversion.UpdatedAt).
		Where("id = ? AND status = ?", conversion.ID, core.ConversionStatusActive)

	result, err := b.RunWith(r).ExecContext(ctx)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return store.ErrOptimisticLock
	}

	return nil
}

func (s *conversionStore) begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.Master().BeginTx(ctx, nil)
}

func (s *conversionStore) Create(ctx context.Context, conversion *core.LockedConversion, source *core.Wallet, t *core.Transaction) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if err := debit(ctx, tx, source, conversion.SourceAmount, conversion.LockDate); err != nil {
		return err
	}

	if err := insert(ctx, tx, conversion); err != nil {
		return err
	}

	if _, err := transaction.Insert(ctx, tx, t); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *conversionStore) Unlock(ctx context.Context, conversion *core.LockedConversion, target *core.Wallet, t *core.Transaction) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if err := release(ctx, tx, conversion); err != nil {
		return err
	}

	if err := credit(ctx, tx, target, conversion.TargetAmount, conversion.UpdatedAt); err != nil {
		return err
	}

	if _, err := transaction.Insert(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	conversion.Status = core.ConversionStatusUnlocked
	return nil
}

func (s *conversionStore) Find(ctx context.Context, id string) (*core.LockedConversion, error) {
	b := store.Builder.Select(scanColumns...).
		From("locked_conversions").
		Where("id = ?", id)
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var conversion core.LockedConversion
	if err := scanConversion(row, &conversion); err != nil {
		return nil, err
	}

	return &conversion, nil
}

func (s *conversionStore) ListAccount(ctx context.Context, accountID string, status core.ConversionStatus) ([]*core.LockedConversion, error) {
	b := store.Builder.Select(scanColumns...).
		From("locked_conversions").
		Where("account_id = ?", accountID).
		OrderBy("lock_date DESC")

	if status != "" {
		b = b.Where("status = ?", status)
	}

	return s.list(ctx, b)
}

func listUpdatedQuery(since time.Time, afterID string, limit int) sq.SelectBuilder {
	return store.Builder.Select(scanColumns...).
		From("locked_conversions").
		Where("(updated_at, id) > (?, ?)", since, afterID).
		OrderBy("updated_at", "id").
		Limit(uint64(limit))
}

func (s *conversionStore) ListUpdated(ctx context.Context, since time.Time, afterID string, limit int) ([]*core.LockedConversion, error) {
	return s.list(ctx, listUpdatedQuery(since, afterID, limit))
}

func (s *conversionStore) list(ctx context.Context, b sq.SelectBuilder) ([]*core.LockedConversion, error) {
	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var conversions []*core.LockedConversion
	for rows.Next() {
		var conversion core.LockedConversion
		if err := scanConversion(rows, &conversion); err != nil {
			return nil, err
		}

		conversions = append(conversions, &conversion)
	}

	return conversions, rows.Err()
}
