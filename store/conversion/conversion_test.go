package conversion

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/shopspring/decimal"
)

// runner records the statement it is given and answers with canned results.
type runner struct {
	query string
	args  []interface{}

	rowsAffected int64
	scan         func(dest ...interface{}) error
}

func (r *runner) Exec(query string, args ...interface{}) (sql.Result, error) {
	return r.ExecContext(context.Background(), query, args...)
}

func (r *runner) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (r *runner) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	r.query, r.args = query, args
	return driverResult(r.rowsAffected), nil
}

func (r *runner) QueryRowContext(ctx context.Context, query string, args ...interface{}) sq.RowScanner {
	r.query, r.args = query, args
	return rowFunc(r.scan)
}

type driverResult int64

func (n driverResult) LastInsertId() (int64, error) { return 0, nil }
func (n driverResult) RowsAffected() (int64, error) { return int64(n), nil }

type rowFunc func(dest ...interface{}) error

func (f rowFunc) Scan(dest ...interface{}) error { return f(dest...) }

var at = time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC)

func TestDebit(t *testing.T) {
	tests := []struct {
		name    string
		scan    func(dest ...interface{}) error
		want    error
		balance string
	}{
		{
			name: "funded",
			scan: func(dest ...interface{}) error {
				*dest[0].(*decimal.Decimal) = decimal.NewFromInt(900)
				*dest[1].(*time.Time) = at
				return nil
			},
			balance: "900",
		},
		{
			name:    "balance too low",
			scan:    func(dest ...interface{}) error { return sql.ErrNoRows },
			want:    store.ErrOptimisticLock,
			balance: "40",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &runner{scan: tt.scan}
			wallet := &core.Wallet{ID: "usd", Balance: decimal.NewFromInt(40)}
			amount := decimal.NewFromInt(100)

			err := debit(context.Background(), r, wallet, amount, at)
			if !errors.Is(err, tt.want) {
				t.Fatalf("debit() error = %v, want %v", err, tt.want)
			}

			want := "UPDATE wallets SET balance = balance - $1, updated_at = $2 WHERE id = $3 AND balance >= $4 RETURNING balance, updated_at"
			if r.query != want {
				t.Errorf("query = %q\nwant    %q", r.query, want)
			}

			if len(r.args) != 4 || r.args[2] != "usd" || !r.args[3].(decimal.Decimal).Equal(amount) {
				t.Errorf("unexpected args %v", r.args)
			}

			if !wallet.Balance.Equal(decimal.RequireFromString(tt.balance)) {
				t.Errorf("balance = %v, want %s", wallet.Balance, tt.balance)
			}
		})
	}
}

func TestCredit(t *testing.T) {
	r := &runner{scan: func(dest ...interface{}) error {
		*dest[0].(*decimal.Decimal) = decimal.RequireFromString("89.24")
		return nil
	}}

	wallet := &core.Wallet{ID: "eur"}
	if err := credit(context.Background(), r, wallet, decimal.RequireFromString("89.24"), at); err != nil {
		t.Fatal(err)
	}

	want := "UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3 RETURNING balance, updated_at"
	if r.query != want {
		t.Errorf("query = %q\nwant    %q", r.query, want)
	}

	if !wallet.Balance.Equal(decimal.RequireFromString("89.24")) {
		t.Errorf("balance = %v, want 89.24", wallet.Balance)
	}
}

func TestRelease(t *testing.T) {
	conversion := &core.LockedConversion{ID: "c1", ActualUnlockDate: &at, UpdatedAt: at}

	tests := []struct {
		name         string
		rowsAffected int64
		want         error
	}{
		{"first unlock", 1, nil},
		{"already released", 0, store.ErrOptimisticLock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &runner{rowsAffected: tt.rowsAffected}

			if err := release(context.Background(), r, conversion); !errors.Is(err, tt.want) {
				t.Fatalf("release() error = %v, want %v", err, tt.want)
			}

			want := "UPDATE locked_conversions SET status = $1, actual_unlock_date = $2, updated_at = $3 WHERE id = $4 AND status = $5"
			if r.query != want {
				t.Errorf("query = %q\nwant    %q", r.query, want)
			}

			if len(r.args) != 5 || r.args[0] != core.ConversionStatusUnlocked || r.args[4] != core.ConversionStatusActive {
				t.Errorf("unexpected args %v", r.args)
			}
		})
	}
}

func TestListUpdatedQuery(t *testing.T) {
	query, args, err := listUpdatedQuery(at, "c1", 100).ToSql()
	if err != nil {
		t.Fatal(err)
	}

	want := "SELECT " + strings.Join(scanColumns, ", ") + " FROM locked_conversions WHERE (updated_at, id) > ($1, $2) ORDER BY updated_at, id LIMIT 100"
	if query != want {
		t.Errorf("query = %q\nwant    %q", query, want)
	}

	if len(args) != 2 || args[1] != "c1" {
		t.Errorf("unexpected args %v", args)
	}
}
