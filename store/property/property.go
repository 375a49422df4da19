package property

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/tsenart/nap"
)

type propertyStore struct {
	db *nap.DB
}

func New(db *nap.DB) core.PropertyStore {
	return &propertyStore{db: db}
}

// Get leaves value untouched when the key is absent.
func (s *propertyStore) Get(ctx context.Context, key string, value any) error {
	var raw []byte
	b := store.Builder.Select("value").From("properties").Where("key = ?", key)
	if err := b.RunWith(s.db).QueryRowContext(ctx).Scan(&raw); err == nil {
		return json.Unmarshal(raw, value)
	} else if store.IsErrNotFound(err) {
		return nil
	} else {
		return err
	}
}

func (s *propertyStore) Set(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	updated, err := s.update(ctx, key, jsonValue)
	if err != nil || updated {
		return err
	}

	b := store.Builder.Insert("properties").Columns("key", "value").Values(key, string(jsonValue))
	if _, err := b.RunWith(s.db).ExecContext(ctx); err != nil {
		if !store.IsErrUniqueViolation(err) {
			return fmt.Errorf("failed to insert property: %w", err)
		}

		// lost the insert race, the row exists now
		_, err = s.update(ctx, key, jsonValue)
		return err
	}

	return nil
}

func (s *propertyStore) update(ctx context.Context, key string, jsonValue []byte) (bool, error) {
	b := store.Builder.Update("properties").
		Set("value", string(jsonValue)).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where("key = ?", key)

	r, err := b.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to set property: %w", err)
	}

	n, err := r.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n > 0, nil
}
