package account

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.AccountStore {
	accounts, err := lru.New[string, *core.Account](1024)
	if err != nil {
		panic(err)
	}

	return &accountStore{
		db:       db,
		accounts: accounts,
	}
}

// accounts are never mutated here, so cached rows stay valid.
type accountStore struct {
	db       *nap.DB
	accounts *lru.Cache[string, *core.Account]
}

var columns = []string{"id", "email", "name", "password_hash", "created_at"}

func (s *accountStore) Find(ctx context.Context, id string) (*core.Account, error) {
	if a, ok := s.accounts.Get(id); ok {
		return a, nil
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.accounts.Add(id, a)
	return a, nil
}

func (s *accountStore) find(ctx context.Context, id string) (*core.Account, error) {
	b := store.Builder.Select(columns...).From("accounts").Where("id = ?", id)
	row := b.RunWith(s.db).QueryRowContext(ctx)

	var account core.Account
	if err := row.Scan(&account.ID, &account.Email, &account.Name, &account.PasswordHash, &account.CreatedAt); err != nil {
		return nil, err
	}

	return &account, nil
}
