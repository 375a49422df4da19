package main

import (
	"strings"

	"github.com/google/wire"
	_ "github.com/lib/pq"
	"github.com/pandodao/lock-wallet/store/account"
	"github.com/pandodao/lock-wallet/store/conversion"
	"github.com/pandodao/lock-wallet/store/db"
	"github.com/pandodao/lock-wallet/store/transaction"
	"github.com/pandodao/lock-wallet/store/wallet"
	"github.com/spf13/viper"
	"github.com/tsenart/nap"
)

var storeSet = wire.NewSet(
	provideDB,
	account.New,
	wallet.New,
	conversion.New,
	transaction.New,
)

func provideDB(v *viper.Viper) (*nap.DB, func(), error) {
	v.SetDefault("db.driver", "postgres")

	driver := v.GetString("db.driver")
	dsn := strings.Join(append([]string{v.GetString("db.dsn")}, v.GetStringSlice("db.replicas")...), ";")

	conn, err := nap.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master()); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return conn, func() { _ = conn.Close() }, nil
}
