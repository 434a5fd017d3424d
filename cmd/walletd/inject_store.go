package main

import (
	"github.com/fee-less/feeless-wallet/store/balance"
	"github.com/fee-less/feeless-wallet/store/credential"
	"github.com/fee-less/feeless-wallet/store/db"
	"github.com/fee-less/feeless-wallet/store/history"
	"github.com/fee-less/feeless-wallet/store/property"
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/tsenart/nap"

	_ "github.com/mattn/go-sqlite3"
)

var storeSet = wire.NewSet(
	provideDB,
	property.New,
	credential.New,
	balance.New,
	history.New,
)

func provideDB(v *viper.Viper) (*nap.DB, func(), error) {
	v.SetDefault("db.dsn", "feeless-wallet.db")

	conn, err := nap.Open("sqlite3", v.GetString("db.dsn"))
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master()); err != nil {
		return nil, nil, err
	}

	return conn, func() { _ = conn.Close() }, nil
}
