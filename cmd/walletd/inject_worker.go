package main

import (
	"github.com/fee-less/feeless-wallet/worker/poller"
	"github.com/fee-less/feeless-wallet/worker/watcher"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	providePollerConfig,
	poller.New,
	watcher.New,
)

func providePollerConfig(v *viper.Viper) poller.Config {
	v.SetDefault("poller.interval", "30s")

	return poller.Config{
		Interval: v.GetDuration("poller.interval"),
		Tokens:   v.GetStringSlice("poller.tokens"),
	}
}
