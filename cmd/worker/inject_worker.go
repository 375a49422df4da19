package main

import (
	"github.com/google/wire"
	"github.com/jonboulle/clockwork"
	"github.com/pandodao/lock-wallet/worker/reconciler"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	provideClock,
	provideReconcilerConfig,
	reconciler.New,
)

func provideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func provideReconcilerConfig(v *viper.Viper) reconciler.Config {
	v.SetDefault("reconciler.batch", 100)
	v.SetDefault("reconciler.interval", "5s")
	v.SetDefault("reconciler.settle", "1m")

	return reconciler.Config{
		Batch:    v.GetInt("reconciler.batch"),
		Interval: v.GetDuration("reconciler.interval"),
		Settle:   v.GetDuration("reconciler.settle"),
	}
}
