package main

import (
	"github.com/google/wire"
	"github.com/jonboulle/clockwork"
	"github.com/pandodao/lock-wallet/service/conversion"
	"github.com/pandodao/lock-wallet/service/ledger"
	"github.com/pandodao/lock-wallet/service/rate"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideClock,
	provideRateConfig,
	rate.New,
	provideConversionConfig,
	conversion.New,
	ledger.New,
)

func provideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func provideRateConfig(v *viper.Viper) rate.Config {
	v.SetDefault("rate.endpoint", "https://api.exchangerate.host")
	v.SetDefault("rate.timeout", "5s")
	v.SetDefault("rate.cache_ttl", "1m")

	return rate.Config{
		Endpoint:  v.GetString("rate.endpoint"),
		AccessKey: v.GetString("rate.access_key"),
		Timeout:   v.GetDuration("rate.timeout"),
		CacheTTL:  v.GetDuration("rate.cache_ttl"),
	}
}

func provideConversionConfig(v *viper.Viper) (conversion.Config, error) {
	v.SetDefault("conversion.fee_percentage", conversion.DefaultFeePercentage.String())
	v.SetDefault("conversion.rate_timeout", "5s")

	fee, err := decimal.NewFromString(v.GetString("conversion.fee_percentage"))
	if err != nil {
		return conversion.Config{}, err
	}

	return conversion.Config{
		FeePercentage: fee,
		RateTimeout:   v.GetDuration("conversion.rate_timeout"),
	}, nil
}
