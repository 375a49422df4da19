package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/shopspring/decimal"
)

// DefaultFeePercentage is charged on the source amount when no fee is configured.
var DefaultFeePercentage = decimal.NewFromInt(3)

type Config struct {
	FeePercentage decimal.Decimal `valid:"-"`
	RateTimeout   time.Duration   `valid:"required"`
}

func New(
	wallets core.WalletStore,
	conversions core.ConversionStore,
	rates core.RateService,
	clock clockwork.Clock,
	logger *slog.Logger,
	cfg Config,
) core.ConversionService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.FeePercentage.IsNegative() || cfg.FeePercentage.GreaterThanOrEqual(hundred) {
		panic(fmt.Errorf("fee percentage %s out of range [0, 100)", cfg.FeePercentage))
	}

	return &service{
		wallets:     wallets,
		conversions: conversions,
		rates:       rates,
		clock:       clock,
		logger:      logger.With("service", "conversion"),
		cfg:         cfg,
	}
}

type service struct {
	wallets     core.WalletStore
	conversions core.ConversionStore
	rates       core.RateService
	clock       clockwork.Clock
	logger      *slog.Logger
	cfg         Config
}

func (s *service) findWallet(ctx context.Context, id string) (*core.Wallet, error) {
	wallet, err := s.wallets.Find(ctx, id)
	if err != nil {
		if store.IsErrNotFound(err) {
			return nil, fmt.Errorf("wallet %s: %w", id, core.ErrNotFound)
		}

		s.logger.Error("wallets.Find", "wallet", id, "err", err)
		return nil, err
	}

	return wallet, nil
}

func (s *service) findOwned(ctx context.Context, accountID, id string) (*core.LockedConversion, error) {
	conversion, err := s.conversions.Find(ctx, id)
	if err != nil {
		if store.IsErrNotFound(err) {
			return nil, fmt.Errorf("locked conversion %s: %w", id, core.ErrNotFound)
		}

		s.logger.Error("conversions.Find", "conversion", id, "err", err)
		return nil, err
	}

	if conversion.AccountID != accountID {
		return nil, fmt.Errorf("locked conversion %s: %w", id, core.ErrUnauthorized)
	}

	return conversion, nil
}

// getRate bounds the provider call with the configured timeout. The returned
// error is the provider's own and may carry request details, so it is only
// logged; callers surface rateUnavailable instead.
func (s *service) getRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RateTimeout)
	defer cancel()

	rate, err := s.rates.GetRate(ctx, source, target)
	if err != nil {
		return decimal.Zero, err
	}

	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("non positive rate %s", rate)
	}

	return rate, nil
}

func rateUnavailable(source, target string) error {
	return fmt.Errorf("%s/%s: %w", source, target, core.ErrRateUnavailable)
}

func (s *service) attachWallets(ctx context.Context, conversion *core.LockedConversion, wallets map[string]*core.Wallet) error {
	load := func(id string) (*core.Wallet, error) {
		if w, ok := wallets[id]; ok {
			return w, nil
		}

		w, err := s.findWallet(ctx, id)
		if err != nil {
			return nil, err
		}

		wallets[id] = w
		return w, nil
	}

	var err error
	if conversion.SourceWallet, err = load(conversion.SourceWalletID); err != nil {
		return err
	}

	if conversion.TargetWallet, err = load(conversion.TargetWalletID); err != nil {
		return err
	}

	return nil
}

func (s *service) Create(ctx context.Context, accountID string, input core.CreateConversionInput) (*core.LockedConversion, error) {
	if accountID == "" || input.SourceWalletID == "" || input.TargetWalletID == "" {
		return nil, fmt.Errorf("missing required fields: %w", core.ErrInvalidInput)
	}

	if !input.SourceAmount.IsPositive() {
		return nil, fmt.Errorf("source amount must be positive: %w", core.ErrInvalidInput)
	}

	if input.LockPeriodMonths <= 0 {
		return nil, fmt.Errorf("lock period must be positive: %w", core.ErrInvalidInput)
	}

	logger := s.logger.With("account", accountID, "source", input.SourceWalletID, "target", input.TargetWalletID)

	source, err := s.findWallet(ctx, input.SourceWalletID)
	if err != nil {
		return nil, err
	}

	if source.AccountID != accountID {
		return nil, fmt.Errorf("source wallet: %w", core.ErrUnauthorized)
	}

	if source.Balance.LessThan(input.SourceAmount) {
		return nil, core.ErrInsufficientFunds
	}

	target, err := s.findWallet(ctx, input.TargetWalletID)
	if err != nil {
		return nil, err
	}

	if target.AccountID != accountID {
		return nil, fmt.Errorf("target wallet: %w", core.ErrUnauthorized)
	}

	fee, net := computeFee(input.SourceAmount, s.cfg.FeePercentage, source.Currency)

	rate, err := s.getRate(ctx, source.Currency, target.Currency)
	if err != nil {
		logger.Error("rates.GetRate", "err", err)
		return nil, rateUnavailable(source.Currency, target.Currency)
	}

	now := s.clock.Now()
	conversion := &core.LockedConversion{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		SourceWalletID: source.ID,
		TargetWalletID: target.ID,
		SourceCurrency: source.Currency,
		TargetCurrency: target.Currency,
		SourceAmount:   input.SourceAmount,
		TargetAmount:   net.Mul(rate),
		ExchangeRate:   rate,
		Fee:            fee,
		FeePercentage:  s.cfg.FeePercentage,
		Status:         core.ConversionStatusActive,
		LockDate:       now,
		UnlockDate:     addMonths(now, input.LockPeriodMonths),
		UpdatedAt:      now,
	}

	transaction := &core.Transaction{
		ID:                 uuid.NewString(),
		CreatedAt:          now,
		Type:               core.TransactionTypeLockFrom,
		Amount:             input.SourceAmount.Neg(),
		Currency:           source.Currency,
		WalletID:           source.ID,
		LockedConversionID: conversion.ID,
	}

	if err := s.conversions.Create(ctx, conversion, source, transaction); err != nil {
		if store.IsErrOptimisticLock(err) {
			logger.Debug("balance drained concurrently", "amount", input.SourceAmount)
			return nil, core.ErrInsufficientFunds
		}

		logger.Error("conversions.Create", "err", err)
		return nil, err
	}

	conversion.SourceWallet = source
	conversion.TargetWallet = target

	logger.Info("locked conversion created",
		"conversion", conversion.ID,
		"amount", conversion.SourceAmount,
		"fee", conversion.Fee,
		"rate", conversion.ExchangeRate,
		"unlock_date", conversion.UnlockDate,
	)

	return conversion, nil
}

func (s *service) Inspect(ctx context.Context, accountID, id string) (*core.ConversionDetail, error) {
	conversion, err := s.findOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if err := s.attachWallets(ctx, conversion, map[string]*core.Wallet{}); err != nil {
		return nil, err
	}

	detail := &core.ConversionDetail{LockedConversion: conversion}
	if conversion.Status != core.ConversionStatusActive {
		return detail, nil
	}

	detail.CanUnlock = conversion.Matured(s.clock.Now())

	// the current rate is informational, inspection works without it
	rate, err := s.getRate(ctx, conversion.SourceCurrency, conversion.TargetCurrency)
	if err != nil {
		s.logger.Warn("rates.GetRate", "conversion", id, "err", err)
		return detail, nil
	}

	detail.CurrentRate = &rate
	if conversion.ExchangeRate.IsPositive() {
		diff := rateDifference(rate, conversion.ExchangeRate)
		detail.RateDifference = &diff
	}

	return detail, nil
}

func (s *service) Unlock(ctx context.Context, accountID, id string) (*core.UnlockResult, error) {
	conversion, err := s.findOwned(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if conversion.Status != core.ConversionStatusActive {
		return nil, core.ErrAlreadyUnlocked
	}

	now := s.clock.Now()
	if !conversion.Matured(now) {
		return nil, fmt.Errorf("unlock date %s: %w", conversion.UnlockDate.Format(time.RFC3339), core.ErrStillLocked)
	}

	logger := s.logger.With("account", accountID, "conversion", id)

	if err := s.attachWallets(ctx, conversion, map[string]*core.Wallet{}); err != nil {
		return nil, err
	}

	conversion.ActualUnlockDate = &now
	conversion.UpdatedAt = now

	transaction := &core.Transaction{
		ID:                 uuid.NewString(),
		CreatedAt:          now,
		Type:               core.TransactionTypeUnlockTo,
		Amount:             conversion.TargetAmount,
		Currency:           conversion.TargetCurrency,
		WalletID:           conversion.TargetWalletID,
		LockedConversionID: conversion.ID,
	}

	if err := s.conversions.Unlock(ctx, conversion, conversion.TargetWallet, transaction); err != nil {
		if store.IsErrOptimisticLock(err) {
			logger.Debug("unlocked concurrently")
			return nil, core.ErrAlreadyUnlocked
		}

		logger.Error("conversions.Unlock", "err", err)
		return nil, err
	}

	logger.Info("locked conversion unlocked", "amount", conversion.TargetAmount, "currency", conversion.TargetCurrency)

	return &core.UnlockResult{
		LockedConversion: conversion,
		TargetWallet:     conversion.TargetWallet,
	}, nil
}

func (s *service) List(ctx context.Context, accountID string, status core.ConversionStatus) ([]*core.LockedConversion, error) {
	if accountID == "" {
		return nil, fmt.Errorf("missing account: %w", core.ErrInvalidInput)
	}

	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("status %q: %w", status, core.ErrInvalidInput)
	}

	conversions, err := s.conversions.ListAccount(ctx, accountID, status)
	if err != nil {
		s.logger.Error("conversions.ListAccount", "account", accountID, "err", err)
		return nil, err
	}

	wallets := map[string]*core.Wallet{}
	for _, conversion := range conversions {
		if err := s.attachWallets(ctx, conversion, wallets); err != nil {
			return nil, err
		}
	}

	return conversions, nil
}
