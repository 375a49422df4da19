package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pandodao/lock-wallet/core"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	Endpoint  string `valid:"url,required"`
	AccessKey string `valid:"required"`
	Timeout   time.Duration
	CacheTTL  time.Duration
}

func New(cfg Config) core.RateService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")).
		SetHeader("Accept", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client.SetTimeout(timeout)

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &service{
		client:    client,
		accessKey: cfg.AccessKey,
		rates:     expirable.NewLRU[string, decimal.Decimal](256, nil, ttl),
		sf:        &singleflight.Group{},
	}
}

type service struct {
	client    *resty.Client
	accessKey string
	rates     *expirable.LRU[string, decimal.Decimal]
	sf        *singleflight.Group
}

type liveError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type liveResponse struct {
	Success bool                       `json:"success"`
	Source  string                     `json:"source"`
	Quotes  map[string]decimal.Decimal `json:"quotes"`
	Error   *liveError                 `json:"error"`
}

func (s *service) GetRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	source, target = strings.ToUpper(source), strings.ToUpper(target)
	if source == "" || target == "" {
		return decimal.Zero, errors.New("currency required")
	}

	if source == target {
		return decimal.NewFromInt(1), nil
	}

	key := source + target
	if v, ok := s.rates.Get(key); ok {
		return v, nil
	}

	// the shared fetch outlives any single caller and is bounded by the
	// client timeout instead
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		rate, err := s.fetch(context.WithoutCancel(ctx), source, target)
		if err == nil {
			s.rates.Add(key, rate)
		}

		return rate, err
	})

	select {
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return decimal.Zero, r.Err
		}

		return r.Val.(decimal.Decimal), nil
	}
}

func (s *service) fetch(ctx context.Context, source, target string) (decimal.Decimal, error) {
	var body liveResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_key": s.accessKey,
			"source":     source,
			"currencies": target,
			"format":     "1",
		}).
		ForceContentType("application/json").
		SetResult(&body).
		Get("/live")
	if err != nil {
		return decimal.Zero, fmt.Errorf("request live rate failed: %w", err)
	}

	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("request live rate failed: %s", resp.Status())
	}

	if !body.Success && body.Error != nil {
		return decimal.Zero, fmt.Errorf("live rate rejected: %d %s", body.Error.Code, body.Error.Info)
	}

	rate, ok := body.Quotes[source+target]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("quote %s%s missing", source, target)
	}

	return rate, nil
}
