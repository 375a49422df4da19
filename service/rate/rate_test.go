package rate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T, h http.HandlerFunc) (*service, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	s := New(Config{
		Endpoint:  srv.URL,
		AccessKey: "secret",
		Timeout:   time.Second,
		CacheTTL:  time.Minute,
	})

	return s.(*service), &hits
}

func TestGetRate(t *testing.T) {
	s, hits := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/live" || q.Get("access_key") != "secret" || q.Get("source") != "USD" || q.Get("currencies") != "EUR" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"source":"USD","quotes":{"USDEUR":0.92}}`))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rate, err := s.GetRate(ctx, "usd", "EUR")
		if err != nil {
			t.Fatalf("GetRate() error = %v", err)
		}

		if !rate.Equal(decimal.RequireFromString("0.92")) {
			t.Errorf("GetRate() = %v, want 0.92", rate)
		}
	}

	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("provider hit %d times, want 1 (cached)", n)
	}
}

func TestGetRateSameCurrency(t *testing.T) {
	s, hits := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rate, err := s.GetRate(context.Background(), "EUR", "EUR")
	if err != nil {
		t.Fatalf("GetRate() error = %v", err)
	}

	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("GetRate() = %v, want 1", rate)
	}

	if n := atomic.LoadInt32(hits); n != 0 {
		t.Errorf("provider hit %d times, want 0", n)
	}
}

func TestGetRateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"rejected", http.StatusOK, `{"success":false,"error":{"code":101,"info":"invalid access key"}}`},
		{"missing quote", http.StatusOK, `{"success":true,"quotes":{"USDGBP":0.79}}`},
		{"zero quote", http.StatusOK, `{"success":true,"quotes":{"USDEUR":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			if _, err := s.GetRate(context.Background(), "USD", "EUR"); err == nil {
				t.Error("expected an error, but got nil")
			}

			if s.rates.Len() != 0 {
				t.Error("failed lookup must not be cached")
			}
		})
	}
}

func TestGetRateTimeout(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := s.GetRate(ctx, "USD", "EUR"); err == nil {
		t.Error("expected a timeout error, but got nil")
	}
}

func TestGetRateConcurrent(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"quotes":{"USDJPY":151.2}}`))
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate, err := s.GetRate(context.Background(), "USD", "JPY")
			if err != nil || !rate.Equal(decimal.RequireFromString("151.2")) {
				t.Errorf("GetRate() = %v, %v", rate, err)
			}
		}()
	}

	wg.Wait()
}

func TestGetRateCancelledCallerDoesNotFailOthers(t *testing.T) {
	release := make(chan struct{})
	s, hits := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"quotes":{"USDEUR":0.92}}`))
	})

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.GetRate(first, "USD", "EUR")
		firstErr <- err
	}()

	// wait until the shared request is in flight
	for atomic.LoadInt32(hits) == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		rate decimal.Decimal
		err  error
	}

	second := make(chan result, 1)
	go func() {
		rate, err := s.GetRate(context.Background(), "USD", "EUR")
		second <- result{rate, err}
	}()

	cancel()
	if err := <-firstErr; err != context.Canceled {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}

	close(release)
	r := <-second
	if r.err != nil || !r.rate.Equal(decimal.RequireFromString("0.92")) {
		t.Errorf("GetRate() = %v, %v", r.rate, r.err)
	}

	if n := atomic.LoadInt32(hits); n != 1 {
		t.Errorf("provider hit %d times, want 1", n)
	}
}
