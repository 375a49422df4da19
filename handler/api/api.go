package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/store"
	"github.com/shopspring/decimal"
	"github.com/twitchtv/twirp"
)

type Config struct {
	AccountHeader string `valid:"required"`
}

func New(
	accounts core.AccountStore,
	conversionz core.ConversionService,
	ledgerz core.LedgerService,
	logger *slog.Logger,
	cfg Config,
) *Server {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Server{
		accounts:    accounts,
		conversionz: conversionz,
		ledgerz:     ledgerz,
		logger:      logger.With("server", "api"),
		cfg:         cfg,
	}
}

type Server struct {
	accounts    core.AccountStore
	conversionz core.ConversionService
	ledgerz     core.LedgerService
	logger      *slog.Logger
	cfg         Config
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.authenticate)

	r.Route("/locked-conversions", func(r chi.Router) {
		r.Get("/", s.listConversions)
		r.Post("/", s.createConversion)
		r.Get("/{id}", s.inspectConversion)
		r.Post("/{id}/unlock", s.unlockConversion)
	})

	r.Get("/transactions", s.listTransactions)

	return r
}

type accountKey struct{}

func accountFrom(ctx context.Context) *core.Account {
	account, _ := ctx.Value(accountKey{}).(*core.Account)
	return account
}

// authenticate resolves the caller from the account header.
func (s *Server) authenticate(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(s.cfg.AccountHeader)
		if id == "" {
			s.fail(w, twirp.Unauthenticated.Error("missing account"))
			return
		}

		account, err := s.accounts.Find(r.Context(), id)
		if err != nil {
			if store.IsErrNotFound(err) {
				s.fail(w, twirp.Unauthenticated.Error("unknown account"))
				return
			}

			s.logger.Error("accounts.Find", "account", id, "err", err)
			s.fail(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey{}, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	terr := twirpError(err)
	if terr.Code() == twirp.Internal {
		s.logger.Error("request failed", "err", err)
	}

	_ = twirp.WriteError(w, terr)
}

type createConversionRequest struct {
	SourceWalletID   string          `json:"source_wallet_id"`
	TargetWalletID   string          `json:"target_wallet_id"`
	SourceAmount     decimal.Decimal `json:"source_amount"`
	LockPeriodMonths int             `json:"lock_period_months"`
}

func (s *Server) createConversion(w http.ResponseWriter, r *http.Request) {
	var req createConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, twirp.InvalidArgument.Error("malformed body"))
		return
	}

	conversion, err := s.conversionz.Create(r.Context(), accountFrom(r.Context()).ID, core.CreateConversionInput{
		SourceWalletID:   req.SourceWalletID,
		TargetWalletID:   req.TargetWalletID,
		SourceAmount:     req.SourceAmount,
		LockPeriodMonths: req.LockPeriodMonths,
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, conversion)
}

func (s *Server) inspectConversion(w http.ResponseWriter, r *http.Request) {
	detail, err := s.conversionz.Inspect(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	renderJSON(w, http.StatusOK, detail)
}

func (s *Server) unlockConversion(w http.ResponseWriter, r *http.Request) {
	result, err := s.conversionz.Unlock(r.Context(), accountFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

func (s *Server) listConversions(w http.ResponseWriter, r *http.Request) {
	status := core.ConversionStatus(r.URL.Query().Get("status"))

	conversions, err := s.conversionz.List(r.Context(), accountFrom(r.Context()).ID, status)
	if err != nil {
		s.fail(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"locked_conversions": nonNil(conversions)})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, twirp.InvalidArgument.Error("limit must be an integer"))
			return
		}

		limit = n
	}

	transactions, err := s.ledgerz.ListTransactions(r.Context(), accountFrom(r.Context()).ID, r.URL.Query().Get("wallet_id"), limit)
	if err != nil {
		s.fail(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{"transactions": nonNil(transactions)})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
