package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twitchtv/twirp"
)

func TestCallDecodesTwirpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Account-Id") != "alice" {
			_ = twirp.WriteError(w, twirp.Unauthenticated.Error("missing account"))
			return
		}

		_ = twirp.WriteError(w, twirp.NewError(twirp.FailedPrecondition, "still locked").WithMeta("reason", "locked conversion still locked"))
	}))
	defer srv.Close()

	viper.Set("endpoint", srv.URL)
	viper.Set("account_header", "X-Account-Id")
	viper.Set("account", "alice")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := call(cmd, getClient().R().SetPathParam("id", "c1"), http.MethodPost, "/locked-conversions/{id}/unlock")

	var terr twirp.Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected a twirp error, got %v", err)
	}

	if terr.Code() != twirp.FailedPrecondition || terr.Meta("reason") != "locked conversion still locked" {
		t.Errorf("unexpected error %v (meta %v)", terr, terr.MetaMap())
	}
}

func TestCallPrintsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transactions" || r.URL.Query().Get("limit") != "5" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transactions":[{"id":"t1"}]}`))
	}))
	defer srv.Close()

	viper.Set("endpoint", srv.URL)
	viper.Set("account_header", "X-Account-Id")
	viper.Set("account", "alice")

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)

	resp, err := call(cmd, getClient().R().SetQueryParam("limit", "5"), http.MethodGet, "/transactions")
	if err != nil {
		t.Fatal(err)
	}

	if err := printJson(cmd, resp.Body()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), `"id": "t1"`) {
		t.Errorf("unexpected output %q", out.String())
	}
}
