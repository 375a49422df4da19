package hc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler reports the build version, uptime and whether the database answers
// a ping. An unreachable database turns the reply into a 503.
func Handler(version string, db Pinger) http.Handler {
	t := time.Now()
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, dbState := http.StatusOK, "ok"
		if err := db.PingContext(ctx); err != nil {
			status, dbState = http.StatusServiceUnavailable, "unreachable"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version": version,
			"uptime":  time.Since(t).Truncate(time.Second).String(),
			"db":      dbState,
		})
	}

	return http.HandlerFunc(fn)
}
