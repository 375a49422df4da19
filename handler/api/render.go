package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oxtoacart/bpool"
	"github.com/pandodao/lock-wallet/core"
	"github.com/twitchtv/twirp"
)

var bufferPool = bpool.NewBufferPool(64)

func renderJSON(w http.ResponseWriter, status int, v any) {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		_ = twirp.WriteError(w, twirp.InternalError("encode response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var errorCodes = []struct {
	err  error
	code twirp.ErrorCode
}{
	{core.ErrInvalidInput, twirp.InvalidArgument},
	{core.ErrNotFound, twirp.NotFound},
	{core.ErrUnauthorized, twirp.PermissionDenied},
	{core.ErrInsufficientFunds, twirp.Aborted},
	{core.ErrRateUnavailable, twirp.Unavailable},
	{core.ErrAlreadyUnlocked, twirp.AlreadyExists},
	{core.ErrStillLocked, twirp.FailedPrecondition},
}

// twirpError maps a domain error onto a twirp error. Only the kind's own
// message is sent; wrapped causes stay in the logs. Unknown errors become a
// bare internal error.
func twirpError(err error) twirp.Error {
	var terr twirp.Error
	if errors.As(err, &terr) {
		return terr
	}

	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return twirp.NewError(c.code, c.err.Error()).WithMeta("reason", c.err.Error())
		}
	}

	return twirp.InternalError("internal error")
}
