package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/placesgate/placesgate/pkg/gateway"
)

// statusFor maps a gateway error to an HTTP status and response body.
// Internal detail never reaches the body.
func statusFor(err error) (int, errorBody) {
	var (
		ve *gateway.ValidationError
		rl *gateway.RateLimitError
		ce *gateway.ConfigurationError
		ue *gateway.UpstreamError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: ve.Error()}

	case errors.As(err, &rl):
		secs := rl.RetryAfterSeconds()
		return http.StatusTooManyRequests, errorBody{
			Error:      "Rate limit exceeded",
			Message:    fmt.Sprintf("Too many requests. Try again in %d seconds.", secs),
			RetryAfter: secs,
		}

	case errors.As(err, &ce):
		return http.StatusInternalServerError, errorBody{Error: ce.Message}

	case errors.As(err, &ue):
		status := ue.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, errorBody{Error: "Places search failed"}

	default:
		return http.StatusInternalServerError, errorBody{Error: "Internal server error"}
	}
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)

	if gateway.IsRateLimited(err) {
		w.Header().Set(HeaderRetryAfter, fmt.Sprint(body.RetryAfter))
	}

	level := slog.LevelDebug
	if status >= 500 {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		"status", status,
		"error", err,
	)

	writeJSON(w, status, body)
}
