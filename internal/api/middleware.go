package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rentacar/internal/auth"
	"rentacar/internal/gateway"
	"rentacar/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type claimsKey struct{}

func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware tags each request with an id, logs it, and counts it per route.
func loggingMiddleware(logger *zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			reqLogger := logger.With().Str("request_id", requestID).Logger()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(reqLogger.WithContext(r.Context())))

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tpl
				}
			}
			metrics.IncHTTP(endpoint, strconv.Itoa(recorder.status))

			reqLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// TokenValidator confirms with the remote API that the token carried by ctx is genuine.
type TokenValidator interface {
	ValidateToken(ctx context.Context) (bool, error)
}

// tokenMiddleware forwards the caller's bearer token upstream and decodes its claims.
// With a secret the claims are verified; otherwise they are kept unverified for defaults.
// A missing or unreadable token is not rejected here; the remote API decides.
func tokenMiddleware(secret []byte, now func() time.Time) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := gateway.WithToken(r.Context(), token)
			claims, err := auth.VerifyToken(token, secret, now())
			if err != nil {
				claims, err = auth.ClaimsFromToken(token)
			}
			if err == nil {
				ctx = context.WithValue(ctx, claimsKey{}, claims)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminOnly rejects callers whose token does not carry the admin role. Claims whose
// signature was not checked locally are confirmed with validator before access is granted.
func adminOnly(now func() time.Time, validator TokenValidator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			switch {
			case claims == nil:
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			case claims.Expired(now()):
				writeError(w, http.StatusUnauthorized, "unauthorized", "session expired")
				return
			case !claims.IsAdmin():
				writeError(w, http.StatusForbidden, "forbidden", "admin role required")
				return
			}

			if !claims.Verified {
				if validator == nil {
					writeError(w, http.StatusUnauthorized, "unauthorized", "token could not be verified")
					return
				}
				ok, err := validator.ValidateToken(r.Context())
				if err != nil {
					zerolog.Ctx(r.Context()).Warn().Err(err).Msg("admin token validation failed")
					writeError(w, http.StatusBadGateway, "upstream_unreachable", gateway.ErrUnreachable.Error())
					return
				}
				if !ok {
					writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
