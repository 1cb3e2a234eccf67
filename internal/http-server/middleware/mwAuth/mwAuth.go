// Package mwAuth resolves the session token into the current user and
// injects it into the request context. Handlers behind it can assume a
// logged-in user; finer rules (who may delete whom) live in the service.
package mwAuth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/internal/auth"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

type UserProvider interface {
	UserByID(ctx context.Context, id string) (*api.User, error)
}

// New authenticates every request passing through it. A missing, invalid
// or expired token, or a token for a deleted user, all end the same way.
func New(log *slog.Logger, tokens *auth.TokenManager, users UserProvider) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "mwAuth.New"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := auth.FromRequest(r)
			if token == "" {
				unauthorized(w, r)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				unauthorized(w, r)
				return
			}

			user, err := users.UserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, response.ErrNotFound) {
					unauthorized(w, r)
					return
				}

				log.Error("failed to load user", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to authenticate"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
		}

		return http.HandlerFunc(fn)
	}
}

// UserFromContext returns the user mwAuth.New stored for this request.
func UserFromContext(ctx context.Context) (*api.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*api.User)

	return user, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error("authentication required"))
}
