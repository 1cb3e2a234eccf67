package me

import (
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/internal/http-server/middleware/mwAuth"
	"absensi-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	response.Response
	User api.User `json:"user"`
}

func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := mwAuth.UserFromContext(r.Context())
		if !ok {
			log.Error("no user in context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("authentication required"))
			return
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			User:     *user,
		})
	}
}
