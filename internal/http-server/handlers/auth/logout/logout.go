package logout

import (
	"log/slog"
	"net/http"

	"absensi-service/internal/auth"
	"absensi-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

func New(log *slog.Logger, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		http.SetCookie(w, tokens.ClearedCookie())

		log.Info("User logged out")
		render.JSON(w, r, response.OK("logged out"))
	}
}
