package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"absensi-service/internal/http-server/middleware/mwAuth"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type UserRemover interface {
	DeleteUser(ctx context.Context, actorID, targetID string) error
}

func New(log *slog.Logger, svc UserRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.remove.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := mwAuth.UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("authentication required"))
			return
		}

		targetID := chi.URLParam(r, "id")
		if targetID == "" {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("user id is required"))
			return
		}

		err := svc.DeleteUser(r.Context(), actor.ID, targetID)

		if errors.Is(err, response.ErrForbidden) {
			log.Info("delete refused", slog.String("target_id", targetID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("this account cannot be deleted"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}

		if err != nil {
			log.Error("Failed to delete user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete user"))
			return
		}

		log.Info("User deleted", slog.String("target_id", targetID))
		render.JSON(w, r, response.OK("user deleted"))
	}
}
