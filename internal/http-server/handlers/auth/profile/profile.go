package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/internal/http-server/middleware/mwAuth"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID string, req *api.UpdateProfileRequest) (*api.User, error)
}

type Response struct {
	response.Response
	User api.User `json:"user"`
}

func New(log *slog.Logger, svc ProfileUpdater) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.profile.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := mwAuth.UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("authentication required"))
			return
		}

		var req api.UpdateProfileRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("new password must be at least 6 characters"))
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), user.ID, &req)

		if errors.Is(err, response.ErrBadRequest) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("current password is required to set a new one"))
			return
		}

		if errors.Is(err, response.ErrWrongPassword) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("current password is incorrect"))
			return
		}

		if err != nil {
			log.Error("Failed to update profile", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update profile"))
			return
		}

		log.Info("Profile updated", slog.String("user_id", user.ID))
		render.JSON(w, r, Response{
			Response: response.OK("profile updated"),
			User:     *updated,
		})
	}
}
