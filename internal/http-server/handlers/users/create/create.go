package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type UserCreator interface {
	CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.User, error)
}

type Response struct {
	response.Response
	User api.User `json:"user"`
}

func New(log *slog.Logger, svc UserCreator) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.CreateUserRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("username, name and a password of at least 6 characters are required"))
			return
		}

		user, err := svc.CreateUser(r.Context(), &req)

		if errors.Is(err, response.ErrUserExists) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username already taken"))
			return
		}

		if err != nil {
			log.Error("Failed to create user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create user"))
			return
		}

		log.Info("User created", slog.String("user_id", user.ID), slog.String("role", user.Role))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK("user created"),
			User:     *user,
		})
	}
}
