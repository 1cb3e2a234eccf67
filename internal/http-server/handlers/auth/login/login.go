package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"absensi-service/api"
	"absensi-service/internal/auth"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*api.User, error)
}

type Response struct {
	response.Response
	Token string   `json:"token"`
	User  api.User `json:"user"`
}

func New(log *slog.Logger, svc Authenticator, tokens *auth.TokenManager) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.LoginRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("username and password are required"))
			return
		}

		user, err := svc.Authenticate(r.Context(), req.Username, req.Password)

		if errors.Is(err, response.ErrUnauthorized) {
			log.Info("login rejected", slog.String("username", req.Username))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid username or password"))
			return
		}

		if err != nil {
			log.Error("Failed to authenticate", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to log in"))
			return
		}

		token, err := tokens.Issue(user.ID, time.Now())
		if err != nil {
			log.Error("Failed to issue token", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to log in"))
			return
		}

		http.SetCookie(w, tokens.SessionCookie(token))

		log.Info("User logged in", slog.String("user_id", user.ID))
		render.JSON(w, r, Response{
			Response: response.OK("login successful"),
			Token:    token,
			User:     *user,
		})
	}
}
