package list

import (
	"context"
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]api.User, error)
}

type Response struct {
	response.Response
	Users []api.User `json:"users"`
}

func New(log *slog.Logger, svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.users.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		users, err := svc.ListUsers(r.Context())
		if err != nil {
			log.Error("Failed to list users", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list users"))
			return
		}

		if users == nil {
			users = []api.User{}
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			Users:    users,
		})
	}
}
