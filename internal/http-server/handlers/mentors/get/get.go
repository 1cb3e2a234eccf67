package get

import (
	"context"
	"log/slog"
	"net/http"

	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type MentorLister interface {
	Mentors(ctx context.Context) ([]string, error)
}

type Response struct {
	response.Response
	Mentors []string `json:"mentors"`
}

func New(log *slog.Logger, svc MentorLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.mentors.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		mentors, err := svc.Mentors(r.Context())
		if err != nil {
			log.Error("Failed to list mentors", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list mentors"))
			return
		}

		if mentors == nil {
			mentors = []string{}
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			Mentors:  mentors,
		})
	}
}
