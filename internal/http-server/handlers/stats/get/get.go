package get

import (
	"context"
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/internal/models"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StatsProvider interface {
	Stats(ctx context.Context, field models.FilterField, filter string) (*api.Stats, error)
}

type Response struct {
	response.Response
	Stats api.Stats `json:"stats"`
}

func New(log *slog.Logger, svc StatsProvider, field models.FilterField) http.HandlerFunc {
	param := "program"
	if field == models.FILTER_MENTOR {
		param = "mentor"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stats.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		stats, err := svc.Stats(r.Context(), field, r.URL.Query().Get(param))
		if err != nil {
			log.Error("Failed to compute stats", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to compute stats"))
			return
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			Stats:    *stats,
		})
	}
}
