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

type HistoryProvider interface {
	History(ctx context.Context, month string, field models.FilterField, filter string) (*api.History, error)
}

type Response struct {
	response.Response
	api.History
}

func New(log *slog.Logger, svc HistoryProvider, field models.FilterField) http.HandlerFunc {
	param := "program"
	if field == models.FILTER_MENTOR {
		param = "mentor"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.history.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		month := r.URL.Query().Get("month")
		filter := r.URL.Query().Get(param)

		history, err := svc.History(r.Context(), month, field, filter)
		if err != nil {
			log.Error("Failed to compute history", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to compute history"))
			return
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			History:  *history,
		})
	}
}
