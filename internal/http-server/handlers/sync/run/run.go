package run

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"absensi-service/api"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Reconciler interface {
	Reconcile(ctx context.Context, month string) (*api.SyncReport, error)
}

type Response struct {
	response.Response
	Report *api.SyncReport `json:"report"`
}

func New(log *slog.Logger, svc Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.run.New"

		month := chi.URLParam(r, "month")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("month", month),
		)

		report, err := svc.Reconcile(r.Context(), month)

		if errors.Is(err, response.ErrInvalidMonth) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or future month"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("a sync for this month is already running"))
			return
		}

		if errors.Is(err, response.ErrNoData) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no records found for this month"))
			return
		}

		if errors.Is(err, response.ErrSourceUnavailable) {
			log.Error("source unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("attendance source is unavailable"))
			return
		}

		if err != nil {
			log.Error("Failed to sync", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to sync attendance"))
			return
		}

		log.Info("Sync finished",
			slog.Int("fetched", report.Stats.TotalFetched),
			slog.Int("inserted", report.Stats.Inserted),
			slog.Int("updated", report.Stats.Updated),
		)

		render.JSON(w, r, Response{
			Response: response.OK("sync completed"),
			Report:   report,
		})
	}
}
