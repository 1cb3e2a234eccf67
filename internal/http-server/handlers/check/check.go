package check

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

type AttendanceChecker interface {
	CheckAttendance(ctx context.Context, rawPhone string) ([]api.AttendanceEntry, error)
}

type Response struct {
	response.Response
	Data []api.AttendanceEntry `json:"data"`
}

// New serves the public self-service lookup: a mentee posts their
// WhatsApp number and gets every month on record for it.
func New(log *slog.Logger, svc AttendanceChecker) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.check.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.CheckRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("whatsapp number is required"))
			return
		}

		entries, err := svc.CheckAttendance(r.Context(), req.WhatsApp)

		if errors.Is(err, response.ErrBadRequest) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("whatsapp number is invalid"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no attendance found for this number"))
			return
		}

		if err != nil {
			log.Error("Failed to check attendance", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to check attendance"))
			return
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			Data:     entries,
		})
	}
}
