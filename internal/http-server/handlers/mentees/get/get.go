package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"absensi-service/api"
	"absensi-service/internal/models"
	"absensi-service/pkg/response"
	"absensi-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type EntryLister interface {
	ListEntries(ctx context.Context, field models.FilterField, filter string, page, limit int) ([]api.AttendanceEntry, *api.ListMeta, error)
}

type Response struct {
	response.Response
	Data []api.AttendanceEntry `json:"data"`
	Meta api.ListMeta          `json:"meta"`
}

// New serves one page of mentee entries. The field decides which query
// parameter narrows the list; the same handler backs both the program
// and the mentor view.
func New(log *slog.Logger, svc EntryLister, field models.FilterField) http.HandlerFunc {
	param := "program"
	if field == models.FILTER_MENTOR {
		param = "mentor"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.mentees.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := r.URL.Query().Get(param)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, meta, err := svc.ListEntries(r.Context(), field, filter, page, limit)
		if err != nil {
			log.Error("Failed to list entries", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list mentees"))
			return
		}

		if entries == nil {
			entries = []api.AttendanceEntry{}
		}

		render.JSON(w, r, Response{
			Response: response.Response{Success: true},
			Data:     entries,
			Meta:     *meta,
		})
	}
}
