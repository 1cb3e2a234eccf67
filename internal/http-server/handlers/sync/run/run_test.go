package run_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"absensi-service/api"
	"absensi-service/internal/http-server/handlers/sync/run"
	"absensi-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

type reconcilerFunc func(ctx context.Context, month string) (*api.SyncReport, error)

func (f reconcilerFunc) Reconcile(ctx context.Context, month string) (*api.SyncReport, error) {
	return f(ctx, month)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func doFetch(t *testing.T, svc run.Reconciler, month string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/admin/fetch/{month}", run.New(discardLogger(), svc))

	req := httptest.NewRequest(http.MethodPost, "/admin/fetch/"+month, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func TestRunStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid month", response.ErrInvalidMonth, http.StatusBadRequest},
		{"already running", response.ErrLocked, http.StatusConflict},
		{"empty table", response.ErrNoData, http.StatusNotFound},
		{"source down", response.ErrSourceUnavailable, http.StatusBadGateway},
		{"storage failure", fmt.Errorf("write: disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := reconcilerFunc(func(context.Context, string) (*api.SyncReport, error) {
				return nil, fmt.Errorf("service.Reconcile: %w", tc.err)
			})

			rr := doFetch(t, svc, "Feb")

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}

			var resp response.Response
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Success {
				t.Error("success must be false")
			}
		})
	}
}

func TestRunOK(t *testing.T) {
	var gotMonth string
	svc := reconcilerFunc(func(_ context.Context, month string) (*api.SyncReport, error) {
		gotMonth = month
		return &api.SyncReport{
			Month: month,
			Stats: api.SyncStats{TotalFetched: 3, Inserted: 2, Updated: 1, Matched: 1},
		}, nil
	})

	rr := doFetch(t, svc, "Feb")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotMonth != "Feb" {
		t.Errorf("month from path = %q", gotMonth)
	}

	var resp run.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Report == nil || resp.Report.Stats.Inserted != 2 {
		t.Errorf("response = %+v", resp)
	}
}
