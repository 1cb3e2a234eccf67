package check_test

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
	"absensi-service/internal/http-server/handlers/check"
	"absensi-service/pkg/response"
)

type checkerFunc func(ctx context.Context, rawPhone string) ([]api.AttendanceEntry, error)

func (f checkerFunc) CheckAttendance(ctx context.Context, rawPhone string) ([]api.AttendanceEntry, error) {
	return f(ctx, rawPhone)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func doCheck(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/attendance/check", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	return rr
}

func TestCheckOK(t *testing.T) {
	var gotPhone string
	handler := check.New(discardLogger(), checkerFunc(func(_ context.Context, rawPhone string) ([]api.AttendanceEntry, error) {
		gotPhone = rawPhone
		return []api.AttendanceEntry{
			{Name: "Ana", WhatsApp: "6281234567890", Month: "Feb"},
		}, nil
	}))

	rr := doCheck(t, handler, `{"whatsapp": "0812-3456-7890"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotPhone != "0812-3456-7890" {
		t.Errorf("raw phone passed through as %q", gotPhone)
	}

	var resp check.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 || resp.Data[0].Name != "Ana" {
		t.Errorf("response = %+v", resp)
	}
}

func TestCheckMissingNumber(t *testing.T) {
	handler := check.New(discardLogger(), checkerFunc(func(context.Context, string) ([]api.AttendanceEntry, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}))

	rr := doCheck(t, handler, `{}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	var resp response.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("success must be false")
	}
}

func TestCheckNotFound(t *testing.T) {
	handler := check.New(discardLogger(), checkerFunc(func(context.Context, string) ([]api.AttendanceEntry, error) {
		return nil, fmt.Errorf("service.CheckAttendance: %w", response.ErrNotFound)
	}))

	rr := doCheck(t, handler, `{"whatsapp": "089999999999"}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCheckInvalidNumber(t *testing.T) {
	handler := check.New(discardLogger(), checkerFunc(func(context.Context, string) ([]api.AttendanceEntry, error) {
		return nil, fmt.Errorf("service.CheckAttendance: %w", response.ErrBadRequest)
	}))

	rr := doCheck(t, handler, `{"whatsapp": "---"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
