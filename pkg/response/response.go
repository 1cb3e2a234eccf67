package response

import "errors"

// Wire contract shared with the dashboard and the public lookup page:
// every error body is {"success":false,"message":...}; success payloads
// embed Response with Success set to true.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

var (
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrNoData            = errors.New("no records found")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrLocked            = errors.New("sync already running")
	ErrUserExists        = errors.New("username already taken")
	ErrWrongPassword     = errors.New("wrong password")
)

func Error(msg string) Response {
	return Response{Success: false, Message: msg}
}

func OK(msg string) Response {
	return Response{Success: true, Message: msg}
}
