package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sardinha/internal/core"
	applog "sardinha/internal/log"
	"sardinha/internal/remote"
)

const maxBodyBytes = 1 << 20

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
	}
	writeJSON(w, status, errorEnvelope{Error: err.Error()})
}

// statusFor maps data-layer errors onto HTTP statuses. Upstream API
// statuses pass through unchanged, auth rejections included.
func statusFor(err error) int {
	var statusErr *remote.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}

	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errDuplicateProfile):
		return http.StatusConflict
	case errors.Is(err, core.ErrProfileNotFound),
		errors.Is(err, core.ErrExpenseNotFound),
		errors.Is(err, core.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyProfileName),
		errors.Is(err, core.ErrPercentSum),
		errors.Is(err, core.ErrMinimumCategories),
		errors.Is(err, core.ErrDuplicateCategory),
		errors.Is(err, core.ErrCategoryAllocated):
		return http.StatusUnprocessableEntity
	}

	var minErr *core.MinimumPercentError
	if errors.As(err, &minErr) {
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

var (
	errBadRequest       = errors.New("malformed request body")
	errDuplicateProfile = errors.New("profile name already in use")
)

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
