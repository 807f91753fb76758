package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tournament-bracket/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	http.Error(w, msg, http.StatusConflict)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	slog.Warn("unauthorized", "message", msg)
	http.Error(w, msg, http.StatusUnauthorized)
}

// ServiceError picks the response for an error returned by the service
// layer. Anything it does not recognise is a 500.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrTournamentNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrMatchNotFound):
		NotFound(w, err.Error(), err)
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrOddTeamCount),
		errors.Is(err, service.ErrMatchNotSeeded),
		errors.Is(err, service.ErrDrawInFinals):
		BadRequest(w, err.Error(), err)
	case errors.Is(err, service.ErrTournamentFull),
		errors.Is(err, service.ErrTeamNameTaken),
		errors.Is(err, service.ErrResultConflict),
		errors.Is(err, service.ErrTeamCountMismatch),
		errors.Is(err, service.ErrFinalsNotReady):
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
