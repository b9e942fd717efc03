package handlers

import (
	"errors"
	"log"
	"net/http"

	"puzzleclash/internal/service"
	"puzzleclash/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

// statusForError maps service failures to HTTP status codes. Every failure
// is permanent for its input, so nothing here invites a retry.
func statusForError(err error) int {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotAMember),
		errors.Is(err, service.ErrNotAnAdmin):
		return http.StatusForbidden
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrInvalidInvitation):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateScore),
		errors.Is(err, service.ErrDuplicateInvitation),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoEntries):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// userMessageForError returns the inline message shown for a failed
// operation. Service sentinels and validation errors carry user-appropriate
// text already; anything else is masked.
func userMessageForError(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		return "Something went wrong, please try again"
	}
	return err.Error()
}
