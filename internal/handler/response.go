package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ecommerce-auth/internal/model"
	"ecommerce-auth/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}

// writeError renders err as {message, error}. The error field carries the
// underlying cause for server errors only when verbose is set.
func writeError(w http.ResponseWriter, err error, verbose bool) {
	status := http.StatusInternalServerError
	body := model.MessageResponse{Message: "Server error"}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Kind != apierror.KindServer {
		status = apiErr.HTTPStatus
		body.Message = apiErr.Message
	} else {
		slog.Error("request failed", "error", err)
		if verbose && err != nil {
			cause := err
			if apiErr != nil && apiErr.Err != nil {
				cause = apiErr.Err
			}
			body.Error = cause.Error()
		}
	}

	writeJSON(w, status, body)
}
