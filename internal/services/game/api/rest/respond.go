package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
)

// maxBodyBytes bounds request payloads; prompts and options are small.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusOf(err)
	code := apperrors.CodeOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internals stay in the logs, not in responses.
		log.Printf("internal error: %v", err)
		message = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: message}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.New(apperrors.CodeBadRequest, "request body is required")
		}
		return apperrors.Wrap(apperrors.CodeBadRequest, fmt.Sprintf("malformed request body: %v", err), err)
	}
	return nil
}
