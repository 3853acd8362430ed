package api

import (
	"encoding/json"
	"errors"
	"net/http"

	typeerrors "github.com/matzehuels/typegraph/pkg/errors"
)

// maxBodyBytes bounds request bodies; models are small documents.
const maxBodyBytes = 8 << 20

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", "error", err)
	}
}

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func errorBody(err error) errResponse {
	return errResponse{Error: typeerrors.UserMessage(err), Code: string(typeerrors.GetCode(err))}
}

// writeError answers with the status mapped from err's code. Internal errors
// are logged and their details withheld.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := typeerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.logger.Error("request failed", "error", err)
		h.writeJSON(w, status, errResponse{Error: "internal error", Code: string(typeerrors.ErrCodeInternal)})
		return
	}
	h.writeJSON(w, status, errorBody(err))
}

// decode reads a JSON request body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return typeerrors.New(typeerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", maxErr.Limit)
		}
		return typeerrors.New(typeerrors.ErrCodeInvalidInput, "invalid JSON body: %v", err)
	}
	if dec.More() {
		return typeerrors.New(typeerrors.ErrCodeInvalidInput, "invalid JSON body: trailing data")
	}
	return nil
}
