package controllers

import (
	"encoding/json"
	"errors"
	"go-storefront/utils"
	"net/http"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeValidationError reports field errors from utils.Validate, or a
// generic 400 for anything else
func writeValidationError(w http.ResponseWriter, err error) {
	var fields utils.ValidationErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input", Fields: fields})
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid input")
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
