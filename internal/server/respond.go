package server

import (
	"encoding/json"
	"net/http"

	svcErr "github.com/udinder/udinder/internal/errors"
)

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err through the error mapper and writes it as a JSON
// body with a stable error code.
func WriteError(w http.ResponseWriter, err error) {
	e := svcErr.Map(err)
	WriteJSON(w, e.Status, e)
}

// DecodeJSON strictly decodes a request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
