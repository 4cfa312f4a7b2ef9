package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"moviegate/internal/auth"
	"moviegate/services/catalog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sessionController returns the controller bound to the request's session,
// writing a 401 when there is none.
func sessionController(w http.ResponseWriter, r *http.Request) *catalog.Controller {
	c := auth.GetController(r)
	if c == nil {
		writeError(w, http.StatusUnauthorized, "session required")
	}
	return c
}

// decodeBody decodes an optional JSON body into v. An empty body is not an error.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
