package mw

import "net/http"

// writeJSONError is the body every middleware rejection carries.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"message":"` + msg + `"}` + "\n"))
}
