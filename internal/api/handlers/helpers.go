package handlers

import (
	"encoding/json"
	"net/http"

	"fleet-dispatch-engine/internal/platform/logging"
)

// log is set once by api.NewRouter; handlers never construct their own
// logger, matching the teacher's one-logger-per-component discipline.
var log logging.Logger = logging.NopLogger{}

// SetLogger wires the handlers package to the engine's component logger.
func SetLogger(l logging.Logger) {
	if l != nil {
		log = l
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
