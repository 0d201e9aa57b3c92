package app

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// NewRouter mounts every http facing transport. socketServer may be nil when
// socket.io is disabled.
func NewRouter(dispatcher Dispatcher, sessions *SessionRegistry, health *HealthReporter, socketServer http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/state", stateHandler(dispatcher)).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthHandler(health)).Methods(http.MethodGet)
	if socketServer != nil {
		router.PathPrefix("/socket.io/").Handler(socketServer)
	}
	router.Handle("/", NewWebsocketHandler(dispatcher, sessions))
	return router
}

// stateHandler reports the current state without sampling sensors or running a command
func stateHandler(dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dispatcher.Snapshot())
	}
}

func healthHandler(health *HealthReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := health.Last()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Printf("failed writing response - %s", err.Error())
	}
}
