package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the envelope every service answers with.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, status, Response{
		Success:   status < http.StatusBadRequest,
		Message:   message,
		Data:      data,
		TraceID:   RequestIDFrom(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	write(w, status, Response{
		Success:   false,
		Error:     code,
		Message:   message,
		TraceID:   RequestIDFrom(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Health is the shared /health handler.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"service":   service,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
