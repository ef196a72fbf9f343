// Package shared writes the JSON envelope every account-service endpoint answers with.
package shared

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/account-client/internal/stub"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, envelope{Success: true, Message: message, Data: data})
}

// WriteError writes a failure envelope with the status mapped from err.
func WriteError(w http.ResponseWriter, err error) {
	status, message := stub.StatusOf(err)
	write(w, status, envelope{Success: false, Message: message})
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
