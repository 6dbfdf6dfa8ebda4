package response

import (
	"encoding/json"
	"net/http"
)

// Envelope statuses
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Envelope is the uniform body returned by every JSON endpoint
type Envelope struct {
	Status string  `json:"status"`
	Data   any     `json:"data"`
	Error  *string `json:"error"`
}

// Message is the payload of successful operations that return nothing else
type Message struct {
	Message string `json:"message"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Success writes a 200 success envelope around data
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

// Fail writes a failure envelope with the given HTTP status
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: StatusFail, Error: &message})
}
