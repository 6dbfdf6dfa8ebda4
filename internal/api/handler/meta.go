package handler

import (
	"net/http"

	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/status"
)

// StatusCodes handles GET /status-codes
func StatusCodes(w http.ResponseWriter, r *http.Request) {
	response.Success(w, response.StatusFamiliesFromRegistry(status.Families()))
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, response.Message{Message: "ok"})
}
