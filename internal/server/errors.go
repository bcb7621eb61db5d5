package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type notFoundError struct {
	what string
	name string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.what, e.name)
}

// respondError logs err with the request id and writes it as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	requestID := middleware.GetReqID(r.Context())

	s.logger.Warn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", requestID,
	)
	writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: requestID})
}
