package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/topicrooms/internal/api/response"
	"github.com/mcoot/topicrooms/internal/model"
	"github.com/mcoot/topicrooms/internal/services/session"
	"github.com/mcoot/topicrooms/internal/status"
)

// Messages for failures that have no status code of their own
const (
	MsgInvalidRequest  = "invalid request body"
	MsgUnauthenticated = "authentication required"
	MsgInvalidCursor   = "invalid cursor"
	MsgInternalError   = "internal server error"
	MsgNotFound        = "not found"
)

// httpError combines an HTTP status code with an envelope message
type httpError struct {
	status  int
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes a failure envelope for err
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	response.Fail(w, he.status, he.message)
}

// WriteStatus writes the envelope for an operation outcome: success with
// data, or failure carrying the code's registry message.
func WriteStatus(w http.ResponseWriter, code status.Code, data any) {
	if code.OK() {
		if data == nil {
			data = response.Message{Message: code.Message()}
		}
		response.Success(w, data)
		return
	}
	response.Fail(w, HTTPStatus(code.Kind()), code.Message())
}

// HTTPStatus maps a status code kind to its HTTP status
func HTTPStatus(kind status.Kind) int {
	switch kind {
	case status.KindSuccess:
		return http.StatusOK
	case status.KindInput:
		return http.StatusBadRequest
	case status.KindAuth:
		return http.StatusUnauthorized
	case status.KindNotFound:
		return http.StatusNotFound
	case status.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidCursor):
		return &httpError{http.StatusBadRequest, MsgInvalidCursor}
	case errors.Is(err, session.ErrUnauthenticated), errors.Is(err, session.ErrNoSession):
		return &httpError{http.StatusUnauthorized, MsgUnauthenticated}
	case errors.Is(err, model.ErrTopicNotFound):
		return &httpError{http.StatusNotFound, MsgNotFound}
	default:
		return &httpError{http.StatusInternalServerError, MsgInternalError}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError() error {
	return &httpError{http.StatusBadRequest, MsgInvalidRequest}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, MsgInternalError}
}
