package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/topicrooms/internal/testutil"
)

func TestLoggingRecordsStatusAndSize(t *testing.T) {
	logger, logs := testutil.CaptureLogger()

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/topic/list", nil))

	entry := logs.Last(t)
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "/topic/list", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, 15, entry["size"])
}

func TestLoggingWarnsOnServerError(t *testing.T) {
	logger, logs := testutil.CaptureLogger()

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "WARN", logs.Last(t)["level"])
}

func TestWrapResponseWriterReusesWrapper(t *testing.T) {
	rw := WrapResponseWriter(httptest.NewRecorder())
	assert.Same(t, rw, WrapResponseWriter(rw))
	assert.Equal(t, http.StatusOK, rw.Status())
}

func TestRecoveryUsesHandler(t *testing.T) {
	logger, logs := testutil.CaptureLogger()

	h := Recovery(logger, DefaultPanicHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logs.String(), "kaboom")
}

func TestRecoveryRepanicsAbort(t *testing.T) {
	h := Recovery(testutil.NopLogger(), DefaultPanicHandler)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
