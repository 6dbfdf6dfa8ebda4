package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/topicrooms/internal/api/apierr"
	"github.com/mcoot/topicrooms/internal/errutil"
	"github.com/mcoot/topicrooms/internal/metrics"
	"github.com/mcoot/topicrooms/internal/status"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// decode reads a JSON body into v, writing the failure envelope on error
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError())
		return false
	}
	return true
}

// outcome records and writes an operation result. err is the infrastructure
// failure behind a ServerError/DBError code, if any.
func outcome(w http.ResponseWriter, logger *slog.Logger, m *metrics.Metrics, code status.Code, err error, data any) {
	if err != nil {
		errutil.LogError(logger, "operation failed", err,
			slog.String("operation", string(code.Family())),
			slog.String("code", code.String()),
		)
	}
	m.RecordOutcome(code)
	apierr.WriteStatus(w, code, data)
}
