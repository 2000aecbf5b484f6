package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/metrics"
	"github.com/riftlabs/decisioncore/internal/recommend"
)

// ErrNotTracked is returned by handlers when the requested instrument is not
// in the configured tracked set.
var ErrNotTracked = errors.New("api: instrument is not tracked")

// ErrBadRequest wraps a malformed request parameter.
type ErrBadRequest struct{ Msg string }

func (e ErrBadRequest) Error() string { return e.Msg }

// writeError maps err to a status code per the pipeline's error taxonomy
// (DataUnavailable -> 503, BadRequest -> 400, not-tracked -> 404,
// cancelled -> 503, else -> 500) and writes a small JSON body, matching the
// handler error-response idiom used throughout this package.
func writeError(c *gin.Context, err error) {
	var badRequest ErrBadRequest

	switch {
	case errors.Is(err, recommend.ErrNoData), errors.Is(err, market.ErrDataUnavailable), errors.Is(err, market.ErrEmptySeries):
		metrics.RecordError("no_data", "api")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no_data"})
	case errors.As(err, &badRequest):
		metrics.RecordError("bad_request", "api")
		c.JSON(http.StatusBadRequest, gin.H{"error": badRequest.Msg})
	case errors.Is(err, ErrNotTracked):
		metrics.RecordError("not_tracked", "api")
		c.JSON(http.StatusNotFound, gin.H{"error": "instrument not tracked"})
	case errors.Is(err, recommend.ErrCancelled):
		metrics.RecordError("cancelled", "api")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		metrics.RecordError("internal", "api")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
