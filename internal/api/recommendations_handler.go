package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/recommend"
)

// handleGetRecommendation serves the cached Recommendation for :instrument,
// building it on a cache miss. The optional `as_of` query param (RFC3339)
// pins the evaluation time; it defaults to now.
func (s *Server) handleGetRecommendation(c *gin.Context) {
	instrument := c.Param("instrument")
	if !s.isTracked(instrument) {
		writeError(c, ErrNotTracked)
		return
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		writeError(c, err)
		return
	}

	rec, err := s.deps.Cache.GetOrBuild(c.Request.Context(), market.Instrument(instrument), asOf, s.deps.Engine.Recommend)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// handleRefreshRecommendation invalidates the cached entry for :instrument
// and rebuilds it immediately, returning the fresh Recommendation.
func (s *Server) handleRefreshRecommendation(c *gin.Context) {
	instrument := c.Param("instrument")
	if !s.isTracked(instrument) {
		writeError(c, ErrNotTracked)
		return
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		writeError(c, err)
		return
	}

	inst := market.Instrument(instrument)
	s.deps.Cache.Invalidate(inst)

	rec, err := s.deps.Cache.GetOrBuild(c.Request.Context(), inst, asOf, s.deps.Engine.Recommend)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// handleGetRecommendationHistory serves the last N built Recommendations for
// :instrument, most recent first. limit and offset are standard
// pagination query params (default limit 50, max 500); this is an audit
// trail over Engine.Recommend's output, not re-derived from the single-entry
// cache, so it survives a cache invalidate/rebuild.
func (s *Server) handleGetRecommendationHistory(c *gin.Context) {
	instrument := c.Param("instrument")
	if !s.isTracked(instrument) {
		writeError(c, ErrNotTracked)
		return
	}

	limit := recommend.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, ErrBadRequest{Msg: "limit must be an integer"})
			return
		}
		limit = n
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, ErrBadRequest{Msg: "offset must be an integer"})
			return
		}
		offset = n
	}

	history := s.deps.Cache.History(market.Instrument(instrument), limit, offset)
	c.JSON(http.StatusOK, gin.H{
		"instrument": instrument,
		"history":    history,
		"count":      len(history),
	})
}

func parseAsOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrBadRequest{Msg: "as_of must be RFC3339"}
	}
	return t, nil
}
