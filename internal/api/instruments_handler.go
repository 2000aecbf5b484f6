package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riftlabs/decisioncore/internal/config"
)

// handleHealth reports liveness and the build version; it does not touch
// the provider or cache.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": config.GetVersion()})
}

// handleReady reports whether the server has enough configured state to
// actually serve a recommendation: a provider wired in and at least one
// enabled strategy. Unlike /health this can fail while the process is
// otherwise alive, e.g. immediately after startup before strategies are
// registered.
func (s *Server) handleReady(c *gin.Context) {
	if s.deps.Provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "no provider configured"})
		return
	}

	enabled := 0
	if s.deps.Registry != nil {
		enabled = len(s.deps.Registry.Snapshot().Enabled())
	}
	if enabled == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "no enabled strategies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// handleListInstruments returns the configured tracked instrument set.
func (s *Server) handleListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": s.deps.Instruments})
}

func (s *Server) isTracked(instrument string) bool {
	for _, inst := range s.deps.Instruments {
		if string(inst) == instrument {
			return true
		}
	}
	return false
}
