package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// strategyView is the wire shape for one registry entry.
type strategyView struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Enabled         bool    `json:"enabled"`
	Weight          float64 `json:"weight"`
	RequiredHistory int     `json:"required_history"`
}

// handleListStrategies returns every registered strategy's current state.
func (s *Server) handleListStrategies(c *gin.Context) {
	snapshot := s.deps.Registry.Snapshot()

	views := make([]strategyView, len(snapshot.Entries))
	for i, e := range snapshot.Entries {
		meta := e.Strategy.Metadata()
		views[i] = strategyView{
			Name:            meta.Name,
			Description:     meta.Description,
			Enabled:         e.Enabled,
			Weight:          e.Weight,
			RequiredHistory: meta.RequiredHistory,
		}
	}

	c.JSON(http.StatusOK, gin.H{"strategies": views})
}

// updateStrategyRequest is the PUT body for toggling a strategy's enabled
// flag and/or weight. Both fields are optional; an absent field leaves that
// property unchanged.
type updateStrategyRequest struct {
	Enabled *bool    `json:"enabled"`
	Weight  *float64 `json:"weight"`
}

// handleUpdateStrategy applies a weight/enabled change to :name. Future
// engine runs pick up the change via the next Registry.Snapshot(); any run
// already in flight keeps the snapshot it started with.
func (s *Server) handleUpdateStrategy(c *gin.Context) {
	name := c.Param("name")

	var req updateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrBadRequest{Msg: "invalid request body"})
		return
	}

	if _, ok := s.deps.Registry.Get(name); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found"})
		return
	}

	if req.Enabled != nil {
		s.deps.Registry.SetEnabled(name, *req.Enabled)
	}
	if req.Weight != nil {
		s.deps.Registry.SetWeight(name, *req.Weight)
	}

	reg, _ := s.deps.Registry.Get(name)
	meta := reg.Strategy.Metadata()
	c.JSON(http.StatusOK, strategyView{
		Name:            meta.Name,
		Description:     meta.Description,
		Enabled:         reg.Enabled,
		Weight:          reg.Weight,
		RequiredHistory: meta.RequiredHistory,
	})
}
