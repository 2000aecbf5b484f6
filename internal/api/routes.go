package api

// setupRoutes configures all API routes. The Prometheus /metrics endpoint
// is served on its own port by internal/metrics.Server (wired in cmd/api's
// main), not on this router, matching the teacher's separate
// metrics/scrape-port deployment shape.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ready", s.handleReady)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/instruments", s.handleListInstruments)

		v1.GET("/recommendations/:instrument", s.handleGetRecommendation)
		v1.GET("/recommendations/:instrument/history", s.handleGetRecommendationHistory)
		v1.POST("/recommendations/:instrument/refresh", s.handleRefreshRecommendation)

		v1.GET("/strategies", s.handleListStrategies)
		v1.PUT("/strategies/:name", s.handleUpdateStrategy)

		v1.GET("/indicators/:instrument", s.handleGetIndicators)
	}
}
