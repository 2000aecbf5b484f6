package config

// Default network ports for the decision pipeline's own processes. Exchanges,
// LLM providers, and other external services are configured by URL, not by
// port constant, so this file only names ports the binaries in this repo
// actually bind.
const (
	// APIServerPort is the default gin HTTP server port.
	APIServerPort = 8080

	// PrometheusPort is the default port the /metrics endpoint is served on
	// when it runs as a separate listener from the main API server.
	PrometheusPort = 9090
)
