/*
Package monitoring provides Prometheus metrics for the workspace server.

Each Metrics value owns a private registry, so several servers (or tests)
can live in one process. It tracks HTTP traffic by route template, live
workspace sessions, workspace commands by outcome, and WebSocket traffic.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "select")
	// ... apply the command ...
	timer.Stop("ok")
*/
package monitoring
