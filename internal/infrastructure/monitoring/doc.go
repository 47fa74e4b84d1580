/*
Package monitoring provides Prometheus metrics for the shell backend.

Every Metrics value owns a private registry, exposed through Handler:

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

Tracked series cover HTTP traffic, window launches and chrome commands,
bridge messages relayed or dropped by the hub, session saves and restores,
integration route calls, and bridge websocket connections.

	timer := monitoring.NewTimer(metrics, "wallet", "create_identity")
	// ... call the provider ...
	timer.Stop("success")
*/
package monitoring
