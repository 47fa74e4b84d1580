// Package server wires the shell together and runs it.
//
// NewServer builds, in order: logger, metrics, tracer, storage (SQLite or
// memory), the app registry, the window manager with its embed probe,
// sessions, the bridge hub, the integration providers and the gin router
// with its middleware. Run serves until its context ends and then drains
// connections within the shutdown timeout.
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	err = srv.Run(ctx)
package server
