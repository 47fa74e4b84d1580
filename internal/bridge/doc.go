/*
Package bridge implements the message channel between the OS shell and an
embedded bApp.

Messages form a closed set (app-ready, os-config, navigate-home,
theme-change, INSERT_AI_TEXT) and travel as flat JSON objects:

	{"type":"theme-change","theme":{"mode":"light"}}

A Bridge is built for one host/app pair. Send posts to the parent only when
embedded and never waits for an acknowledgement. Receive decodes a frame,
applies os-config and theme-change to the bridge's own state, then hands the
message to listeners registered with On. Frames that do not decode are
dropped.

	b := bridge.New(conn, bridge.WithProbe(probe))
	off := b.On(bridge.TypeThemeChange, func(m bridge.Message) { ... })
	defer off()
	go b.Run(ctx, conn)
	_ = b.Send(ctx, bridge.AppReady{AppID: "wallet"})
*/
package bridge
