// Package connection maintains the websocket session to the game server.
//
// A Manager dials the server with the session cookie obtained at login,
// publishes every inbound text frame as an events.RawMessage on its bot's
// bus and reconnects with a doubling backoff whenever the session drops.
//
// Lifecycle:
//
//	mgr := connection.New(cfg.Server, cookie, bus, logger)
//	go mgr.Run(ctx)            // blocks until ctx is cancelled
//	mgr.Send(ctx, "chatPM", payload)
//
// Send never blocks on a reconnect: while no session is established the
// command is logged and dropped.
package connection
