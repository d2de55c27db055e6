// Package api serves a read-only HTTP view of the running bots.
//
//	GET /health                          process and backend health
//	GET /api/v1/bots                     supervision stats of every bot
//	GET /api/v1/bots/{name}/tables       tables the bot currently tracks
//	GET /api/v1/bots/{name}/actions      journalled actions (?table=&limit=)
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Nothing here can reach the game server; the API only reads.
package api
