// Package observe reports what the bots do to systems outside the game.
//
// Each observer attaches to one bot's bus and turns its events into:
//
//	Presence   retained MQTT status and action topics
//	Telemetry  InfluxDB points (decision time, connection changes)
//	Journal    rows in the SQLite game journal
//
// Observers never send anything to the game server. A failing backend is
// logged and skipped; the bot keeps playing.
package observe
