// Package tracker keeps one bot's view of its tables and reacts to
// decoded server commands.
//
// A Tracker subscribes to events.CommandReceived on its bot's bus and
// routes each command through a fixed registry:
//
//   - init creates (or replaces) the table and requests extended game info
//   - gameAction of type "turn" moves the current seat and publishes
//     events.OurTurn when the seat is ours
//   - chat relays a "ping" to the process-wide bus as events.GlobalPing
//   - every other known command is logged and otherwise ignored
//
// Commands the registry does not know are dropped silently.
//
// The tracker also answers events.GlobalPing from the process-wide bus,
// so any running bot may reply to a ping another bot observed.
package tracker
