// Package protocol implements the hanab.live line protocol.
//
// Every frame, in either direction, is a command name, one space and a JSON
// object:
//
//	gameAction {"tableID":5,"action":{"type":"turn","currentPlayerIndex":2}}
//
// Decode and Encode are stateless. Parser bridges the bot's event bus:
// RawMessage in, CommandReceived out. A frame that cannot be decoded is
// logged and dropped; nothing is retried.
package protocol
