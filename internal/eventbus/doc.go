// Package eventbus provides the in-process publish/subscribe primitive that
// ties a bot together.
//
// Every bot owns one Bus. A second, process-wide Bus is created in main and
// handed to every bot so that one bot can signal all others.
//
// Publish is a direct fan-out: all handlers for the event type run in their
// own goroutines and Publish returns once every one of them has finished.
// A failing or panicking handler is logged and never affects its siblings or
// the publisher. There is no queue; an event with no handlers is dropped.
package eventbus
