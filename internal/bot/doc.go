// Package bot assembles one logged-in bot: its own event bus, connection
// manager, protocol parser, table tracker and strategy.
//
// An Instance lives for one supervised run. Run blocks until the context is
// cancelled; on return every subscription the instance made on the
// process-wide bus is removed so a restarted instance starts clean.
//
// Turns are decided off the receive path: the OurTurn handler starts the
// strategy in its own goroutine, so a slow strategy never holds up frames
// for other tables.
package bot
