// Package supervisor keeps every configured bot running.
//
// Each bot gets its own loop: log in, build an instance, run it. Any failure
// other than shutdown is logged and the loop starts over after a fixed
// restart delay, forever. Loops run concurrently and share nothing but the
// process-wide bus their instances were built with.
//
// Example usage:
//
//	sup := supervisor.New(supervisor.Config{
//	    Bots:         cfg.Bots,
//	    RestartDelay: cfg.Supervisor.RestartDelay,
//	}, authenticator, build, logger)
//
//	err := sup.Run(ctx) // returns once ctx is cancelled
package supervisor
