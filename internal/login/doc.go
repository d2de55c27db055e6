// Package login exchanges a bot's username and password for the session
// cookie the game server expects on the websocket handshake.
//
// The login is a form POST of username, password and version=bot. A 2xx
// response carrying a non-empty hanabi.sid cookie succeeds; anything else
// is ErrAuthFailed.
//
// Usage:
//
//	auth := login.New(cfg.Server.AuthURL, nil, logger)
//	cookie, err := auth.Authenticate(ctx, "oraclehlb1", password)
//	if errors.Is(err, login.ErrAuthFailed) {
//	    // retry later or give up on this bot
//	}
//
// The returned value is ready to use as the Cookie header of the
// websocket dial.
package login
