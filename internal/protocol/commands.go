package protocol

// Inbound command names.
const (
	CmdWelcome        = "welcome"
	CmdWarning        = "warning"
	CmdError          = "error"
	CmdChat           = "chat"
	CmdTable          = "table"
	CmdTableList      = "tableList"
	CmdTableGone      = "tableGone"
	CmdTableStart     = "tableStart"
	CmdInit           = "init"
	CmdGameAction     = "gameAction"
	CmdGameActionList = "gameActionList"
	CmdDatabaseID     = "databaseID"
)

// Outbound command names.
const (
	CmdGetGameInfo2 = "getGameInfo2"
	CmdAction       = "action"
	CmdChatPM       = "chatPM"
)

// InboundCommands lists every inbound command the server is known to send.
var InboundCommands = []string{
	CmdWelcome,
	CmdWarning,
	CmdError,
	CmdChat,
	CmdTable,
	CmdTableList,
	CmdTableGone,
	CmdTableStart,
	CmdInit,
	CmdGameAction,
	CmdGameActionList,
	CmdDatabaseID,
}
