package mqtt

import "fmt"

// Topic prefixes.
const (
	// TopicPrefix is the root of every topic this process publishes.
	TopicPrefix = "oraclehlb"

	// TopicPrefixSystem is the base for process-level topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixBot is the base for per-bot topics.
	TopicPrefixBot = TopicPrefix + "/bot"
)

// Topics provides builders for the presence topics.
//
//	topics := mqtt.Topics{}
//	topics.BotStatus("oraclehlb1")
//	// Returns: "oraclehlb/bot/oraclehlb1/status"
type Topics struct{}

// SystemStatus returns the process status topic (online/offline, LWT).
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// BotStatus returns the retained connection-state topic of one bot.
//
// Example: oraclehlb/bot/oraclehlb1/status
func (Topics) BotStatus(bot string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixBot, bot)
}

// BotAction returns the topic a bot's sent actions are mirrored to.
//
// Example: oraclehlb/bot/oraclehlb1/action
func (Topics) BotAction(bot string) string {
	return fmt.Sprintf("%s/%s/action", TopicPrefixBot, bot)
}

// AllBotStatuses returns a wildcard matching every bot status topic.
func (Topics) AllBotStatuses() string {
	return TopicPrefixBot + "/+/status"
}
