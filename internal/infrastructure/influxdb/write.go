package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementBotAction     = "bot_action"
	MeasurementBotConnection = "bot_connection"
)

// WriteBotAction records one action a bot sent and how long it took to decide.
func (c *Client) WriteBotAction(bot string, tableID int, actionType string, decision time.Duration) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(botActionPoint(bot, tableID, actionType, decision, time.Now()))
}

// WriteBotConnection records a connection state change of a bot.
// retryIn is zero for "connected".
func (c *Client) WriteBotConnection(bot, state string, retryIn time.Duration) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(botConnectionPoint(bot, state, retryIn, time.Now()))
}

func botActionPoint(bot string, tableID int, actionType string, decision time.Duration, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementBotAction,
		map[string]string{
			"bot":         bot,
			"table_id":    strconv.Itoa(tableID),
			"action_type": actionType,
		},
		map[string]interface{}{
			"decision_ms": decision.Milliseconds(),
		},
		ts,
	)
}

func botConnectionPoint(bot, state string, retryIn time.Duration, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementBotConnection,
		map[string]string{
			"bot":   bot,
			"state": state,
		},
		map[string]interface{}{
			"retry_in_s": retryIn.Seconds(),
		},
		ts,
	)
}
