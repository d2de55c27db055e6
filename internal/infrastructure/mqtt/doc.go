// Package mqtt publishes bot presence to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retain flags
//   - Last Will and Testament (LWT) so a crashed process shows as offline
//
// Presence is optional. When the broker is down at startup the process runs
// without it; once connected, paho reconnects on its own.
//
// # Topics
//
//	oraclehlb/system/status          process online/offline (retained, LWT)
//	oraclehlb/bot/{name}/status      bot connection state (retained)
//	oraclehlb/bot/{name}/action      every action a bot sends
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.PublishRetained(mqtt.Topics{}.BotStatus("oraclehlb1"), payload)
package mqtt
