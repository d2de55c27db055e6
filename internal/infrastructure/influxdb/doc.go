// Package influxdb writes bot telemetry to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteBotAction("oraclehlb1", 5, "clueRank", 512*time.Millisecond)
//
// # Measurements
//
//	bot_action      tags: bot, table_id, action_type   fields: decision_ms
//	bot_connection  tags: bot, state                   fields: retry_in_s
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Writes are non-blocking and batched (batch_size, flush_interval); write
// failures arrive asynchronously and are logged as warnings. Every point
// carries the tag service=oraclehlb.
package influxdb
