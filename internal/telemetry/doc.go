// Package telemetry fans device snapshots out to MQTT and InfluxDB.
//
// The fleet manager's reporter loop hands the agent one info and one stats
// snapshot per connected camera every reporting cycle. The agent publishes
// both as retained JSON on the device's MQTT topics and mirrors the stats
// sample into InfluxDB for history.
//
//	agent := telemetry.NewAgent(mqttClient, influxClient)
//	mgr, err := fleet.New(cfg, fleet.Options{
//	    Factory: factory,
//	    Sink:    agent,
//	})
//
// The InfluxDB writer is optional: pass nil when the time-series backend is
// disabled and stats go to MQTT only.
package telemetry
