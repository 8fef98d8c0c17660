// Package publish streams run progress to an MQTT broker.
//
// Topics, for a sink with prefix P and run R:
//
//	P/R/tick     one JSON TickRecord per tick, QoS 1
//	P/R/outcome  the RunRecord, QoS 1, retained; "running" at start and the
//	             final status at the end
package publish
