// Package analytics records pageview and click events and turns a window of
// them into the dashboard statistics.
//
// The Ingestor classifies the client once, at write time, and appends one
// immutable event. The Aggregator loads a bounded snapshot of events for a
// time range and derives every view from that same snapshot. Neither holds
// state between calls beyond the injected EventRepository.
package analytics
