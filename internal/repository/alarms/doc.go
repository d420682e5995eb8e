// Package alarms implements the durable alarm list.
//
// Records are encoded in a flat delimited format (one segment per record,
// fields joined by commas, segments joined by '|') and kept under a single
// key of the process-local key-value store. Loading is fail-soft: a malformed
// segment is dropped and the rest of the list still loads.
package alarms
