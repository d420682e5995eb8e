// Package control implements the gRPC control API of the alarm daemon.
//
// The service is small enough that it is described by hand with the
// protobuf well-known types instead of generated stubs: alarm ids travel as
// Int64Value (0 addresses every active alert) and structured replies as
// Struct. Server adapts the trigger controller and the scheduler; Client is
// what the command line uses to talk to a running daemon.
package control
