/*
We pass context through context.Context between the app and the
extensions. To do so, this package defines some common keys to store info,
such as the logger and the event log of the running operation.

There should exist two functions for every XYZ of type T
that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package dao

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just an alias for the standard implementation.
// We use functions to extend it to our domain
type Context = context.Context

type contextKey int // local to the dao module

const (
	contextKeyLogger contextKey = iota
	contextKeyEvents
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()
)

// WithLogger sets the logger for this context
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok || val == nil {
		return DefaultLogger
	}
	return val
}

// WithEventLog attaches the log that collects events emitted while the
// operation runs.
func WithEventLog(ctx Context, events *EventLog) Context {
	return context.WithValue(ctx, contextKeyEvents, events)
}

// GetEventLog returns the event log attached to the context, if any.
func GetEventLog(ctx Context) (*EventLog, bool) {
	val, ok := ctx.Value(contextKeyEvents).(*EventLog)
	return val, ok && val != nil
}
