package dao

import (
	"github.com/tendermint/tendermint/libs/common"
)

// Event is a notification about a successfully applied operation.
type Event interface {
	// EventName is a short, stable name of the event kind.
	EventName() string
	// Tags returns the event attributes as key/value pairs, the same
	// shape tendermint uses to index transaction results.
	Tags() []common.KVPair
}

// EventSink receives events once the operation that emitted them is
// committed.
type EventSink interface {
	Publish(Event)
}

// EventSinkFunc provides EventSink interface support.
type EventSinkFunc func(Event)

// Publish calls the function.
func (fn EventSinkFunc) Publish(e Event) {
	fn(e)
}

// EventLog collects events emitted during a single operation. Nothing is
// published until the owner of the log decides that the operation
// succeeded.
//
// EventLog is not safe for concurrent use.
type EventLog struct {
	events []Event
}

// Emit appends an event to the log.
func (l *EventLog) Emit(e Event) {
	l.events = append(l.events, e)
}

// Savepoint returns a marker that can be used to drop all events emitted
// after this call.
func (l *EventLog) Savepoint() int {
	return len(l.events)
}

// Rollback drops all events emitted after given savepoint was taken.
func (l *EventLog) Rollback(savepoint int) {
	if savepoint < len(l.events) {
		l.events = l.events[:savepoint]
	}
}

// Events returns all collected events in the order they were emitted.
func (l *EventLog) Events() []Event {
	return l.events
}

// EmitEvent records given event in the event log attached to the context.
// When no log is attached the event is dropped.
func EmitEvent(ctx Context, e Event) {
	if l, ok := GetEventLog(ctx); ok {
		l.Emit(e)
	}
}
