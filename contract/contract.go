//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chatroom/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live session's delivery endpoint. Consume must not
// block the bus: a sink whose transport is gone simply drops the event.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IBus fans domain events out to every registered session, at most once
// per session, best effort.
type IBus interface {
	Subscribe(sessionID string, sink EventSink)
	Unsubscribe(sessionID string)
	Publish(ctx context.Context, e event.DomainEvent)
}
