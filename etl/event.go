package etl

import (
	"sync"
)

const (
	EventRunStarted   = "run.started"
	EventStageChanged = "run.stage"
	EventRunFinished  = "run.finished"
	EventRunFailed    = "run.failed"
)

type Event struct {
	Name string
	Run  Run
}

type EventHandler func(Event)

// EventBus fans run events out to subscribers. Handlers are called
// synchronously in subscription order.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(eventName string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventName] = append(eb.handlers[eventName], handler)
}

func (eb *EventBus) Publish(eventName string, run *Run) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	hs := append([]EventHandler(nil), eb.handlers[eventName]...)
	eb.mu.RUnlock()
	if len(hs) == 0 {
		return
	}
	ev := Event{Name: eventName, Run: *run}
	for _, h := range hs {
		h(ev)
	}
}
