package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type simpleEvent struct {
	id      string
	typeStr string
	source  string
	ts      time.Time
	data    any
}

func (e simpleEvent) ID() string           { return e.id }
func (e simpleEvent) Type() string         { return e.typeStr }
func (e simpleEvent) Source() string       { return e.source }
func (e simpleEvent) Timestamp() time.Time { return e.ts }
func (e simpleEvent) Data() any            { return e.data }

// NewEvent creates an Event stamped with a fresh ID and the current time.
func NewEvent(typ, src string, data any) Event {
	return simpleEvent{id: uuid.NewString(), typeStr: typ, source: src, ts: time.Now(), data: data}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler

	mu     sync.Mutex
	active bool
	cancel func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// inMemoryBus implements EventBus.
type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> subID -> subscription
	handlers  map[string]map[string]*subscription
	metrics   EventBusMetrics
	observers map[EventBusObserver]struct{}
}

func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string]map[string]*subscription),
		observers: make(map[EventBusObserver]struct{}),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	return b.deliver(event)
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	s := &subscription{id: id, eventType: eventType, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.handlers[eventType]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(b.handlers, eventType)
			}
		}
	}
	b.handlers[eventType][id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) AddObserver(obs EventBusObserver) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs EventBusObserver) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) GetMetrics() EventBusMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) deliver(event Event) error {
	if event == nil {
		return ErrNilEvent
	}

	start := time.Now()
	etype := event.Type()

	b.mu.RLock()
	var subs []*subscription
	if m := b.handlers[etype]; m != nil {
		subs = make([]*subscription, 0, len(m))
		for _, s := range m {
			subs = append(subs, s)
		}
	}
	observers := make([]EventBusObserver, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	for _, obs := range observers {
		obs.OnPublish(etype, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) == 0 {
		return all
	}

	dur := time.Since(start)
	for _, obs := range observers {
		obs.OnDelivered(etype, delivered, all, dur)
	}

	// metrics are only kept while observed
	b.mu.Lock()
	b.metrics.Published++
	b.metrics.DeliveredHandlers += uint64(delivered)
	if all != nil {
		b.metrics.Errors++
	}
	var subsCount uint64
	for _, m := range b.handlers {
		subsCount += uint64(len(m))
	}
	b.metrics.SubscribersActive = subsCount
	b.mu.Unlock()

	return all
}
