package bus

import "time"

// Event types published by the motion pipeline.
const (
	TypeMotionSampled   = "motion.sampled"   // Data: motion.Snapshot
	TypeMotionPulse     = "motion.pulse"     // Data: haptics.Pulse
	TypeMotionUntracked = "motion.untracked" // Data: motion.EntityID
)

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Handlers subscribe by Event.Type() and are called synchronously in the
// publisher's goroutine. Handler errors are joined and returned from Publish.
// Metrics are only collected while at least one observer is registered.
type EventBus interface {
	// Publish delivers event to every active subscriber of event.Type().
	Publish(event Event) error
	// Subscribe registers handler for eventType.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error
	// PublishBatch publishes events in order and joins all errors.
	// A failing event does not stop the rest of the batch.
	PublishBatch(events ...Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
}

// Event is an immutable message. Treat Data as read-only.
type Event interface {
	ID() string
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type EventHandler func(event Event) error

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// EventBusObserver is notified around every delivery. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
