package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeusync/motiontrack/internal/core/events/bus"
	"github.com/zeusync/motiontrack/internal/core/haptics"
	"github.com/zeusync/motiontrack/internal/core/motion"
)

const namespace = "motion"

var ErrUnexpectedPayload = errors.New("unexpected event payload")

var _ bus.EventBusObserver = (*Collector)(nil)

// Collector exports tracker state to Prometheus. It is fed from the event bus,
// both as a subscriber of motion events and as a bus observer, and owns its
// own registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	meanSpeed      *prometheus.GaugeVec
	peakSpeed      *prometheus.GaugeVec
	samples        *prometheus.GaugeVec
	pulses         *prometheus.CounterVec
	tracked        prometheus.Gauge
	events         *prometheus.CounterVec
	delivery       *prometheus.HistogramVec
	deliveryErrors *prometheus.CounterVec

	mu       sync.Mutex
	attached bus.EventBus
	subs     []bus.Subscription
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		meanSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_speed",
			Help:      "Magnitude of the rolling mean velocity",
		}, []string{"entity"}),
		peakSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_speed",
			Help:      "Magnitude of the peak velocity in the window",
		}, []string{"entity"}),
		samples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_samples",
			Help:      "Number of velocity samples resident in the window",
		}, []string{"entity"}),
		pulses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "haptic_pulses_total",
			Help:      "Haptic pulses emitted",
		}, []string{"entity"}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_entities",
			Help:      "Entities currently tracked",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events published on the bus",
		}, []string{"type"}),
		delivery: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_delivery_seconds",
			Help:      "Time spent running the handlers of one event",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"type"}),
		deliveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_delivery_errors_total",
			Help:      "Events whose handlers returned an error",
		}, []string{"type"}),
	}
	subscribers := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bus_subscribers",
		Help:      "Active subscriptions on the attached bus",
	}, c.busSubscribers)

	c.registry.MustRegister(c.meanSpeed, c.peakSpeed, c.samples, c.pulses, c.tracked,
		c.events, c.delivery, c.deliveryErrors, subscribers)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Attach subscribes the collector to motion events on b and registers it as
// an observer of every delivery.
func (c *Collector) Attach(b bus.EventBus) error {
	c.mu.Lock()
	c.attached = b
	c.mu.Unlock()
	b.AddObserver(c)

	handlers := map[string]bus.EventHandler{
		bus.TypeMotionSampled:   c.onSampled,
		bus.TypeMotionPulse:     c.onPulse,
		bus.TypeMotionUntracked: c.onUntracked,
	}
	for eventType, h := range handlers {
		sub, err := b.Subscribe(eventType, h)
		if err != nil {
			_ = c.Detach()
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
		c.subs = append(c.subs, sub)
	}
	return nil
}

// Detach cancels every subscription made by Attach and stops observing.
func (c *Collector) Detach() error {
	c.mu.Lock()
	b := c.attached
	c.attached = nil
	c.mu.Unlock()
	if b != nil {
		b.RemoveObserver(c)
	}

	var errs []error
	for _, sub := range c.subs {
		errs = append(errs, sub.Cancel())
	}
	c.subs = nil
	return errors.Join(errs...)
}

// OnPublish counts every event published on the attached bus.
func (c *Collector) OnPublish(eventType string, _ bus.Event) {
	c.events.WithLabelValues(eventType).Inc()
}

func (c *Collector) OnDelivered(eventType string, _ int, err error, duration time.Duration) {
	c.delivery.WithLabelValues(eventType).Observe(duration.Seconds())
	if err != nil {
		c.deliveryErrors.WithLabelValues(eventType).Inc()
	}
}

func (c *Collector) busSubscribers() float64 {
	c.mu.Lock()
	b := c.attached
	c.mu.Unlock()
	if b == nil {
		return 0
	}
	return float64(b.GetMetrics().SubscribersActive)
}

// SetTracked reports the registry size.
func (c *Collector) SetTracked(n int) { c.tracked.Set(float64(n)) }

func (c *Collector) onSampled(e bus.Event) error {
	snap, ok := e.Data().(motion.Snapshot)
	if !ok {
		return fmt.Errorf("%w: %s carries %T", ErrUnexpectedPayload, e.Type(), e.Data())
	}

	entity := snap.EntityID.String()
	c.meanSpeed.WithLabelValues(entity).Set(snap.Mean.Magnitude())
	c.peakSpeed.WithLabelValues(entity).Set(snap.PeakSpeed)
	c.samples.WithLabelValues(entity).Set(float64(snap.Samples))
	return nil
}

func (c *Collector) onPulse(e bus.Event) error {
	pulse, ok := e.Data().(haptics.Pulse)
	if !ok {
		return fmt.Errorf("%w: %s carries %T", ErrUnexpectedPayload, e.Type(), e.Data())
	}
	c.pulses.WithLabelValues(pulse.EntityID.String()).Inc()
	return nil
}

func (c *Collector) onUntracked(e bus.Event) error {
	id, ok := e.Data().(motion.EntityID)
	if !ok {
		return fmt.Errorf("%w: %s carries %T", ErrUnexpectedPayload, e.Type(), e.Data())
	}

	entity := id.String()
	c.meanSpeed.DeleteLabelValues(entity)
	c.peakSpeed.DeleteLabelValues(entity)
	c.samples.DeleteLabelValues(entity)
	c.pulses.DeleteLabelValues(entity)
	return nil
}
