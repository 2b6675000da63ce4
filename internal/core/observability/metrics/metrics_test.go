package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/motiontrack/internal/core/events/bus"
	"github.com/zeusync/motiontrack/internal/core/haptics"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
)

func TestCollector_FollowsEvents(t *testing.T) {
	b := bus.New()
	c := New()
	require.NoError(t, c.Attach(b))

	id := motion.NewEntityID()
	entity := id.String()

	require.NoError(t, b.Publish(bus.NewEvent(bus.TypeMotionSampled, "test", motion.Snapshot{
		EntityID:  id,
		Mean:      physics.V3(3, 4, 0),
		Peak:      physics.V3(0, 6, 0),
		PeakSpeed: 6,
		Samples:   2,
	})))
	require.NoError(t, b.Publish(bus.NewEvent(bus.TypeMotionPulse, "test", haptics.Pulse{EntityID: id, Amplitude: 1})))
	require.NoError(t, b.Publish(bus.NewEvent(bus.TypeMotionPulse, "test", haptics.Pulse{EntityID: id, Amplitude: 1})))
	c.SetTracked(1)

	require.InDelta(t, 5.0, testutil.ToFloat64(c.meanSpeed.WithLabelValues(entity)), 1e-9)
	require.Equal(t, 6.0, testutil.ToFloat64(c.peakSpeed.WithLabelValues(entity)))
	require.Equal(t, 2.0, testutil.ToFloat64(c.samples.WithLabelValues(entity)))
	require.Equal(t, 2.0, testutil.ToFloat64(c.pulses.WithLabelValues(entity)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.tracked))

	require.NoError(t, b.Publish(bus.NewEvent(bus.TypeMotionUntracked, "test", id)))
	require.Equal(t, 0, testutil.CollectAndCount(c.peakSpeed))
	require.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues(bus.TypeMotionSampled)))
	require.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues(bus.TypeMotionPulse)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues(bus.TypeMotionUntracked)))
	require.Equal(t, 3, testutil.CollectAndCount(c.delivery))
	require.Equal(t, 0, testutil.CollectAndCount(c.deliveryErrors))
}

func TestCollector_ObservesWholeBus(t *testing.T) {
	b := bus.New()
	c := New()
	require.NoError(t, c.Attach(b))
	_, err := b.Subscribe("other", func(bus.Event) error { return nil })
	require.NoError(t, err)

	require.NoError(t, b.PublishBatch(bus.NewEvent("other", "test", nil), bus.NewEvent("other", "test", nil)))
	require.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("other")))
	require.Equal(t, 4.0, c.busSubscribers(), "three motion handlers plus one")
	require.Equal(t, uint64(2), b.GetMetrics().Published)
}

func TestCollector_RejectsUnexpectedPayload(t *testing.T) {
	b := bus.New()
	c := New()
	require.NoError(t, c.Attach(b))

	err := b.Publish(bus.NewEvent(bus.TypeMotionSampled, "test", "not a snapshot"))
	require.ErrorIs(t, err, ErrUnexpectedPayload)
	require.Equal(t, 1.0, testutil.ToFloat64(c.deliveryErrors.WithLabelValues(bus.TypeMotionSampled)))
}

func TestCollector_Detach(t *testing.T) {
	b := bus.New()
	c := New()
	require.NoError(t, c.Attach(b))
	require.NoError(t, c.Detach())

	require.NoError(t, b.Publish(bus.NewEvent(bus.TypeMotionSampled, "test", "ignored")))
	require.Equal(t, 0, testutil.CollectAndCount(c.events))
	require.Zero(t, c.busSubscribers())
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.SetTracked(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "motion_tracked_entities 3")
}
