package simulation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zeusync/motiontrack/internal/core/motion"
)

func sampledIDs(o *Orbits) []motion.EntityID {
	var ids []motion.EntityID
	for _, s := range o.Sample(0) {
		ids = append(ids, s.EntityID)
	}
	return ids
}

func TestOrbits_Deterministic(t *testing.T) {
	s := Settings{Entities: 3, Radius: 2, AngularSpeed: 1, Bob: 0.5, Seed: 7}
	a, b := NewOrbits(s), NewOrbits(s)

	require.Equal(t, sampledIDs(a), sampledIDs(b))
	require.Equal(t, a.Sample(1500*time.Millisecond), b.Sample(1500*time.Millisecond))

	other := NewOrbits(Settings{Entities: 3, Radius: 2, AngularSpeed: 1, Seed: 8})
	require.NotEqual(t, sampledIDs(a), sampledIDs(other))
}

func TestOrbits_StayWithinRadius(t *testing.T) {
	o := NewOrbits(Settings{Entities: 5, Radius: 1, AngularSpeed: 3, Bob: 0.2, Seed: 1})
	ids := map[string]bool{}
	for _, id := range sampledIDs(o) {
		ids[id.String()] = true
	}
	require.Len(t, ids, 5)

	for step := 0; step < 50; step++ {
		for _, s := range o.Sample(time.Duration(step) * 20 * time.Millisecond) {
			horizontal := math.Hypot(s.Position.X, s.Position.Z)
			require.LessOrEqual(t, horizontal, 1.25+1e-9)
			require.GreaterOrEqual(t, horizontal, 0.75-1e-9)
			require.LessOrEqual(t, math.Abs(s.Position.Y), 0.2+1e-9)
			require.True(t, s.Position.IsFinite())
		}
	}
}

func TestOrbits_Empty(t *testing.T) {
	o := NewOrbits(Settings{})
	require.Empty(t, sampledIDs(o))
	require.Empty(t, o.Sample(time.Second))
}
