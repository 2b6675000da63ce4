package simulation

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/systems/physics"
)

// Settings describe the demo orbits.
type Settings struct {
	Entities     int
	Radius       float64
	AngularSpeed float64 // radians per second
	Bob          float64 // vertical amplitude
	Seed         uint64
}

type body struct {
	id     motion.EntityID
	radius float64
	phase  float64
	speed  float64
	bob    float64
}

// Orbits moves bodies around the origin on jittered circles, each with a
// vertical bob, so velocity peaks differ between bodies. The same seed
// always produces the same IDs and trajectories.
type Orbits struct {
	bodies []body
}

func NewOrbits(s Settings) *Orbits {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))

	bodies := make([]body, s.Entities)
	for i := range bodies {
		var raw [16]byte
		for j := 0; j < len(raw); j += 8 {
			v := rng.Uint64()
			for k := 0; k < 8; k++ {
				raw[j+k] = byte(v >> (8 * k))
			}
		}
		bodies[i] = body{
			id:     uuid.NewSHA1(uuid.NameSpaceOID, raw[:]),
			radius: s.Radius * (0.75 + 0.5*rng.Float64()),
			phase:  rng.Float64() * 2 * math.Pi,
			speed:  s.AngularSpeed * (0.5 + rng.Float64()),
			bob:    s.Bob * rng.Float64(),
		}
	}
	return &Orbits{bodies: bodies}
}

// Sample returns every body position at elapsed simulated time.
func (o *Orbits) Sample(elapsed time.Duration) []motion.Sample {
	t := elapsed.Seconds()
	out := make([]motion.Sample, len(o.bodies))
	for i, b := range o.bodies {
		angle := b.phase + b.speed*t
		out[i] = motion.Sample{
			EntityID: b.id,
			Position: physics.V3(
				b.radius*math.Cos(angle),
				b.bob*math.Sin(2*angle),
				b.radius*math.Sin(angle),
			),
		}
	}
	return out
}
