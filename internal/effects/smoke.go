package effects

import (
	"math"
	"math/rand/v2"
)

// SmokeConfig controls particle spawning and integration.
type SmokeConfig struct {
	// Growth is added to each particle's radius every tick, in pixels.
	Growth float64
	// Decay is subtracted from each particle's life every tick.
	Decay float64
	// PerPuff is the number of particles spawned by one Puff.
	PerPuff int
	// MaxParticles caps the live particle list; the oldest are dropped first.
	MaxParticles int
	// MinRadius and MaxRadius bound the spawn radius in pixels.
	MinRadius float64
	MaxRadius float64
	// Speed bounds the spawn speed in pixels per tick.
	Speed float64
}

// DefaultSmokeConfig returns settings tuned for a 60 Hz refresh.
func DefaultSmokeConfig() SmokeConfig {
	return SmokeConfig{
		Growth:       0.6,
		Decay:        0.015,
		PerPuff:      14,
		MaxParticles: 240,
		MinRadius:    18,
		MaxRadius:    34,
		Speed:        1.6,
	}
}

// Particle is one smoke puff in canvas pixel space.
type Particle struct {
	X, Y        float64
	VX, VY      float64
	Radius      float64
	Life        float64
	InitialLife float64
}

// Alpha returns the particle opacity, proportional to its remaining life.
func (p Particle) Alpha() float64 {
	if p.InitialLife <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, p.Life/p.InitialLife))
}

// Smoke is an ephemeral list of particles integrated once per tick.
type Smoke struct {
	cfg       SmokeConfig
	rng       *rand.Rand
	particles []Particle
}

// NewSmoke creates an empty smoke system. The seed makes spawning reproducible.
func NewSmoke(cfg SmokeConfig, seed uint64) *Smoke {
	return &Smoke{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Puff spawns a burst of particles around (x, y).
func (s *Smoke) Puff(x, y float64) {
	for i := 0; i < s.cfg.PerPuff; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := s.cfg.Speed * (0.3 + 0.7*s.rng.Float64())
		life := 0.6 + 0.4*s.rng.Float64()

		s.particles = append(s.particles, Particle{
			X:           x + math.Cos(angle)*s.cfg.MinRadius*0.5,
			Y:           y + math.Sin(angle)*s.cfg.MinRadius*0.5,
			VX:          math.Cos(angle) * speed,
			VY:          math.Sin(angle)*speed - 0.4, // drift upward
			Radius:      s.cfg.MinRadius + (s.cfg.MaxRadius-s.cfg.MinRadius)*s.rng.Float64(),
			Life:        life,
			InitialLife: life,
		})
	}

	if s.cfg.MaxParticles > 0 && len(s.particles) > s.cfg.MaxParticles {
		s.particles = append(s.particles[:0], s.particles[len(s.particles)-s.cfg.MaxParticles:]...)
	}
}

// Step integrates every particle once and removes the dead ones.
func (s *Smoke) Step() {
	alive := s.particles[:0]
	for _, p := range s.particles {
		p.X += p.VX
		p.Y += p.VY
		p.Radius += s.cfg.Growth
		p.Life -= s.cfg.Decay
		if p.Life <= 0 {
			continue
		}
		alive = append(alive, p)
	}
	s.particles = alive
}

// Particles returns the live particles. The slice is only valid until the next Step or Puff.
func (s *Smoke) Particles() []Particle {
	return s.particles
}

// Len returns the number of live particles.
func (s *Smoke) Len() int {
	return len(s.particles)
}

// Clear removes every particle.
func (s *Smoke) Clear() {
	s.particles = s.particles[:0]
}
