package effects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash_Decay(t *testing.T) {
	f := NewFlash(0.85, 0.02)
	assert.False(t, f.Visible(), "untriggered flash is invisible")
	assert.Equal(t, 0.0, f.Step())

	f.Trigger()
	for n := 0; n < 10; n++ {
		assert.InDelta(t, math.Pow(0.85, float64(n)), f.Alpha(), 1e-12, "alpha after %d ticks", n)
		assert.InDelta(t, math.Pow(0.85, float64(n)), f.Step(), 1e-12)
	}
}

func TestFlash_StopsBelowThreshold(t *testing.T) {
	f := NewFlash(0.85, 0.02)
	f.Trigger()

	// 0.85^24 ≈ 0.0202, 0.85^25 ≈ 0.0172
	drawn := 0
	for i := 0; i < 100; i++ {
		if f.Step() > 0 {
			drawn++
		}
	}
	assert.Equal(t, 25, drawn)
	assert.False(t, f.Visible())
	assert.Equal(t, 0.0, f.Alpha())
}

func TestFlash_Retrigger(t *testing.T) {
	f := NewFlash(DefaultFlashDecay, DefaultFlashThreshold)
	f.Trigger()
	f.Step()
	f.Step()
	f.Trigger()
	assert.Equal(t, 1.0, f.Alpha())
}

func TestSmoke_Integration(t *testing.T) {
	cfg := DefaultSmokeConfig()
	s := NewSmoke(cfg, 1)
	s.Puff(100, 200)
	require.Equal(t, cfg.PerPuff, s.Len())

	before := append([]Particle(nil), s.Particles()...)
	s.Step()
	after := s.Particles()
	require.Len(t, after, len(before))

	for i := range after {
		assert.InDelta(t, before[i].X+before[i].VX, after[i].X, 1e-9)
		assert.InDelta(t, before[i].Y+before[i].VY, after[i].Y, 1e-9)
		assert.InDelta(t, before[i].Radius+cfg.Growth, after[i].Radius, 1e-9)
		assert.InDelta(t, before[i].Life-cfg.Decay, after[i].Life, 1e-9)
		assert.Less(t, after[i].Alpha(), 1.0)
		assert.Greater(t, after[i].Alpha(), 0.0)
	}
}

func TestSmoke_SpawnBounds(t *testing.T) {
	cfg := DefaultSmokeConfig()
	s := NewSmoke(cfg, 42)
	s.Puff(0, 0)

	for _, p := range s.Particles() {
		assert.Greater(t, p.Life, 0.0)
		assert.LessOrEqual(t, p.Life, 1.0)
		assert.Equal(t, p.Life, p.InitialLife)
		assert.Equal(t, 1.0, p.Alpha())
		assert.GreaterOrEqual(t, p.Radius, cfg.MinRadius)
		assert.LessOrEqual(t, p.Radius, cfg.MaxRadius)
	}
}

func TestSmoke_ParticlesDie(t *testing.T) {
	cfg := DefaultSmokeConfig()
	s := NewSmoke(cfg, 3)
	s.Puff(50, 50)

	// max life 1.0 at 0.015 per tick is gone after 67 ticks
	for i := 0; i < 67; i++ {
		s.Step()
		for _, p := range s.Particles() {
			require.Greater(t, p.Life, 0.0)
		}
	}
	assert.Equal(t, 0, s.Len())
}

func TestSmoke_Cap(t *testing.T) {
	cfg := DefaultSmokeConfig()
	cfg.MaxParticles = 20
	s := NewSmoke(cfg, 5)

	s.Puff(0, 0)
	s.Puff(10, 10)
	assert.Equal(t, 20, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}
