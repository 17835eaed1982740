package simulation

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/obstacle"
)

func vec(x, y float64) geometry.Vector2D { return geometry.Vector2D{X: x, Y: y} }

func boidAt(x, y, vx, vy float64) *Agent {
	return &Agent{ID: "b", Kind: Steerable, Pos: vec(x, y), Vel: vec(vx, vy), MaxSpeed: 0.7, MaxForce: 0.15}
}

// quietConfig switches every behaviour off so a test can turn on just one.
func quietConfig() *Config {
	cfg := DefaultConfig()
	cfg.SeparationFactor = 0
	cfg.AlignmentFactor = 0
	cfg.CohesionFactor = 0
	cfg.AvoidanceFactor = 0
	cfg.PredatorFactor = 0
	cfg.SeekingFactor = 0
	cfg.AssemblySeekingFactor = 0
	return cfg
}

func TestSeparation_PushesAway(t *testing.T) {
	// Setup: Me is at 0,0. Friend is at 10,0, inside the protected range.
	// Should be pushed away (negative X).
	cfg := quietConfig()
	cfg.ProtectedRange = 20
	cfg.SeparationFactor = 1
	me := boidAt(0, 0, 0, 0)
	friend := boidAt(10, 0, 0, 0)

	f := Separation(me, []*Agent{me, friend}, cfg)

	if f.X >= 0 {
		t.Errorf("Expected negative x (separation), got %v", f)
	}
	if f.Y != 0 {
		t.Errorf("Expected 0 y, got %f", f.Y)
	}

	acc := ComputeSteering(me, []*Agent{me, friend}, nil, nil, Goal{}, cfg)
	if !acc.Eq(f) {
		t.Errorf("Expected weighted sum %v to equal separation %v", acc, f)
	}
}

func TestSeparation_CoincidentAgents(t *testing.T) {
	cfg := quietConfig()
	cfg.ProtectedRange = 20
	me := boidAt(5, 5, 0, 0)
	twin := boidAt(5, 5, 0, 0)

	f := Separation(me, []*Agent{twin}, cfg)

	if math.IsNaN(f.X) || math.IsNaN(f.Y) || math.IsInf(f.X, 0) {
		t.Fatalf("Expected a finite force, got %v", f)
	}
	if !f.IsZero() {
		t.Errorf("Expected zero force from a coincident neighbour, got %v", f)
	}
}

func TestSeparation_OutOfRange(t *testing.T) {
	cfg := quietConfig()
	cfg.ProtectedRange = 5
	me := boidAt(0, 0, 0.3, 0)

	if f := Separation(me, []*Agent{boidAt(10, 0, 0, 0)}, cfg); !f.Eq(geometry.Zero) {
		t.Errorf("Expected no separation outside the protected range, got %v", f)
	}
	if f := Separation(me, nil, cfg); !f.Eq(geometry.Zero) {
		t.Errorf("Expected no separation without neighbours, got %v", f)
	}
}

func TestCohesion(t *testing.T) {
	// Setup: Me is at 0,0. Friend is at 10,0 (far but visible).
	// Should be pulled towards (positive X).
	cfg := quietConfig()
	cfg.VisualRange = 20
	me := boidAt(0, 0, 0, 0)

	f := Cohesion(me, []*Agent{boidAt(10, 0, 0, 0)}, cfg)

	if f.X <= 0 {
		t.Errorf("Expected positive x (cohesion), got %v", f)
	}
}

func TestAlignment(t *testing.T) {
	// Setup: Me is standing still. Friend is moving 1,0.
	// Should accelerate X.
	cfg := quietConfig()
	cfg.VisualRange = 20
	me := boidAt(0, 0, 0, 0)

	f := Alignment(me, []*Agent{boidAt(5, 5, 1, 0)}, cfg)

	if f.X <= 0 {
		t.Errorf("Expected positive x (alignment), got %v", f)
	}
	if f := Alignment(me, []*Agent{boidAt(5, 5, 0, 0)}, cfg); !f.Eq(geometry.Zero) {
		t.Errorf("Expected zero alignment from still neighbours, got %v", f)
	}
}

func TestPredatorAvoidance(t *testing.T) {
	cfg := quietConfig()
	cfg.PredatorRange = 50
	me := boidAt(100, 100, 0, 0)
	predator := &Agent{ID: "p", Kind: Inert, Pos: vec(100, 130)}

	f := PredatorAvoidance(me, []*Agent{predator}, cfg)
	if f.Y >= 0 {
		t.Errorf("Expected to flee in negative y, got %v", f)
	}

	predator.Pos = vec(100, 200)
	if f := PredatorAvoidance(me, []*Agent{predator}, cfg); !f.Eq(geometry.Zero) {
		t.Errorf("Expected no reaction outside predator range, got %v", f)
	}
}

func TestLimit_CapsEveryBehaviour(t *testing.T) {
	cfg := quietConfig()
	cfg.ProtectedRange = 30
	cfg.VisualRange = 100
	me := boidAt(50, 50, 0.5, -0.2)
	var flock []*Agent
	for i := range 20 {
		flock = append(flock, boidAt(40+float64(i), 45+float64(i%3), float64(i%5)-2, 1))
	}

	for name, f := range map[string]geometry.Vector2D{
		"separation": Separation(me, flock, cfg),
		"alignment":  Alignment(me, flock, cfg),
		"cohesion":   Cohesion(me, flock, cfg),
	} {
		if f.Len() > me.MaxForce+1e-12 {
			t.Errorf("%s: |f| = %f exceeds max force %f", name, f.Len(), me.MaxForce)
		}
	}
}

func TestLimit_VanishingAverage(t *testing.T) {
	me := boidAt(0, 0, 0.5, 0)
	f := limit(me, vec(0.0004, 0), 1)
	if !f.Eq(vec(0.0004, 0)) {
		t.Errorf("Expected a vanishing force to pass through, got %v", f)
	}

	f = limit(me, vec(3, 0), 3)
	// (1,0) at full speed minus velocity, clamped
	want := vec(0.15, 0)
	if !f.Eq(want) {
		t.Errorf("limit = %v; want %v", f, want)
	}
}

func TestBoundaryAvoidance(t *testing.T) {
	wall := obstacle.NewUnchecked(vec(100, 0), vec(100, 100), 20)
	cfg := quietConfig()
	cfg.BoundaryRange = 5

	t.Run("inside buffer pushes off the wall", func(t *testing.T) {
		me := boidAt(95, 50, 0, 0)
		f := BoundaryAvoidance(me, []*obstacle.Obstacle{wall}, cfg)
		if f.X >= 0 || math.Abs(f.Y) > 1e-12 {
			t.Errorf("Expected a push in negative x, got %v", f)
		}
		if math.Abs(f.Len()-me.MaxForce) > 1e-9 {
			t.Errorf("Expected |f| = max force, got %f", f.Len())
		}
	})

	t.Run("outside buffer", func(t *testing.T) {
		me := boidAt(50, 50, 0.5, 0)
		if f := BoundaryAvoidance(me, []*obstacle.Obstacle{wall}, cfg); !f.Eq(geometry.Zero) {
			t.Errorf("Expected no force, got %v", f)
		}
	})

	t.Run("predicted crossing pushes away from the hit", func(t *testing.T) {
		me := boidAt(110, 50, 5, 0) // next position leaves the buffer on the right
		f := BoundaryAvoidance(me, []*obstacle.Obstacle{wall}, cfg)
		if f.X >= 0 {
			t.Errorf("Expected a push back from the crossing point, got %v", f)
		}
	})

	t.Run("on the wall falls back to the normal", func(t *testing.T) {
		me := boidAt(100, 50, 0, 0)
		f := BoundaryAvoidance(me, []*obstacle.Obstacle{wall}, cfg)
		if f.X >= 0 || math.IsNaN(f.X) {
			t.Errorf("Expected the wall normal (-x) as fallback, got %v", f)
		}
	})
}

func TestBoundaryAvoidance_FirstObstacleWins(t *testing.T) {
	right := obstacle.NewUnchecked(vec(100, 0), vec(100, 100), 20)
	left := obstacle.NewUnchecked(vec(90, 0), vec(90, 100), 20)
	cfg := quietConfig()
	cfg.BoundaryRange = 5
	me := boidAt(95, 50, 0, 0)

	if f := BoundaryAvoidance(me, []*obstacle.Obstacle{right, left}, cfg); f.X >= 0 {
		t.Errorf("Expected the right wall to win and push -x, got %v", f)
	}
	if f := BoundaryAvoidance(me, []*obstacle.Obstacle{left, right}, cfg); f.X <= 0 {
		t.Errorf("Expected the left wall to win and push +x, got %v", f)
	}
}

func TestSeek(t *testing.T) {
	cfg := quietConfig()
	cfg.ArrivedRadius = 5
	cfg.SlowingRadius = 100

	t.Run("arrived", func(t *testing.T) {
		me := boidAt(98, 0, 0.3, 0)
		if f := Seek(me, vec(100, 0), cfg); !f.Eq(geometry.Zero) {
			t.Errorf("Expected zero force inside the arrived radius, got %v", f)
		}
	})

	t.Run("slowing", func(t *testing.T) {
		me := boidAt(0, 0, 0, 0)
		f := Seek(me, vec(50, 0), cfg)
		want := vec(0.35, 0) // half the distance of the slowing radius, half the speed
		if !f.Eq(want) {
			t.Errorf("Seek = %v; want %v", f, want)
		}
	})

	t.Run("full speed", func(t *testing.T) {
		me := boidAt(0, 0, 0, 0)
		f := Seek(me, vec(0, 500), cfg)
		if math.Abs(f.X) > 1e-12 || math.Abs(f.Y-me.MaxSpeed) > 1e-9 {
			t.Errorf("Seek = %v; want (0, %v)", f, me.MaxSpeed)
		}
	})

	t.Run("not clamped to max force", func(t *testing.T) {
		// Moving away at full speed: desired +0.7 minus current -0.7.
		me := boidAt(0, 0, -0.7, 0)
		f := Seek(me, vec(500, 0), cfg)
		if math.Abs(f.X-1.4) > 1e-9 || math.Abs(f.Y) > 1e-12 {
			t.Errorf("Seek = %v; want (1.4, 0)", f)
		}
		if f.Len() <= me.MaxForce {
			t.Errorf("Expected seeking to exceed max force %v, got %v", me.MaxForce, f.Len())
		}
	})
}

func TestComputeSteering_GoalWeight(t *testing.T) {
	cfg := quietConfig()
	me := boidAt(0, 0, 0, 0)

	acc := ComputeSteering(me, nil, nil, nil, Goal{Pos: vec(300, 0), Weight: 2, Valid: true}, cfg)
	if math.Abs(acc.X-2*me.MaxSpeed) > 1e-9 {
		t.Errorf("Expected seek weighted by 2, got %v", acc)
	}
	if acc := ComputeSteering(me, nil, nil, nil, Goal{Pos: vec(300, 0), Weight: 2}, cfg); !acc.Eq(geometry.Zero) {
		t.Errorf("Expected no seeking without a valid goal, got %v", acc)
	}
}

func BenchmarkComputeSteering(b *testing.B) {
	cfg := DefaultConfig()
	var flock []*Agent
	for i := range 200 {
		flock = append(flock, boidAt(float64(i%20)*8, float64(i/20)*8, 0.3, 0.1))
	}
	walls := []*obstacle.Obstacle{obstacle.NewUnchecked(vec(0, 50), vec(200, 50), cfg.BufferRadius)}
	me := flock[55]
	goal := Goal{Pos: vec(500, 500), Weight: 1, Valid: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeSteering(me, flock, nil, walls, goal, cfg)
	}
}
