package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/simulation"
)

const progressEvery = 500

// runHeadless steps w directly, without the actor, until ticks have run, every
// routed agent completed its route, or ctx is done. It returns the final stats.
func runHeadless(ctx context.Context, w *simulation.World, cfg *simulation.Config, ticks int, log *zap.Logger) simulation.Stats {
	start := time.Now()
	for i := 1; i <= ticks; i++ {
		if ctx.Err() != nil {
			log.Warn("interrupted", zap.Uint64("tick", w.Ticks))
			break
		}
		w.Step(cfg)
		if i%progressEvery == 0 {
			s := w.Stats()
			log.Info("progress",
				zap.Uint64("tick", w.Ticks),
				zap.Int("routed", s.Routed),
				zap.Int("advancing", s.Advancing),
				zap.Int("completed", s.Completed))
		}
		if s := w.Stats(); s.Agents > 0 && s.Routed == 0 && s.Advancing == 0 && s.Completed > 0 {
			log.Info("every routed agent reached the assembly node", zap.Uint64("tick", w.Ticks))
			break
		}
	}
	s := w.Stats()
	log.Info("headless run finished",
		zap.Uint64("ticks", w.Ticks),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("agents", s.Agents),
		zap.Int("completed", s.Completed),
		zap.Int("unrouted", s.Unrouted))
	return s
}
