package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/internal/layout"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/internal/viewer"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/simulation"
)

type options struct {
	configFile string
	schemaFile string
	mapFile    string
	saveFile   string
	headless   bool
	ticks      int
	logLevel   string
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("evacuation", flag.ContinueOnError)
	fs.StringVar(&o.configFile, "config", "", "configuration file (.json, .yaml or .toml)")
	fs.StringVar(&o.schemaFile, "schema", "", "JSON schema for the configuration (embedded schema when empty)")
	fs.StringVar(&o.mapFile, "map", "", "map layout file (built-in demo when empty)")
	fs.StringVar(&o.saveFile, "save", "", "write the loaded map to this file and continue")
	fs.BoolVar(&o.headless, "headless", false, "run without a window")
	fs.IntVar(&o.ticks, "ticks", 3000, "number of ticks in headless mode")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.ticks < 0 {
		return nil, fmt.Errorf("-ticks must not be negative, got %d", o.ticks)
	}
	return o, nil
}

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}

func loadConfig(o *options) (*simulation.Config, error) {
	if o.configFile == "" {
		return simulation.DefaultConfig(), nil
	}
	return simulation.LoadConfig(o.configFile, o.schemaFile)
}

func loadWorld(o *options, cfg *simulation.Config, log *zap.Logger) (*simulation.World, error) {
	m := layout.Demo(cfg)
	if o.mapFile != "" {
		var err error
		if m, err = layout.Load(o.mapFile); err != nil {
			return nil, err
		}
	}
	w, err := layout.Build(m, cfg, log)
	if err != nil {
		return nil, err
	}
	if o.saveFile != "" {
		saved, err := layout.FromWorld(w, m.Name)
		if err != nil {
			return nil, err
		}
		path, err := layout.Save(o.saveFile, saved)
		if err != nil {
			return nil, err
		}
		log.Info("map saved", zap.String("path", path))
	}
	return w, nil
}

func run(ctx context.Context, o *options, log *zap.Logger) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	world, err := loadWorld(o, cfg, log)
	if err != nil {
		return err
	}

	if o.headless {
		world.AssignRoutes()
		runHeadless(ctx, world, cfg, o.ticks, log)
		return nil
	}

	system, err := actor.NewActorSystem("EvacuationWorld",
		actor.WithLogger(golog.DefaultLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer func() { _ = system.Stop(context.Background()) }()

	game, err := viewer.New(ctx, system, world, cfg, log)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Evacuation Swarm")
	return ebiten.RunGame(game)
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	log, err := newLogger(o.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, log); err != nil {
		log.Error("evacuation failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
