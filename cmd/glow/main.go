// Command glow runs a headless scene through the frame pipeline.
//
//	go run ./cmd/glow -config glow.yaml -profile cpu
//	go tool pprof -http=":8000" cpu.pprof
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/TheBitDrifter/snowflake/driver"
	"github.com/TheBitDrifter/snowflake/driver/headless"
	"github.com/TheBitDrifter/snowflake/internal/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a yaml config")
		frames     = flag.Int("frames", -1, "frames to render, overrides the config")
		profileArg = flag.String("profile", "", "cpu, mem or trace")
	)
	flag.Parse()

	cfg, err := LoadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "glow:", err)
		os.Exit(1)
	}
	if *frames >= 0 {
		cfg.Frames = *frames
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))
	defer logger.Sync()

	if stop := startProfile(*profileArg); stop != nil {
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("glow failed", log.Error(err))
		os.Exit(1)
	}
}

func startProfile(kind string) func() {
	var mode func(*profile.Profile)
	switch kind {
	case "":
		return nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfileAllocs
	case "trace":
		mode = profile.TraceProfile
	default:
		fmt.Fprintf(os.Stderr, "glow: unknown profile %q\n", kind)
		return nil
	}
	p := profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop
}

// run drives cfg.Frames frames, or until the platform closes or ctx ends.
func run(ctx context.Context, cfg Config, logger log.Log) error {
	platform := headless.NewPlatform(cfg.Width, cfg.Height, cfg.Frames)
	platform.SetTitle("glow")
	d, err := driver.New(cfg.Driver, headless.NewDevice(), platform, headless.NewSurface(3),
		driver.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	defer d.Close()

	scene := NewScene(cfg.Scene)
	projection := mgl32.Perspective(mgl32.DegToRad(60), float32(cfg.Width)/float32(cfg.Height), 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 30}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	viewProjection := projection.Mul4(view)

	var (
		rendered, skipped int
		drawn             atomic.Int64
		start             = time.Now()
		last              = start
	)
	for ctx.Err() == nil {
		if !d.BeginFrame() {
			if !platform.IsAlive() {
				break
			}
			skipped++
			continue
		}

		now := time.Now()
		scene.Update(float32(now.Sub(last).Seconds()))
		last = now

		drawables := scene.Drawables()
		threads := cfg.Driver.Threads
		err := d.Record(ctx, driver.Graphics, func(_ context.Context, thread int, _ *driver.CommandBuffer) error {
			var visible int64
			for i := thread; i < len(drawables); i += threads {
				clip := viewProjection.Mul4(scene.ModelMatrix(drawables[i])).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
				if w := clip.W(); w > 0 && abs(clip.X()) <= w && abs(clip.Y()) <= w {
					visible++
				}
			}
			drawn.Add(visible)
			return nil
		})
		if err != nil {
			return fmt.Errorf("record frame %d: %w", rendered, err)
		}

		if !d.EndFrame() {
			skipped++
			continue
		}
		rendered++
	}

	elapsed := time.Since(start)
	logger.Info("glow finished",
		log.Int("rendered", rendered),
		log.Int("skipped", skipped),
		log.Int64("drawn", drawn.Load()),
		log.Int("active", scene.Active()),
		log.Int("expired", scene.Expired()),
		log.Duration("elapsed", elapsed),
	)
	return nil
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
