package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/accel/builder"
	"github.com/achilleasa/accel/config"
	"github.com/achilleasa/accel/log"
	"github.com/achilleasa/accel/scene"
	"github.com/achilleasa/accel/scene/reader"
	"github.com/achilleasa/accel/tracer"
	"github.com/achilleasa/accel/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
)

// Default vertical field of view for scenes without a camera.
const defaultFOV float32 = 45

// Trace batches of primary rays through a scene and report traversal
// statistics for each batch.
func Bench(ctx *cli.Context) error {
	cfg, err := benchConfig(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())
	setupLogging(ctx)

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sc, err := reader.ReadScene(runCtx, cfg.Scene, builder.Options{
		MinLeafItems: cfg.Build.MinLeafItems,
		MaxDepth:     cfg.Build.MaxDepth,
	})
	if err != nil {
		return err
	}
	logger.Noticef("scene information:\n%s", sc.Stats())

	camera := sc.Camera
	if camera == nil {
		logger.Info("scene does not define a camera; fitting camera to scene bounds")
		camera = scene.NewCameraForBounds(sc.Tree.Bounds(), defaultFOV)
	}
	camera.SetupProjection(float32(cfg.Width) / float32(cfg.Height))
	rays := camera.GenerateRays(cfg.Width, cfg.Height, cfg.MaxDistance, make([]types.Ray, 0, cfg.Width*cfg.Height))

	var metrics *tracer.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = tracer.NewMetrics(reg)
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer srv.Close()
	}

	runner, err := tracer.NewRunner(sc, tracer.Options{
		Workers:       cfg.Workers,
		StackCapacity: cfg.StackCapacity,
		Metrics:       metrics,
	})
	if err != nil {
		return err
	}

	results := make([]tracer.Result, len(rays))
	mode := cfg.QueryMode()

	var (
		total   tracer.Totals
		elapsed time.Duration
	)
	for batch := 0; batch < cfg.Batches; batch++ {
		stats, err := runner.TraceRays(runCtx, mode, rays, results)
		if err != nil {
			return err
		}

		logger.Noticef("batch %d statistics (%s mode, %.0f rays/sec)\n%s", batch, mode, stats.QueriesPerSecond(), stats.Table())
		total.Queries += stats.Totals.Queries
		total.Hits += stats.Totals.Hits
		elapsed += stats.Elapsed
	}

	logger.Noticef(
		"traced %d rays in %s (%.0f rays/sec, %.1f%% hit ratio)",
		total.Queries, elapsed, float64(total.Queries)/elapsed.Seconds(),
		100*float64(total.Hits)/float64(total.Queries),
	)
	return nil
}

// Load the bench configuration and apply command line overrides.
func benchConfig(ctx *cli.Context) (config.Bench, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.NArg() == 1 {
		cfg.Scene = ctx.Args().First()
	}
	if cfg.Scene == "" {
		return cfg, errors.New("missing scene file argument")
	}

	if ctx.IsSet("workers") {
		cfg.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("width") {
		cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Height = ctx.Int("height")
	}
	if ctx.IsSet("batches") {
		cfg.Batches = ctx.Int("batches")
	}
	if ctx.IsSet("mode") {
		cfg.Mode = ctx.String("mode")
	}
	if ctx.IsSet("stack-capacity") {
		cfg.StackCapacity = ctx.Int("stack-capacity")
	}
	if ctx.IsSet("metrics-addr") {
		cfg.MetricsAddr = ctx.String("metrics-addr")
	}

	return cfg, cfg.Validate()
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Noticef("serving metrics on http://%s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}
