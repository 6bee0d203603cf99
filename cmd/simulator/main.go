package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/signalsfoundry/tacsim/core"
	"github.com/signalsfoundry/tacsim/datastore"
	"github.com/signalsfoundry/tacsim/entity"
	"github.com/signalsfoundry/tacsim/internal/logging"
	"github.com/signalsfoundry/tacsim/internal/observability"
	"github.com/signalsfoundry/tacsim/model"
	"github.com/signalsfoundry/tacsim/timeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config controls the example program: which clock mode drives the
// timeline, how often it ticks, and where metrics are exposed. Built from
// environment defaults, with a Config/loadConfig split so tests can
// construct one directly without touching the environment.
type Config struct {
	MetricsAddress string
	LogLevel       string
	LogFormat      string
	TickInterval   time.Duration
	Duration       time.Duration
	Mode           string // step | realtime | freewheel | simulation
	RefYear        int
}

func main() {
	cfg := loadConfig()
	log := logging.New(logging.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(context.Background(), "simulator exited with error", logging.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig() Config {
	metricsAddr := envOrDefault("TACSIM_METRICS_ADDRESS", ":9090")
	logLevel := envOrDefault("LOG_LEVEL", "info")
	logFormat := envOrDefault("LOG_FORMAT", "text")
	tick := envDuration("TACSIM_TICK_INTERVAL", time.Second)
	duration := envDuration("TACSIM_DURATION", 60*time.Second)
	mode := envOrDefault("TACSIM_CLOCK_MODE", "realtime")
	// Default to the Unix epoch so a Timestamp's "seconds since Jan 1 of
	// refYear" lines up numerically with the simTime.Unix() basis
	// core.MotionModel stamps onto every entity.PlatformUpdate it inserts;
	// pick a different ref year only if platform samples are retimed too.
	refYear := envInt("TACSIM_REF_YEAR", 1970)

	return Config{
		MetricsAddress: metricsAddr,
		LogLevel:       logLevel,
		LogFormat:      logFormat,
		TickInterval:   tick,
		Duration:       duration,
		Mode:           mode,
		RefYear:        refYear,
	}
}

// simulation bundles the wiring a frame loop needs: the authoritative
// clock, the data store it drives, and the motion model feeding it
// propagated samples. Kept separate from run() so tests can drive it
// tick-by-tick without a ticker or signal handling.
type simulation struct {
	clock  *timeline.Clock
	store  *datastore.DataStore
	motion *core.MotionModel

	sat    *model.PlatformDefinition
	ground *model.PlatformDefinition
}

func newSimulation(cfg Config, metrics *observability.TimeMachineCollector, sliceMetrics *observability.DataSliceCollector, tracer trace.Tracer) (*simulation, error) {
	clock := timeline.NewClock(cfg.RefYear, nil)
	store := datastore.New()

	clock.RegisterModeObserver(&clockModeRecorder{metrics: metrics})
	clock.RegisterTimeObserver(&instrumentedStore{store: store, metrics: metrics, slices: sliceMetrics, tracer: tracer})

	tle1 := "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	tle2 := "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"

	sat := &model.PlatformDefinition{
		ID:           "sat1",
		Name:         "LEO-Sat-1",
		Type:         "SATELLITE",
		MotionSource: model.MotionSourceSpacetrack,
		ObjectID:     entity.ObjectId(1),
	}
	ground := &model.PlatformDefinition{
		ID:           "ground1",
		Name:         "Equator-GS",
		Type:         "GROUND_STATION",
		MotionSource: model.MotionSourceUnknown,
		// ~Earth radius on x-axis (metres)
		Coordinates: model.Motion{X: 6371000, Y: 0, Z: 0},
		ObjectID:    entity.ObjectId(2),
	}

	motion := core.NewMotionModel(
		core.WithSampleSink(store),
		core.WithTLEFetcher(func(pd *model.PlatformDefinition) (string, string) {
			if pd.ID == sat.ID {
				return tle1, tle2
			}
			return "", ""
		}),
	)
	if err := motion.AddPlatform(sat); err != nil {
		return nil, fmt.Errorf("add satellite platform: %w", err)
	}
	if err := motion.AddPlatform(ground); err != nil {
		return nil, fmt.Errorf("add ground platform: %w", err)
	}

	clockMode, err := parseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	clock.SetMode(clockMode)
	if !timeline.IsLiveMode(clockMode) {
		// Seed currentTime from the real wall clock, expressed in the same
		// "seconds since Jan 1 of refYear" basis the entity samples use, so
		// the clock starts in step with the samples motion is about to
		// insert instead of at MinTimeStamp.
		refYearStart := time.Date(cfg.RefYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		seedSeconds := time.Now().UTC().Sub(refYearStart).Seconds()
		clock.SetTime(timeline.NewTimestamp(cfg.RefYear, seedSeconds))
		clock.SetEndTime(timeline.NewTimestamp(cfg.RefYear, seedSeconds+cfg.Duration.Seconds()))
	}
	clock.PlayForward()

	return &simulation{clock: clock, store: store, motion: motion, sat: sat, ground: ground}, nil
}

// Tick advances the simulation by one frame: propagate platform motion at
// wall-clock time now, derive the ground station's pointing angles toward
// the satellite from the platform slices' current samples, then let the
// clock idle forward, which in turn drives the data store through the
// registered TimeObserver.
func (s *simulation) Tick(now time.Time) error {
	if err := s.motion.UpdatePositions(now); err != nil {
		return fmt.Errorf("update platform positions: %w", err)
	}
	s.recordBeamPointing(now)
	s.clock.Idle()
	return nil
}

// recordBeamPointing computes the azimuth/elevation/range a ground-station
// beam would need to track the satellite and inserts it as that station's
// beam sample. Positions are each platform slice's Current() sample rather
// than the static PlatformDefinition, since the satellite's coordinates
// change every tick and the ground station's don't. Current() reflects the
// clock's most recent update, which runs in Idle after this call, so the
// samples inserted by this tick's motion.UpdatePositions are not yet seen.
func (s *simulation) recordBeamPointing(now time.Time) {
	satEntity := s.store.Entity(s.sat.ObjectID)
	groundEntity := s.store.Entity(s.ground.ObjectID)
	if satEntity == nil || groundEntity == nil {
		return
	}
	satPos, ok := satEntity.Platform.Current()
	if !ok {
		return
	}
	groundPos, ok := groundEntity.Platform.Current()
	if !ok {
		return
	}

	toVec3 := func(p entity.Position) core.Vec3 {
		return core.Vec3{X: p.X / 1000.0, Y: p.Y / 1000.0, Z: p.Z / 1000.0}
	}
	beamTime := float64(now.Unix()) + float64(now.Nanosecond())/1e9
	sample := core.BeamSample(beamTime, toVec3(groundPos.Position), toVec3(satPos.Position))
	s.store.InsertBeamSample(s.ground.ObjectID, sample)
}

// clockModeRecorder forwards Clock mode/direction/scale transitions into
// the TimeMachineCollector. It deliberately takes plain strings at the
// collector boundary (see metrics.go), so this adapter is the only place
// that needs to know both the timeline and observability packages.
type clockModeRecorder struct {
	metrics *observability.TimeMachineCollector
}

func (r *clockModeRecorder) OnModeChange(m timeline.Mode)            { r.metrics.RecordModeChange(m.String()) }
func (r *clockModeRecorder) OnDirectionChange(d timeline.Direction)  { r.metrics.RecordDirectionChange(d.String()) }
func (r *clockModeRecorder) OnScaleChange(scale float64)             { r.metrics.SetCurrentScale(scale) }
func (r *clockModeRecorder) OnBoundsChange(start, end timeline.Timestamp) {}
func (r *clockModeRecorder) OnCanLoopChange(canLoop bool)            {}
func (r *clockModeRecorder) OnUserEditableChanged(editable bool)     {}

// instrumentedStore wraps a DataStore as a timeline.TimeObserver, timing
// every Update(t) pass the clock drives and wrapping it in a trace span, so
// a slow command replay or large LOB union shows up in a trace exporter the
// same way a slow RPC would.
type instrumentedStore struct {
	store   *datastore.DataStore
	metrics *observability.TimeMachineCollector
	slices  *observability.DataSliceCollector
	tracer  trace.Tracer
}

func (s *instrumentedStore) OnSetTime(t timeline.Timestamp, isJump bool) {
	_, span := s.tracer.Start(context.Background(), "datastore.update")
	defer span.End()

	start := time.Now()
	s.store.OnSetTime(t, isJump)
	elapsed := time.Since(start)

	s.metrics.ObserveFrameUpdate(elapsed.Seconds())
	s.slices.ObserveSliceUpdate(elapsed)
	s.slices.SetActiveSlices(s.store.EntityCount())
}

func (s *instrumentedStore) OnTimeLoop() {
	s.metrics.RecordTimeLoop()
	s.store.OnTimeLoop()
}

func (s *instrumentedStore) AdjustTime(oldTime timeline.Timestamp, newTime *timeline.Timestamp) {
	s.store.AdjustTime(oldTime, newTime)
}

func parseMode(s string) (timeline.Mode, error) {
	switch s {
	case "step":
		return timeline.ModeStep, nil
	case "realtime":
		return timeline.ModeRealtime, nil
	case "freewheel":
		return timeline.ModeFreewheel, nil
	case "simulation":
		return timeline.ModeSimulation, nil
	default:
		return 0, fmt.Errorf("unknown clock mode %q (want step, realtime, freewheel, or simulation)", s)
	}
}

func run(ctx context.Context, cfg Config, log logging.Logger) error {
	if log == nil {
		log = logging.Noop()
	}

	traceShutdown := func(context.Context) error { return nil }
	if shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log); err != nil {
		log.Warn(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
	} else {
		traceShutdown = shutdown
	}
	defer observability.ShutdownWithTimeout(context.Background(), traceShutdown, log)

	metrics, err := observability.NewTimeMachineCollector(nil)
	if err != nil {
		return fmt.Errorf("init timemachine metrics: %w", err)
	}
	sliceMetrics, err := observability.NewDataSliceCollector(nil)
	if err != nil {
		return fmt.Errorf("init dataslice metrics: %w", err)
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddress != "" {
		metricsSrv = serveMetrics(cfg.MetricsAddress, metrics, log)
	}

	sim, err := newSimulation(cfg, metrics, sliceMetrics, otel.Tracer("github.com/signalsfoundry/tacsim/datastore"))
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}

	log.Info(ctx, "starting simulation",
		logging.String("mode", cfg.Mode),
		logging.String("duration", cfg.Duration.String()),
		logging.String("tick", cfg.TickInterval.String()),
	)

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(cfg.Duration)
	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutdown requested", logging.String("reason", ctx.Err().Error()))
			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}
			return nil
		case now := <-ticker.C:
			if err := sim.Tick(now); err != nil {
				log.Warn(ctx, "tick failed", logging.String("error", err.Error()))
				continue
			}
			metrics.SetActiveEntities(sim.store.EntityCount())
			logFrame(ctx, log, sim)
			if !now.Before(deadline) {
				log.Info(ctx, "simulation duration elapsed")
				if metricsSrv != nil {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = metricsSrv.Shutdown(shutdownCtx)
				}
				return nil
			}
		}
	}
}

func logFrame(ctx context.Context, log logging.Logger, sim *simulation) {
	satEntity := sim.store.Entity(sim.sat.ObjectID)
	groundEntity := sim.store.Entity(sim.ground.ObjectID)
	if satEntity == nil || groundEntity == nil {
		return
	}
	satPos, _ := satEntity.Platform.Current()
	groundPos, _ := groundEntity.Platform.Current()
	log.Debug(ctx, "frame",
		logging.String("clock_time", sim.clock.CurrentTime().String()),
		logging.Any("sat_position", satPos.Position),
		logging.Any("ground_position", groundPos.Position),
	)
}

func serveMetrics(addr string, collector *observability.TimeMachineCollector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
