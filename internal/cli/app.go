// Package cli implements the mln command line: loading query files and
// projects, choosing an engine and printing inference results.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/mln"
	"github.com/aretw0/mln/internal/logging"
	"github.com/aretw0/mln/internal/presentation/tui"
	"github.com/aretw0/mln/pkg/adapters/redis"
	"github.com/aretw0/mln/pkg/observability"
	"github.com/aretw0/mln/pkg/ports"
	"github.com/aretw0/mln/pkg/session"
)

// Options are the flags shared by every command.
type Options struct {
	// Engine overrides the engine kind of a query file ("memory" or "process").
	Engine string
	// BridgeConfig overrides the bridge configuration of a query file.
	BridgeConfig string
	LogLevel     string
	LogFormat    string
	Debug        bool
	JSON         bool
	Plain        bool
	SessionID    string
	// RedisURL enables a Redis engine lock shared between mln processes.
	RedisURL string
	// MetricsFile receives a Prometheus text dump after each command.
	MetricsFile string
}

// App carries the collaborators every command needs.
type App struct {
	opts     Options
	out      io.Writer
	logger   *slog.Logger
	renderer *tui.Renderer
	metrics  *observability.Metrics
	registry *prometheus.Registry
	redis    *backend.Client
}

// NewApp validates opts and builds the logger, renderer and metrics.
func NewApp(opts Options, out, logOut io.Writer) (*App, error) {
	logger, err := createLogger(opts, logOut)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:     opts,
		out:      out,
		logger:   logger,
		renderer: tui.NewRenderer(out, opts.Plain),
		metrics:  observability.NewMetrics(),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(a.metrics)

	if opts.RedisURL != "" {
		redisOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid --redis url: %w", err)
		}
		a.redis = backend.NewClient(redisOpts)
	}
	return a, nil
}

// createLogger keeps the CLI silent unless a level is requested.
func createLogger(opts Options, w io.Writer) (*slog.Logger, error) {
	if opts.Debug {
		opts.LogLevel = "debug"
	}
	if opts.LogLevel == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(opts.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.NewWithOptions(w, level, format), nil
}

// Close flushes metrics and releases the Redis client.
func (a *App) Close() error {
	var err error
	if a.opts.MetricsFile != "" {
		if werr := prometheus.WriteToTextfile(a.opts.MetricsFile, a.registry); werr != nil {
			err = fmt.Errorf("failed to write metrics: %w", werr)
		}
	}
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) controllerOptions(name string) []mln.Option {
	opts := []mln.Option{mln.WithLifecycleHooks(a.metrics.Hooks())}
	if a.opts.Debug {
		opts = append(opts, mln.WithLifecycleHooks(observability.LogHooks(a.logger)))
	}
	if name != "" {
		opts = append(opts, mln.WithName(name))
	}
	return opts
}

func (a *App) newManager(svc ports.InferenceService, name string) *session.Manager {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithControllerOptions(a.controllerOptions(name)...),
	}
	if a.redis != nil {
		opts = append(opts, session.WithLocker(redis.NewLocker(a.redis)))
	}
	return session.NewManager(svc, opts...)
}
