package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/google/safeopen"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbst/lib/freq"
	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/kv"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/observability"
	"github.com/benz9527/xbst/xlog"
)

const appName = "lettercount"

type stdio struct {
	in  io.Reader
	out io.Writer
}

func newXLogger(opts *options) xlog.XLogger {
	xopts := []xlog.XLoggerOption{
		xlog.WithXLoggerEncoder(xlog.ParseLogEncoder(opts.logEncoder)),
		// The stdout is kept for the counting results.
		xlog.WithXLoggerWriter(xlog.StdErr),
	}
	if opts.logLevel != "" {
		xopts = append(xopts, xlog.WithXLoggerLevel(xlog.ParseLogLevel(opts.logLevel)))
	}
	return xlog.NewXLogger(xopts...)
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

func newWorkerPool(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (*ants.Pool, error) {
	size := opts.workers
	if size == 0 {
		size = runtime.GOMAXPROCS(0)
	}
	pool, err := ants.NewPool(size, ants.WithLogger(xlog.NewAntsXLogger(logger)))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		return pool.ReleaseTimeout(5 * time.Second)
	}))
	return pool, nil
}

func newMetrics(lc fx.Lifecycle, opts *options, logger xlog.XLogger) (*observability.TreeStats, error) {
	var shutdown observability.ShutdownCallback
	switch opts.metrics {
	case metricsConsole:
		var err error
		shutdown, err = observability.NewConsoleMetricsExporter(
			10*time.Second,
			5*time.Second,
			stdoutmetric.WithWriter(os.Stderr),
		)
		if err != nil {
			return nil, err
		}
	case metricsPrometheus:
		handler, _shutdown, err := observability.NewPrometheusMetricsExporter()
		if err != nil {
			return nil, err
		}
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return err
				}
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error(err, "[lettercount] metrics server stopped")
					}
				}()
				logger.Info("[lettercount] metrics served", zap.String("addr", ln.Addr().String()))
				return nil
			},
			OnStop: srv.Shutdown,
		})
		shutdown = _shutdown
	default:
	}

	observability.InitAppStats(context.Background(), appName, nil)
	stats, err := observability.NewTreeStats(appName)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		err := stats.Unregister()
		if shutdown != nil {
			err = multierr.Append(err, shutdown(ctx))
		}
		return err
	}))
	return stats, nil
}

func newParallelCounter(pool *ants.Pool, logger xlog.XLogger, stats *observability.TreeStats) (*freq.ParallelCounter, error) {
	return freq.NewParallelCounter(pool,
		freq.WithParallelCounterLogger(logger),
		freq.WithParallelCounterTreeOpts(tree.WithBSTReleaseHook(stats.ReleaseHook("source"))),
	)
}

type command struct {
	opts    *options
	io      stdio
	logger  xlog.XLogger
	counter *freq.ParallelCounter
	stats   *observability.TreeStats
}

func newCommand(
	opts *options,
	std stdio,
	logger xlog.XLogger,
	counter *freq.ParallelCounter,
	stats *observability.TreeStats,
) *command {
	return &command{
		opts:    opts,
		io:      std,
		logger:  logger,
		counter: counter,
		stats:   stats,
	}
}

func (cmd *command) sources() []freq.Source {
	sources := make([]freq.Source, 0, len(cmd.opts.inputs))
	for _, name := range cmd.opts.inputs {
		if name == stdinInput {
			sources = append(sources, freq.Source{
				Name: "stdin",
				Open: func() (io.ReadCloser, error) {
					return io.NopCloser(cmd.io.in), nil
				},
			})
			continue
		}
		sources = append(sources, freq.Source{
			Name: name,
			Open: func() (io.ReadCloser, error) {
				f, err := safeopen.OpenBeneath(cmd.opts.dir, name)
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}
	return sources
}

func (cmd *command) run(ctx context.Context) error {
	total := tree.NewBST(tree.WithBSTReleaseHook(cmd.stats.ReleaseHook("total")))
	defer total.Dispose()
	cmd.stats.Observe("total", total)

	// The stdin can be read only once, it is buffered for the words.
	sources := cmd.sources()
	var stdinData []byte
	if cmd.opts.words {
		for i := range sources {
			if sources[i].Name != "stdin" {
				continue
			}
			data, err := io.ReadAll(cmd.io.in)
			if err != nil {
				return infra.WrapErrorStackWithMessage(err, "[lettercount] read stdin")
			}
			stdinData = data
			sources[i] = freq.BytesSource("stdin", data)
		}
	}

	start := time.Now()
	if err := cmd.counter.Count(ctx, total, sources...); err != nil {
		return err
	}
	if err := tree.OrderViolationValidate(total); err != nil {
		return infra.WrapErrorStack(err)
	}
	cmd.logger.InfoContext(ctx, "[lettercount] letters counted",
		zap.Int("sources", len(sources)),
		zap.Int64("letters", total.Len()),
		zap.Int("height", tree.Height(total)),
		zap.Duration("in", time.Since(start)),
	)

	fmt.Fprintf(cmd.io.out, "# letters %s\n", cmd.opts.order)
	for _, f := range freq.Frequencies(total, cmd.opts.order) {
		fmt.Fprintln(cmd.io.out, f.String())
	}

	if !cmd.opts.words {
		return nil
	}
	words := kv.NewHashTable[int]()
	defer words.DeleteAll()
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if src.Name == "stdin" {
			freq.WordCount(words, string(stdinData))
			continue
		}
		if err := cmd.countWords(words, src); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.io.out, "# words")
	for _, wf := range freq.WordFrequencies(words) {
		fmt.Fprintf(cmd.io.out, "%s: %d\n", wf.Word, wf.Count)
	}
	return nil
}

func (cmd *command) countWords(words *kv.HashTable[int], src freq.Source) (err error) {
	rc, err := src.Open()
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[lettercount] words of "+src.Name)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rc))
	data, err := io.ReadAll(rc)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[lettercount] words of "+src.Name)
	}
	freq.WordCount(words, string(data))
	return nil
}

func newApp(opts *options, std stdio, cmd **command) *fx.App {
	return fx.New(
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(opts, std),
		fx.Provide(
			newXLogger,
			newWorkerPool,
			newMetrics,
			newParallelCounter,
			newCommand,
		),
		fx.Invoke(setMaxProcs),
		fx.Populate(cmd),
	)
}

func execute(ctx context.Context, args []string, std stdio, stderr io.Writer) (err error) {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	} else if err != nil {
		return err
	}

	var cmd *command
	app := newApp(opts, std, &cmd)
	if err = app.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
		_ = cmd.logger.Sync()
	}()

	if err = cmd.run(ctx); err != nil {
		cmd.logger.ErrorStack(err, "[lettercount] count failed")
	}
	return err
}
