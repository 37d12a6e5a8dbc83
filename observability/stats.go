package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xbst/lib/tree"
)

const meterNamePrefix = "xbst/app"

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback ShutdownCallback
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func meterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(meterNamePrefix)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process gauges and the go runtime
// metrics once. The shutdown callback runs when ctx is done.
func InitAppStats(ctx context.Context, name string, shutdown ShutdownCallback) {
	once.Do(func() {
		meter := otel.Meter(
			meterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}

// TreeStats observes the node count of the trees and counts the
// contents released by them.
//
// Only the atomic node count is read by the metric reader
// goroutine, the tree itself is never walked concurrently.
type TreeStats struct {
	lock     sync.Mutex
	nodes    metric.Int64ObservableGauge
	releases metric.Int64Counter
	trees    map[string]tree.BST
	reg      metric.Registration
}

type TreeStatsOpt func(*treeStatsCfg)

type treeStatsCfg struct {
	provider metric.MeterProvider
}

func WithTreeStatsMeterProvider(provider metric.MeterProvider) TreeStatsOpt {
	return func(cfg *treeStatsCfg) {
		cfg.provider = provider
	}
}

func NewTreeStats(name string, opts ...TreeStatsOpt) (*TreeStats, error) {
	cfg := &treeStatsCfg{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetMeterProvider()
	}
	meter := cfg.provider.Meter(meterName(name))

	nodes, err := meter.Int64ObservableGauge(
		"bst.nodes",
		metric.WithDescription("The number of nodes of the tree."),
	)
	if err != nil {
		return nil, err
	}
	releases, err := meter.Int64Counter(
		"bst.contents.released",
		metric.WithDescription("The number of contents released by the tree."),
	)
	if err != nil {
		return nil, err
	}
	stats := &TreeStats{
		nodes:    nodes,
		releases: releases,
		trees:    make(map[string]tree.BST, 8),
	}
	stats.reg, err = meter.RegisterCallback(stats.observe, nodes)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (stats *TreeStats) observe(ctx context.Context, ob metric.Observer) error {
	stats.lock.Lock()
	defer stats.lock.Unlock()
	for name, t := range stats.trees {
		ob.ObserveInt64(stats.nodes, t.Len(), metric.WithAttributes(attribute.String("tree", name)))
	}
	return nil
}

// Observe starts to report the node count of t under the name.
func (stats *TreeStats) Observe(name string, t tree.BST) {
	if stats == nil || t == nil {
		return
	}
	stats.lock.Lock()
	defer stats.lock.Unlock()
	stats.trees[name] = t
}

// ReleaseHook is installed by tree.WithBSTReleaseHook.
func (stats *TreeStats) ReleaseHook(name string) func(key byte, content tree.Content) {
	if stats == nil {
		return nil
	}
	return func(key byte, content tree.Content) {
		stats.releases.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("tree", name),
			attribute.String("kind", content.Kind().String()),
		))
	}
}

func (stats *TreeStats) Unregister() error {
	if stats == nil || stats.reg == nil {
		return nil
	}
	return stats.reg.Unregister()
}
