package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var once sync.Once

// appStats publishes process-wide gauges next to the per-tree counters
// so a metrics backend can correlate container load with runtime load.
type appStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
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

// InitAppStats registers the application-level observable gauges once
// per process. The name distinguishes multiple embedders sharing one
// metrics pipeline.
func InitAppStats(ctx context.Context, name string) {
	once.Do(func() {
		if len(strings.TrimSpace(name)) == 0 {
			name = "default"
		}
		name = "xtree/app/" + name
		meter := otel.Meter(
			name,
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx: ctx,
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
