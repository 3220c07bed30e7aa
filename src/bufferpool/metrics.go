package bufferpool

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/srfbd/pagevault/src/pkg/utils"
)

const meterName = "github.com/srfbd/pagevault/src/bufferpool"

// poolMetrics counts cache behavior. With no meter provider installed the
// otel global is a no-op, so the counters cost nothing.
type poolMetrics struct {
	fetchHits   metric.Int64Counter
	fetchMisses metric.Int64Counter
	evictions   metric.Int64Counter
	writeBacks  metric.Int64Counter
}

func newPoolMetrics() *poolMetrics {
	meter := otel.Meter(meterName)

	return &poolMetrics{
		fetchHits: utils.Must(meter.Int64Counter(
			"bufferpool.fetch.hits",
			metric.WithDescription("page fetches served from a resident frame"),
		)),
		fetchMisses: utils.Must(meter.Int64Counter(
			"bufferpool.fetch.misses",
			metric.WithDescription("page fetches that required disk I/O"),
		)),
		evictions: utils.Must(meter.Int64Counter(
			"bufferpool.evictions",
			metric.WithDescription("frames reclaimed through the replacer"),
		)),
		writeBacks: utils.Must(meter.Int64Counter(
			"bufferpool.writebacks",
			metric.WithDescription("frame images written to disk by flushes, evictions and deletes"),
		)),
	}
}

func (m *poolMetrics) hit()       { m.fetchHits.Add(context.Background(), 1) }
func (m *poolMetrics) miss()      { m.fetchMisses.Add(context.Background(), 1) }
func (m *poolMetrics) eviction()  { m.evictions.Add(context.Background(), 1) }
func (m *poolMetrics) writeBack() { m.writeBacks.Add(context.Background(), 1) }
