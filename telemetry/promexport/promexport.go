// Package promexport exposes an ackq.Facade's Diagnostics as
// Prometheus metrics, grounded on the pack's pkg/metrics pattern of a
// single New(...) constructor that registers every metric once.
package promexport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/brinkedge/ackq"
)

// Exporter registers six gauges against a caller-supplied registry (no
// global registry mutation) and reads a fresh Diagnostics snapshot
// from the Facade on every scrape via GaugeFunc, so the values never
// need a separate periodic refresh.
type Exporter struct {
	facade *ackq.Facade
}

// New registers the exporter's metrics against reg and returns the
// Exporter. reg is typically a prometheus.NewRegistry() owned by the
// caller, not the global DefaultRegisterer.
func New(reg *prometheus.Registry, namespace string, facade *ackq.Facade) *Exporter {
	e := &Exporter{facade: facade}
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "max_burst",
		Help:      "Peak number of simultaneously occupied slots observed since the last init.",
	}, func() float64 { return float64(e.facade.Snapshot().MaxBurst) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "max_payload_len",
		Help:      "Largest payload length stored in a slot since the last init.",
	}, func() float64 { return float64(e.facade.Snapshot().MaxPayloadLen) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "timeout_count",
		Help:      "Slots freed by the Sweeper's ack-timeout sweep since the last init.",
	}, func() float64 { return float64(e.facade.Snapshot().TimeoutCount) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "late_ack_count",
		Help:      "Acknowledgements that matched no occupied slot since the last init.",
	}, func() float64 { return float64(e.facade.Snapshot().LateAcks) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rebind_miss_count",
		Help:      "Rebind calls whose provisional id matched no occupied slot since the last init.",
	}, func() float64 { return float64(e.facade.Snapshot().RebindMisses) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dyn_block_count",
		Help:      "Current number of allocated DynBlocks in the DynPool.",
	}, func() float64 { return float64(e.facade.Snapshot().DynBlockCount) })

	return e
}
