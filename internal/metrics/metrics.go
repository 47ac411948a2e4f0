// Package metrics exposes prometheus collectors for history activity.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blockundo"

// Collector groups the history metrics.
type Collector struct {
	saves      prometheus.Counter
	skipped    *prometheus.CounterVec
	navigation *prometheus.CounterVec
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	depth      prometheus.Gauge
	position   prometheus.Gauge
}

// New creates the collectors and registers them on reg when reg is not nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_saves_total",
			Help:      "Number of snapshots pushed onto the history stack",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_skipped_total",
			Help:      "Observed changes that were not recorded, by reason",
		}, []string{"reason"}),
		navigation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_navigations_total",
			Help:      "Undo and redo calls that moved the stack pointer",
		}, []string{"direction"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_operations_total",
			Help:      "Block operations issued while reconciling, by kind",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_failures_total",
			Help:      "Host operations that returned an error, by phase",
		}, []string{"phase"}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Recorded changes currently on the stack",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_position",
			Help:      "Current stack pointer",
		}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{
			c.saves, c.skipped, c.navigation, c.operations, c.failures, c.depth, c.position,
		} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Collector) Saved() {
	if c == nil {
		return
	}
	c.saves.Inc()
}

func (c *Collector) Skipped(reason string) {
	if c == nil {
		return
	}
	c.skipped.WithLabelValues(reason).Inc()
}

func (c *Collector) Navigated(direction string) {
	if c == nil {
		return
	}
	c.navigation.WithLabelValues(direction).Inc()
}

func (c *Collector) Operation(op string) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(op).Inc()
}

func (c *Collector) Failed(phase string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(phase).Inc()
}

// Stack records the stack size and pointer.
func (c *Collector) Stack(count, position int) {
	if c == nil {
		return
	}
	c.depth.Set(float64(count))
	c.position.Set(float64(position))
}
