package datadir

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MaterializeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "control_file_materialize_total",
			Help: "Total number of control files written to an output data directory.",
		},
	)

	OverwriteTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "control_file_overwrite_total",
			Help: "Total number of pre-existing control files overwritten during materialization.",
		},
	)
)

// RegisterMetrics registers all metrics collectors with the given prometheus registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		MaterializeTotal,
		OverwriteTotal,
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
