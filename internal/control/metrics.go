package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DecodeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "control_record_decode_total",
			Help: "Total number of control records decoded.",
		},
	)

	EncodeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "control_record_encode_total",
			Help: "Total number of control records encoded.",
		},
	)

	ChecksumMismatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "control_record_checksum_mismatch_total",
			Help: "Total number of control records decoded with a checksum mismatch.",
		},
	)
)

// RegisterMetrics registers all metrics collectors with the given prometheus registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		DecodeTotal,
		EncodeTotal,
		ChecksumMismatchTotal,
	}
	for _, metric := range metrics {
		if err := registerer.Register(metric); err != nil {
			return err
		}
	}
	return nil
}
