package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// NewRegistry returns an empty registry, so that a run only reports the
// metrics it registers.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// WriteMetrics writes every metric family gathered from g in the
// Prometheus text format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}

	return nil
}
