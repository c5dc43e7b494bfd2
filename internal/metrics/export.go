package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Export writes the gathered metrics to a node-exporter textfile and/or
// pushes them to a Pushgateway. Empty destinations are skipped.
func Export(gatherer prometheus.Gatherer, textfilePath, pushURL, job string) error {
	if textfilePath != "" {
		if err := prometheus.WriteToTextfile(textfilePath, gatherer); err != nil {
			return fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}

	if pushURL != "" {
		if err := push.New(pushURL, job).Gatherer(gatherer).Push(); err != nil {
			return fmt.Errorf("failed to push metrics: %w", err)
		}
	}

	return nil
}
