package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards one-time registration

// RegisterRuntimeCollectors adds the Go runtime and process collectors to
// the service registry. Safe to call more than once.
func RegisterRuntimeCollectors() error {
	var err error
	runtimeOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		} {
			if regErr := customRegistry.Register(c); regErr != nil {
				var already prometheus.AlreadyRegisteredError
				if !errors.As(regErr, &already) {
					err = regErr
				}
			}
		}
	})
	return err
}
