package oteladapters_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/poolsim/pool-simulator-go/simulator/oteladapters"
)

func Test_MetricsCollector_RecordsWithoutProvider(t *testing.T) {
	// arrange: the noop meter stands in for an unconfigured provider
	collector := oteladapters.NewMetricsCollector(noop.NewMeterProvider().Meter("poolsim-test"))

	labels := map[string]string{"strategy": "pooled", "outcome": "success"}

	// act + assert: instrument creation and recording must be total no-ops
	assert.NotPanics(t, func() {
		collector.RecordDuration("simulator.run.duration", 1500*time.Millisecond, labels)
		collector.IncrementCounter("simulator.run.count", labels)
		collector.RecordValue("simulator.run.samples", 20, labels)

		// repeated names reuse the cached instruments
		collector.RecordDuration("simulator.run.duration", 900*time.Millisecond, labels)
		collector.IncrementCounter("simulator.run.count", nil)
		collector.RecordValue("simulator.run.samples", 0, nil)
	})
}
