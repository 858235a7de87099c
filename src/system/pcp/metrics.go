package pcp

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("pcpdeps.pcp")

var (
	addTotal        metric.Int64Counter
	removeTotal     metric.Int64Counter
	resetTotal      metric.Int64Counter
	dependencyEdges metric.Int64UpDownCounter
	layerStackCount metric.Int64UpDownCounter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		addTotal, err = meter.Int64Counter(
			"pcp_dependencies_add_total",
			metric.WithDescription("Prim indices added to a dependency index"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		removeTotal, err = meter.Int64Counter(
			"pcp_dependencies_remove_total",
			metric.WithDescription("Prim indices removed from a dependency index"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		resetTotal, err = meter.Int64Counter(
			"pcp_dependencies_reset_total",
			metric.WithDescription("Dependency indices cleared by RemoveAll"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		dependencyEdges, err = meter.Int64UpDownCounter(
			"pcp_dependencies_edges",
			metric.WithDescription("Recorded (layer stack, site, prim index) dependencies"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		layerStackCount, err = meter.Int64UpDownCounter(
			"pcp_dependencies_layer_stacks",
			metric.WithDescription("Layer stacks with at least one recorded dependency"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordAdd(edges int) {
	if metricsErr != nil || addTotal == nil {
		return
	}
	ctx := context.Background()
	addTotal.Add(ctx, 1)
	dependencyEdges.Add(ctx, int64(edges))
}

func recordRemove(edges int) {
	if metricsErr != nil || removeTotal == nil {
		return
	}
	ctx := context.Background()
	removeTotal.Add(ctx, 1)
	dependencyEdges.Add(ctx, -int64(edges))
}

// recordReset lowers the edge gauge by edges without counting prim index
// removals.
func recordReset(edges int) {
	if metricsErr != nil || resetTotal == nil {
		return
	}
	ctx := context.Background()
	resetTotal.Add(ctx, 1)
	dependencyEdges.Add(ctx, -int64(edges))
}

func recordLayerStacks(delta int) {
	if metricsErr != nil || layerStackCount == nil || delta == 0 {
		return
	}
	layerStackCount.Add(context.Background(), int64(delta))
}
