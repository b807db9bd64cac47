package querycache

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type storeMetricsCollection struct {
	fetchCount        metric.Int64Counter
	invalidationCount metric.Int64Counter
}

var metrics storeMetricsCollection

func init() {
	const name = "eventlight/querycache"
	meter := otel.Meter(name)

	fetchCount, err := meter.Int64Counter(
		"querycache/fetch_count",
		metric.WithDescription("Fetches by cache result (hit, miss, join, forced)"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create fetch count metric: %w", err))
	}

	invalidationCount, err := meter.Int64Counter(
		"querycache/invalidation_count",
		metric.WithDescription("Entries marked stale by invalidation"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create invalidation count metric: %w", err))
	}

	metrics = storeMetricsCollection{
		fetchCount:        fetchCount,
		invalidationCount: invalidationCount,
	}
}

func resultAttribute(result string) metric.AddOption {
	return metric.WithAttributes(attribute.String("result", result))
}
