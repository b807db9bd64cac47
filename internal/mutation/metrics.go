package mutation

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type mutationMetricsCollection struct {
	mutationCount metric.Int64Counter
}

var metrics mutationMetricsCollection

func init() {
	const name = "eventlight/mutation"
	meter := otel.Meter(name)

	mutationCount, err := meter.Int64Counter(
		"mutation/count",
		metric.WithDescription("Mutations by name and outcome"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create mutation count metric: %w", err))
	}

	metrics = mutationMetricsCollection{
		mutationCount: mutationCount,
	}
}

func mutationAttributes(name, outcome string) metric.AddOption {
	return metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("outcome", outcome),
	)
}
