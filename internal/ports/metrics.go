package ports

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type portsMetricsCollection struct {
	commandCount    metric.Int64Counter
	commandDuration metric.Float64Histogram
}

var metrics portsMetricsCollection

func init() {
	const name = "eventlight/ports"
	meter := otel.Meter(name)

	commandCount, err := meter.Int64Counter(
		"ports/command_count",
		metric.WithDescription("Total number of commands run"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create command count metric: %w", err))
	}

	commandDuration, err := meter.Float64Histogram(
		"ports/command_duration_seconds",
		metric.WithDescription("Time spent running commands, including waiting for the events API"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create command duration metric: %w", err))
	}

	metrics = portsMetricsCollection{
		commandCount:    commandCount,
		commandDuration: commandDuration,
	}
}

func commandOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrViewFailed):
		return "view_failed"
	default:
		return "error"
	}
}

func buildMetricsMiddleware() Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			ctx := cmd.Context()

			err := next(cmd, args)

			attributesOption := metric.WithAttributes(
				attribute.String("command", cmd.Name()),
				attribute.String("outcome", commandOutcome(err)),
			)

			metrics.commandCount.Add(ctx, 1, attributesOption)
			metrics.commandDuration.Record(ctx, time.Since(start).Seconds(), attributesOption)

			return err
		}
	}
}
