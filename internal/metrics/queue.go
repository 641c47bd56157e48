package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PendingCounter reports the pending job backlog per queue.
type PendingCounter interface {
	CountPending(ctx context.Context) (map[string]int64, error)
}

// RegisterQueueBacklogGauge registers an observable gauge sampling the queue
// backlog on every scrape. A growing audit backlog is the primary signal that
// persistence is falling behind ingestion.
func RegisterQueueBacklogGauge(meterProvider metric.MeterProvider, namespace string, counter PendingCounter) error {
	meter := meterProvider.Meter(namespace)

	gauge, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_queue_pending_jobs", namespace),
		metric.WithDescription("Pending jobs per queue"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create queue backlog gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		counts, err := counter.CountPending(ctx)
		if err != nil {
			return err
		}
		for queue, count := range counts {
			observer.ObserveInt64(gauge, count, metric.WithAttributes(attribute.String("queue", queue)))
		}
		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("failed to register queue backlog callback: %w", err)
	}
	return nil
}
