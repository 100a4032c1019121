package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricsUseCaseObserver struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsUseCaseObserver records use-case counts by outcome and their
// latency on the given registerer.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) UseCaseObserver {
	factory := promauto.With(reg)
	return &metricsUseCaseObserver{
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeline",
			Name:      "use_cases_total",
			Help:      "Service use cases executed, by name and outcome.",
		}, []string{"use_case", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "timeline",
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"use_case"}),
	}
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.total.WithLabelValues(event.Name, outcomeOf(event.Err)).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}
