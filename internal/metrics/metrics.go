package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarketplaceOperations counts job and bid operations by outcome
	// (ok or one of the domain error kinds)
	MarketplaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_operations_total",
			Help: "Total number of job and bid operations by result",
		},
		[]string{"operation", "result"},
	)

	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_notifications_published_total",
			Help: "Notifications handed to the message broker",
		},
		[]string{"type", "result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	WorkerNotificationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_notifications_processed_total",
			Help: "Notifications consumed by the worker",
		},
		[]string{"type", "result"},
	)

	WorkerNotificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "worker_notification_duration_seconds",
			Help: "Duration of notification processing in seconds",
		},
	)
)
