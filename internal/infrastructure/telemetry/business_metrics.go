package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics groups the counters the shop cares about: tuning
// file throughput, notification delivery, carrier lookups and orders.
type BusinessMetrics struct {
	filesUploaded     *Counter
	fileStatusChanges *Counter
	notificationsSent *Counter
	carrierLookups    *Counter
	carrierLookupTime *Histogram
	ordersPlaced      *Counter
	orderAmount       *Histogram
	telegramCallbacks *Counter
}

// NewBusinessMetrics creates the metric instruments on the given meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	filesUploaded, err := NewCounter(meter,
		"compucar_tuning_files_uploaded_total",
		"Number of tuning files uploaded", "{file}")
	if err != nil {
		return nil, err
	}

	fileStatusChanges, err := NewCounter(meter,
		"compucar_tuning_file_status_changes_total",
		"Number of tuning file status transitions", "{transition}")
	if err != nil {
		return nil, err
	}

	notificationsSent, err := NewCounter(meter,
		"compucar_notifications_sent_total",
		"Number of notifications dispatched per channel", "{notification}")
	if err != nil {
		return nil, err
	}

	carrierLookups, err := NewCounter(meter,
		"compucar_carrier_lookups_total",
		"Number of carrier rate lookups", "{lookup}")
	if err != nil {
		return nil, err
	}

	carrierLookupTime, err := NewHistogram(meter, HistogramOpts{
		Name:        "compucar_carrier_lookup_duration_seconds",
		Description: "Latency of carrier rate lookups",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	ordersPlaced, err := NewCounter(meter,
		"compucar_orders_placed_total",
		"Number of orders placed", "{order}")
	if err != nil {
		return nil, err
	}

	orderAmount, err := NewHistogram(meter, HistogramOpts{
		Name:        "compucar_order_amount",
		Description: "Grand total of placed orders",
		Unit:        "DZD",
	})
	if err != nil {
		return nil, err
	}

	telegramCallbacks, err := NewCounter(meter,
		"compucar_telegram_callbacks_total",
		"Number of Telegram admin callbacks processed", "{callback}")
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram callback counter: %w", err)
	}

	return &BusinessMetrics{
		filesUploaded:     filesUploaded,
		fileStatusChanges: fileStatusChanges,
		notificationsSent: notificationsSent,
		carrierLookups:    carrierLookups,
		carrierLookupTime: carrierLookupTime,
		ordersPlaced:      ordersPlaced,
		orderAmount:       orderAmount,
		telegramCallbacks: telegramCallbacks,
	}, nil
}

// RecordFileUploaded counts one tuning file upload
func (bm *BusinessMetrics) RecordFileUploaded(ctx context.Context) {
	bm.filesUploaded.Inc(ctx)
}

// RecordFileStatusChange counts one status transition
func (bm *BusinessMetrics) RecordFileStatusChange(ctx context.Context, status string) {
	bm.fileStatusChanges.Inc(ctx, AttrFileStatus.String(status))
}

// RecordNotificationSent counts one notification delivery attempt
func (bm *BusinessMetrics) RecordNotificationSent(ctx context.Context, channel, result string) {
	bm.notificationsSent.Inc(ctx, AttrChannel.String(channel), AttrResult.String(result))
}

// RecordCarrierLookup counts one rate lookup and its latency
func (bm *BusinessMetrics) RecordCarrierLookup(ctx context.Context, d time.Duration, result string) {
	bm.carrierLookups.Inc(ctx, AttrResult.String(result))
	bm.carrierLookupTime.RecordDuration(ctx, d, AttrResult.String(result))
}

// RecordOrderPlaced counts one placed order and its amount
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, amount float64) {
	bm.ordersPlaced.Inc(ctx)
	bm.orderAmount.Record(ctx, amount)
}

// RecordTelegramCallback counts one processed admin callback
func (bm *BusinessMetrics) RecordTelegramCallback(ctx context.Context, action string) {
	bm.telegramCallbacks.Inc(ctx, AttrResult.String(action))
}
