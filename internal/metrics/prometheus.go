package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CouponsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "societyhub_coupons_issued_total",
		Help: "Total coupons issued",
	})

	CouponScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "societyhub_coupon_scans_total",
		Help: "Coupon scans by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	EntrySweepExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "societyhub_entry_sweep_expired_total",
		Help: "Entry permissions flipped to expired by the daily sweep",
	})

	EntrySweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "societyhub_entry_sweep_runs_total",
		Help: "Completed entry expiration sweeps",
	})

	BroadcastsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "societyhub_broadcasts_sent_total",
		Help: "Broadcast messages created by target type",
	}, []string{"type"})
)

func AddCouponsIssued(count int) {
	if count > 0 {
		CouponsIssued.Add(float64(count))
	}
}

func IncCouponScan(endpoint, outcome string) {
	CouponScans.WithLabelValues(label(endpoint), label(outcome)).Inc()
}

func ObserveEntrySweep(affected int64) {
	EntrySweepRuns.Inc()
	if affected > 0 {
		EntrySweepExpired.Add(float64(affected))
	}
}

func IncBroadcastSent(messageType string) {
	BroadcastsSent.WithLabelValues(label(messageType)).Inc()
}

func label(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
