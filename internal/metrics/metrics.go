// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sendSuccess        prometheus.Counter
	sendFail           prometheus.Counter
	sendLatency        prometheus.Histogram
	httpStatus         *prometheus.CounterVec
	adminLockouts      prometheus.Counter
	verifyDegradations prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sendSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engagepod_mail_send_success_total",
			Help: "通知メール送信成功の合計数",
		}),
		sendFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engagepod_mail_send_fail_total",
			Help: "通知メール送信失敗の合計数",
		}),
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engagepod_mail_send_latency_seconds",
			Help:    "通知メール送信のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagepod_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		adminLockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engagepod_admin_lockout_total",
			Help: "管理者認証のロックアウト発生数",
		}),
		verifyDegradations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engagepod_verification_degraded_total",
			Help: "投稿実在確認が縮退した回数",
		}),
	}

	reg.MustRegister(
		c.sendSuccess,
		c.sendFail,
		c.sendLatency,
		c.httpStatus,
		c.adminLockouts,
		c.verifyDegradations,
	)

	return c
}

// RecordSendSuccess はメール送信成功を記録する。
func (c *Collector) RecordSendSuccess() {
	c.sendSuccess.Inc()
}

// RecordSendFailure はメール送信失敗を記録する。
func (c *Collector) RecordSendFailure() {
	c.sendFail.Inc()
}

// RecordSendLatency はメール送信のレイテンシを記録する。
func (c *Collector) RecordSendLatency(duration time.Duration) {
	c.sendLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAdminLockout は管理者認証のロックアウト発生を記録する。
func (c *Collector) RecordAdminLockout() {
	c.adminLockouts.Inc()
}

// RecordVerificationDegraded は投稿実在確認の縮退を記録する。
func (c *Collector) RecordVerificationDegraded() {
	c.verifyDegradations.Inc()
}

// SetupMetricsRoute は/metricsエンドポイント用のハンドラーを返す。
func SetupMetricsRoute(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
