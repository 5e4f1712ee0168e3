// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// リポジトリ層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordUserFetch(success bool)
	RecordSkippedRecord(domain string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordAuthFailure(reason string)
	RecordNotificationEmitted(notificationType string)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	userFetch      *prometheus.CounterVec
	skippedRecords *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	authFailures   *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	sessionsPurged prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		userFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_user_fetch_total",
			Help: "関連ユーザー取得の合計数（結果別）",
		}, []string{"result"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_skipped_records_total",
			Help: "関連ユーザーを解決できずに除外したレコード数",
		}, []string{"domain"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bucket_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_auth_failures_total",
			Help: "認証失敗の合計数（理由別）",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_notifications_emitted_total",
			Help: "発行した通知の合計数（種別別）",
		}, []string{"type"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bucket_expired_sessions_deleted_total",
			Help: "クリーンアップジョブが削除した期限切れセッション数",
		}),
	}

	reg.MustRegister(
		c.userFetch,
		c.skippedRecords,
		c.httpStatus,
		c.requestLatency,
		c.authFailures,
		c.notifications,
		c.sessionsPurged,
	)

	return c
}

// RecordUserFetch は関連ユーザー取得の結果を記録する。
func (c *Collector) RecordUserFetch(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.userFetch.WithLabelValues(result).Inc()
}

// RecordSkippedRecord は除外したレコードを記録する。
func (c *Collector) RecordSkippedRecord(domain string) {
	c.skippedRecords.WithLabelValues(domain).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordNotificationEmitted は通知の発行を記録する。
func (c *Collector) RecordNotificationEmitted(notificationType string) {
	c.notifications.WithLabelValues(notificationType).Inc()
}

// RecordSessionsCleaned は削除した期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	if count > 0 {
		c.sessionsPurged.Add(float64(count))
	}
}

// Handler はgathererの内容を返すスクレイプ用ハンドラー。
// 収集エラーがあっても取得できたメトリクスは返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
