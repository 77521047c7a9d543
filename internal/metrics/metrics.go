// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
// auth.LoginRecorder、auth.VerificationRecorder、policy.Recorder、
// middleware.HTTPRecorder、middleware.PanicRecorderを実装する。
type Collector struct {
	loginAttempts      *prometheus.CounterVec
	tokenVerifications *prometheus.CounterVec
	authzDecisions     *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
	panics             prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogapi_login_attempts_total",
			Help: "結果別のログイン試行数",
		}, []string{"outcome"}),
		tokenVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogapi_token_verifications_total",
			Help: "結果別のトークン検証数",
		}, []string{"outcome"}),
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogapi_authorization_decisions_total",
			Help: "リソース・操作・判定別の認可判定数",
		}, []string{"resource", "action", "decision"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogapi_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogapi_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogapi_http_panics_total",
			Help: "ハンドラーで回復したpanicの数",
		}),
	}

	reg.MustRegister(
		c.loginAttempts,
		c.tokenVerifications,
		c.authzDecisions,
		c.httpStatus,
		c.requestLatency,
		c.panics,
	)

	return c
}

// RecordLogin はログイン試行の結果（success / failure）を記録する。
func (c *Collector) RecordLogin(outcome string) {
	c.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordTokenVerification はトークン検証の結果（valid / invalid）を記録する。
func (c *Collector) RecordTokenVerification(outcome string) {
	c.tokenVerifications.WithLabelValues(outcome).Inc()
}

// RecordAuthorization は認可判定を記録する。
func (c *Collector) RecordAuthorization(resource, action, decision string) {
	c.authzDecisions.WithLabelValues(resource, action, decision).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordPanic は回復したpanicを1件記録する。
func (c *Collector) RecordPanic() {
	c.panics.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
