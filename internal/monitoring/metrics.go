package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 邮件指标
	MailsComposed    prometheus.Counter
	MailsDelivered   prometheus.Counter
	DeliveryFailures prometheus.Counter
	DraftsSaved      prometheus.Counter
	MailsTrashed     prometheus.Counter
	TrashPurged      prometheus.Counter

	// 用户指标
	UsersRegistered      prometheus.Counter
	WebsocketConnections prometheus.Gauge

	// 附件指标
	AttachmentSize prometheus.Histogram

	// 错误指标
	ErrorsTotal     *prometheus.CounterVec
	PanicsTotal     prometheus.Counter
	RateLimitBlocks prometheus.Counter
}

// NewMetrics 创建监控指标（promauto 注册到默认注册表）
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webmail_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webmail_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		MailsComposed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_mails_composed_total",
				Help: "Total number of mails composed",
			},
		),

		MailsDelivered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_mails_delivered_total",
				Help: "Total number of mail copies delivered to recipient inboxes",
			},
		),

		DeliveryFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_delivery_failures_total",
				Help: "Total number of recipients that could not be delivered to",
			},
		),

		DraftsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_drafts_saved_total",
				Help: "Total number of drafts saved",
			},
		),

		MailsTrashed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_mails_trashed_total",
				Help: "Total number of mails moved to trash",
			},
		),

		TrashPurged: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_trash_purged_total",
				Help: "Total number of expired mails removed from trash",
			},
		),

		UsersRegistered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_users_registered_total",
				Help: "Total number of users registered",
			},
		),

		WebsocketConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webmail_websocket_connections",
				Help: "Number of active websocket connections",
			},
		),

		AttachmentSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webmail_attachment_size_bytes",
				Help:    "Attachment size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 2, 16),
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webmail_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_panics_total",
				Help: "Total number of panics",
			},
		),

		RateLimitBlocks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webmail_rate_limit_blocks_total",
				Help: "Total number of requests blocked by rate limiting",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
