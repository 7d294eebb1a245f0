package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/platform/envutil"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	activityRuns    *CounterVec
	activityLatency *HistogramVec

	scanScores   *GaugeVec
	corrections  *CounterVec
	providerErrs *CounterVec

	pgStats   *GaugeVec
	redisUp   *GaugeVec
	redisPing *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool { return envutil.Bool("METRICS_ENABLED", false) }

// Current returns the process-wide metrics, or nil before Init. Every
// recording method is safe on a nil *Metrics.
func Current() *Metrics { return instance }

func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("brandlens_api_requests_total", "API requests", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("brandlens_api_request_seconds", "API request latency", []string{"method", "route"}, nil),
		apiInflight: NewGaugeVec("brandlens_api_inflight", "In-flight API requests", nil),

		llmRequests: NewCounterVec("brandlens_llm_requests_total", "LLM requests", []string{"model", "status"}),
		llmLatency:  NewHistogramVec("brandlens_llm_request_seconds", "LLM request latency", []string{"model"}, nil),
		llmTokens:   NewCounterVec("brandlens_llm_tokens_total", "LLM tokens", []string{"model", "kind"}),

		activityRuns:    NewCounterVec("brandlens_activity_runs_total", "Workflow activity runs", []string{"activity", "status"}),
		activityLatency: NewHistogramVec("brandlens_activity_seconds", "Workflow activity duration", []string{"activity"}, []float64{1, 5, 15, 60, 300, 900, 1800, 3600}),

		scanScores:   NewGaugeVec("brandlens_scan_score", "Latest completed scan scores", []string{"metric"}),
		corrections:  NewCounterVec("brandlens_corrections_total", "Correction status changes", []string{"status"}),
		providerErrs: NewCounterVec("brandlens_provider_errors_total", "Platform query failures", []string{"platform"}),

		pgStats:   NewGaugeVec("brandlens_postgres_pool", "Postgres pool stats", []string{"stat"}),
		redisUp:   NewGaugeVec("brandlens_redis_up", "Redis reachability", nil),
		redisPing: NewGaugeVec("brandlens_redis_ping_seconds", "Redis ping latency", nil),
	}
}

func (m *Metrics) writers() []interface{ WritePrometheus(io.Writer) error } {
	return []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.activityRuns, m.activityLatency,
		m.scanScores, m.corrections, m.providerErrs,
		m.pgStats, m.redisUp, m.redisPing,
	}
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, s := range m.writers() {
		if err := s.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

// StartServer serves /metrics on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil || strings.TrimSpace(addr) == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && log != nil {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

func (m *Metrics) ObserveActivity(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.activityRuns.Inc(name, status)
	m.activityLatency.Observe(dur.Seconds(), name)
}

// SetScanScores records the headline scores of the latest completed scan.
func (m *Metrics) SetScanScores(scores map[string]float64) {
	if m == nil {
		return
	}
	for k, v := range scores {
		m.scanScores.Set(v, k)
	}
}

func (m *Metrics) IncCorrection(status string) {
	if m == nil {
		return
	}
	m.corrections.Inc(status)
}

func (m *Metrics) IncProviderError(platform string) {
	if m == nil {
		return
	}
	m.providerErrs.Inc(platform)
}

func scrapeInterval() time.Duration {
	s := envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 15)
	if s < 1 {
		s = 15
	}
	return time.Duration(s) * time.Second
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: postgres collector disabled", "error", err)
		}
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := sqlDB.Stats()
				m.pgStats.Set(float64(st.OpenConnections), "open")
				m.pgStats.Set(float64(st.InUse), "in_use")
				m.pgStats.Set(float64(st.Idle), "idle")
				m.pgStats.Set(float64(st.WaitCount), "wait_count")
				m.pgStats.Set(st.WaitDuration.Seconds(), "wait_seconds")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
