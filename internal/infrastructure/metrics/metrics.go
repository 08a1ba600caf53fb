// Package metrics はPrometheus計測値を定義する
// 値は /metrics（serve コマンド）で公開される
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 取得モード
const (
	ModeHTTP     = "http"
	ModeRenderer = "renderer"
)

var (
	// メニュー取得
	MenuFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealcalc_menu_fetch_total",
			Help: "Total number of menu fetches by mode and result",
		},
		[]string{"mode", "result"},
	)

	MenuFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mealcalc_menu_fetch_duration_seconds",
			Help:    "Duration of a whole menu fetch including fragments",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	FragmentFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mealcalc_fragment_failures_total",
			Help: "Total number of menu fragment requests that failed and were skipped",
		},
	)

	MenuItemsExtracted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mealcalc_menu_items_extracted",
			Help: "Number of distinct menu items extracted by the latest successful fetch",
		},
	)

	// 組み合わせ探索
	OptimizerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealcalc_optimizer_runs_total",
			Help: "Total number of optimizer runs by constraint mode and result",
		},
		[]string{"limit_primary", "result"},
	)

	OptimizerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mealcalc_optimizer_duration_seconds",
			Help:    "Duration of the combination search",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealcalc_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mealcalc_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// 食堂一覧の更新
	CafeteriaRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealcalc_cafeteria_refresh_total",
			Help: "Total number of cafeteria list refreshes by result",
		},
		[]string{"result"},
	)

	CafeteriasKnown = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mealcalc_cafeterias_known",
			Help: "Number of cafeterias in the current directory",
		},
	)
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordMenuFetch はメニュー取得1回分を記録する
func RecordMenuFetch(mode string, items int, duration time.Duration, err error) {
	MenuFetchTotal.WithLabelValues(mode, resultLabel(err)).Inc()
	MenuFetchDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err == nil {
		MenuItemsExtracted.Set(float64(items))
	}
}

// RecordFragmentFailure は読み飛ばしたフラグメントを記録する
func RecordFragmentFailure() {
	FragmentFailuresTotal.Inc()
}

// RecordOptimization は探索1回分を記録する
func RecordOptimization(limitPrimary bool, duration time.Duration, err error) {
	limited := "false"
	if limitPrimary {
		limited = "true"
	}
	OptimizerRunsTotal.WithLabelValues(limited, resultLabel(err)).Inc()
	OptimizerDuration.Observe(duration.Seconds())
}

// RecordAPIRequest はAPIリクエストを記録する
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCafeteriaRefresh は食堂一覧の更新を記録する
func RecordCafeteriaRefresh(count int, err error) {
	CafeteriaRefreshTotal.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		CafeteriasKnown.Set(float64(count))
	}
}
