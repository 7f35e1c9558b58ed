// Package metrics 서버 동작 지표(Prometheus)를 정의합니다.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "autodelivery"

// Metrics 서버 전역 지표 모음. 모든 메서드는 nil 수신자에서도 안전하게 동작합니다.
type Metrics struct {
	registry *prometheus.Registry

	handlerFailures  *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	reconcilePasses  *prometheus.CounterVec
	reconcileActions *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	runnerInFlight   prometheus.Gauge
	events           *prometheus.CounterVec
}

// New 새 레지스트리에 지표를 등록합니다.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "디스패치된 이벤트 수",
		}, []string{"kind"}),

		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "에러를 반환하거나 패닉이 발생한 핸들러 실행 수",
		}, []string{"kind", "handler"}),

		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "배송 처리 결과별 주문 수",
		}, []string{"status"}),

		reconcilePasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_passes_total",
			Help:      "상품 상태 동기화 실행 수",
		}, []string{"result"}),

		reconcileActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_actions_total",
			Help:      "상품 복구/비활성화 시도 수",
		}, []string{"action", "result"}),

		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "운영자 알림 전송 결과",
		}, []string{"result"}),

		runnerInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runner_in_flight_tasks",
			Help:      "백그라운드 러너에서 실행 중인 작업 수",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.events,
		m.handlerFailures,
		m.deliveries,
		m.reconcilePasses,
		m.reconcileActions,
		m.notifications,
		m.runnerInFlight,
	)

	return m
}

// Handler /metrics 엔드포인트용 HTTP 핸들러를 반환합니다.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 테스트에서 수집값을 확인하기 위한 레지스트리를 반환합니다.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) EventDispatched(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) HandlerFailed(kind, handler string) {
	if m == nil {
		return
	}
	m.handlerFailures.WithLabelValues(kind, handler).Inc()
}

func (m *Metrics) DeliveryFinished(status string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(status).Inc()
}

func (m *Metrics) ReconcilePass(result string) {
	if m == nil {
		return
	}
	m.reconcilePasses.WithLabelValues(result).Inc()
}

func (m *Metrics) ReconcileAction(action string, ok bool) {
	if m == nil {
		return
	}
	m.reconcileActions.WithLabelValues(action, resultLabel(ok)).Inc()
}

func (m *Metrics) NotificationSent(ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(resultLabel(ok)).Inc()
}

func (m *Metrics) RunnerTaskStarted() {
	if m == nil {
		return
	}
	m.runnerInFlight.Inc()
}

func (m *Metrics) RunnerTaskFinished() {
	if m == nil {
		return
	}
	m.runnerInFlight.Dec()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
