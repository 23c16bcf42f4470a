// Package metrics provides Prometheus metrics for the quoting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CyclesTotal 决策周期总数
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qe",
		Name:      "cycles_total",
		Help:      "决策周期总数",
	})

	// InstrumentsSkipped 因盘口单边/为空被跳过的合约次数
	InstrumentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qe",
		Name:      "instruments_skipped_total",
		Help:      "盘口单边或为空被跳过的合约次数",
	})

	// OrdersEmitted 产出订单总数（按合约、方向）
	OrdersEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qe",
		Name:      "orders_emitted_total",
		Help:      "产出订单总数",
	}, []string{"symbol", "side"})

	// CrossingsTotal 吃单（crossing）次数
	CrossingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qe",
		Name:      "crossings_total",
		Help:      "对手价吃单次数",
	}, []string{"symbol", "side"})

	// LiquidationsTotal 清算触发次数（mode = hard / soft）
	LiquidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qe",
		Name:      "liquidations_total",
		Help:      "清算触发次数",
	}, []string{"symbol", "mode"})

	// StateRestoreFailures 状态恢复失败（软失败，按默认状态继续）
	StateRestoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qe",
		Name:      "state_restore_failures_total",
		Help:      "持久化状态解析失败次数",
	})

	// FairValue 每个合约最新公允价估计
	FairValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "qe",
		Name:      "fair_value",
		Help:      "最新公允价估计",
	}, []string{"symbol"})

	// Position 每个合约周期起始净仓位
	Position = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "qe",
		Name:      "position",
		Help:      "周期起始净仓位",
	}, []string{"symbol"})

	// WindowTrueCount 清算窗口中被钉在仓位上限的周期数
	WindowTrueCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "qe",
		Name:      "window_pinned_cycles",
		Help:      "清算窗口内钉在仓位上限的周期数",
	}, []string{"symbol"})
)

// RecordOrder 记录一条产出订单；数量正为买、负为卖。
func RecordOrder(symbol string, quantity int) {
	side := "buy"
	if quantity < 0 {
		side = "sell"
	}
	OrdersEmitted.WithLabelValues(symbol, side).Inc()
}

// UpdateQuoteState 更新每合约的决策快照指标。
func UpdateQuoteState(symbol string, fairValue, position, windowTrue int) {
	FairValue.WithLabelValues(symbol).Set(float64(fairValue))
	Position.WithLabelValues(symbol).Set(float64(position))
	WindowTrueCount.WithLabelValues(symbol).Set(float64(windowTrue))
}

// StartMetricsServer 启动Prometheus指标服务器
func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()
}
