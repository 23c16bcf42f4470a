// Package engine 把状态层与报价引擎串成一个决策周期：
// 恢复持久化状态 -> 逐合约报价 -> 重新序列化状态。
package engine

import (
	"quote-engine-go/internal/store"
	"quote-engine-go/market"
	"quote-engine-go/metrics"
	"quote-engine-go/strategy"
)

// Snapshot 一个决策周期的完整输入。
type Snapshot struct {
	// Depths 每个合约的盘口快照。
	Depths map[string]market.Depth
	// Positions 每个合约的当前净仓位；缺失按 0。
	Positions map[string]int
	// TraderData 上一周期产出的持久化 blob，空串表示无历史状态。
	TraderData string
}

// Result 一个决策周期的完整输出。
type Result struct {
	// Orders 每个合约的订单序列；单边/空盘口的合约为长度 0 的序列。
	Orders map[string][]strategy.Order
	// Conversions 预留字段，恒为 0。
	Conversions int
	// TraderData 本周期结束后的持久化 blob。
	TraderData string
}

// EventSink 接收周期级事件。
type EventSink func(event string, fields map[string]interface{})

// Engine 决策周期执行器。非并发安全：调用方负责串行调用 RunCycle，
// 跨进程分布时以持久化 blob 为唯一同步手段。
type Engine struct {
	store     *store.Store
	quoter    *strategy.Quoter
	publisher *market.Publisher
	sink      EventSink
}

func New(st *store.Store, q *strategy.Quoter, sink EventSink) *Engine {
	return &Engine{store: st, quoter: q, sink: sink}
}

// SetPublisher 挂接决策流订阅端；可选。
func (e *Engine) SetPublisher(p *market.Publisher) {
	e.publisher = p
}

// Store 暴露状态层，供配置热更新覆盖仓位上限。
func (e *Engine) Store() *store.Store {
	return e.store
}

// RunCycle 执行一个完整决策周期。
// 单边或空盘口的合约产出空订单序列且不初始化任何状态。
func (e *Engine) RunCycle(snap Snapshot) Result {
	e.store.Restore(snap.TraderData)

	orders := make(map[string][]strategy.Order, len(snap.Depths))
	total := 0
	for symbol, depth := range snap.Depths {
		if !depth.TwoSided() {
			orders[symbol] = []strategy.Order{}
			metrics.InstrumentsSkipped.Inc()
			continue
		}

		e.store.Ensure(symbol)
		limit := e.store.Limit(symbol)
		position := snap.Positions[symbol]

		out := e.quoter.Quote(symbol, depth, position, limit, e.store.Window(symbol))
		orders[symbol] = out
		total += len(out)

		if e.publisher != nil {
			e.publisher.PublishDecision(market.Decision{
				Symbol:     symbol,
				FairValue:  market.FairValue(depth.PopularBuy(), depth.PopularSell()),
				Position:   position,
				Limit:      limit,
				OrderCount: len(out),
			})
		}
	}

	res := Result{
		Orders:      orders,
		Conversions: 0,
		TraderData:  e.store.Snapshot(),
	}

	metrics.CyclesTotal.Inc()
	e.logEvent("cycle_complete", map[string]interface{}{
		"instruments": len(snap.Depths),
		"orders":      total,
		"conversions": res.Conversions,
	})
	return res
}

func (e *Engine) logEvent(event string, fields map[string]interface{}) {
	if e.sink == nil {
		return
	}
	e.sink(event, fields)
}
