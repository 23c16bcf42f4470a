package strategy

import (
	"quote-engine-go/internal/store"
	"quote-engine-go/market"
	"quote-engine-go/metrics"
)

// Order 单条下单决策；数量为正表示买入，负表示卖出。
// 同一合约一个周期可产出多条，顺序即产出顺序，优先级由撮合端决定。
type Order struct {
	Symbol   string `json:"symbol"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// EventSink 接收策略侧事件（清算触发等）。
type EventSink func(event string, fields map[string]interface{})

// Quoter 报价引擎。对给定盘口/仓位/上限/清算窗口的纯决策函数，
// 唯一的副作用是向窗口追加本周期的钉仓记录。
type Quoter struct {
	sink EventSink
}

func NewQuoter(sink EventSink) *Quoter {
	return &Quoter{sink: sink}
}

// Quote 对单个合约执行一次报价决策。
//
// 前置条件：depth 两侧均非空（调用方过滤）。流程：
// 以最受欢迎买卖价中点估公允价；按周期起始仓位更新清算窗口；
// 窗口满且全部钉仓 -> 硬清算，≥5 次且最近一次钉仓 -> 软清算；
// 仓位超过上限一半时将可接受吃单价向公允价内收 1 tick；
// 先吃有利对手价，再按硬/软清算各出剩余容量的一半，
// 最后把剩余容量挂在最受欢迎档内侧 1 tick（不越过收敛后的界）。
func (q *Quoter) Quote(symbol string, depth market.Depth, position, limit int, w *store.Window) []Order {
	popularBuy := depth.PopularBuy()
	popularSell := depth.PopularSell()
	fairValue := market.FairValue(popularBuy, popularSell)

	toBuy := limit - position
	toSell := limit + position

	// 记录的是本周期起始仓位，先于任何订单生成。
	w.Push(abs(position) == limit)

	hardLiquidate := w.Full() && w.All()
	softLiquidate := w.Full() && w.TrueCount() >= 5 && w.Last()

	maxBuyPrice := fairValue
	if 2*position > limit {
		maxBuyPrice = fairValue - 1
	}
	minSellPrice := fairValue
	if 2*position < -limit {
		minSellPrice = fairValue + 1
	}

	metrics.UpdateQuoteState(symbol, fairValue, position, w.TrueCount())

	var orders []Order

	// 买侧：按价格从低到高吃掉不高于界价的卖单。
	for _, price := range depth.SellLevels() {
		if toBuy > 0 && price <= maxBuyPrice {
			quantity := min(toBuy, -depth.Sells[price])
			orders = append(orders, Order{Symbol: symbol, Price: price, Quantity: quantity})
			metrics.CrossingsTotal.WithLabelValues(symbol, "buy").Inc()
			toBuy -= quantity
		}
	}

	if toBuy > 0 && hardLiquidate {
		quantity := toBuy / 2
		orders = append(orders, Order{Symbol: symbol, Price: fairValue, Quantity: quantity})
		toBuy -= quantity
		q.recordLiquidation(symbol, "hard", "buy", fairValue, quantity)
	}
	if toBuy > 0 && softLiquidate {
		quantity := toBuy / 2
		orders = append(orders, Order{Symbol: symbol, Price: fairValue - 2, Quantity: quantity})
		toBuy -= quantity
		q.recordLiquidation(symbol, "soft", "buy", fairValue-2, quantity)
	}
	if toBuy > 0 {
		price := min(maxBuyPrice, popularBuy+1)
		orders = append(orders, Order{Symbol: symbol, Price: price, Quantity: toBuy})
	}

	// 卖侧，与买侧对称：按价格从高到低吃掉不低于界价的买单。
	for _, price := range depth.BuyLevels() {
		if toSell > 0 && price >= minSellPrice {
			quantity := min(toSell, depth.Buys[price])
			orders = append(orders, Order{Symbol: symbol, Price: price, Quantity: -quantity})
			metrics.CrossingsTotal.WithLabelValues(symbol, "sell").Inc()
			toSell -= quantity
		}
	}

	if toSell > 0 && hardLiquidate {
		quantity := toSell / 2
		orders = append(orders, Order{Symbol: symbol, Price: fairValue, Quantity: -quantity})
		toSell -= quantity
		q.recordLiquidation(symbol, "hard", "sell", fairValue, quantity)
	}
	if toSell > 0 && softLiquidate {
		quantity := toSell / 2
		orders = append(orders, Order{Symbol: symbol, Price: fairValue + 2, Quantity: -quantity})
		toSell -= quantity
		q.recordLiquidation(symbol, "soft", "sell", fairValue+2, quantity)
	}
	if toSell > 0 {
		price := max(minSellPrice, popularSell-1)
		orders = append(orders, Order{Symbol: symbol, Price: price, Quantity: -toSell})
	}

	for _, o := range orders {
		metrics.RecordOrder(symbol, o.Quantity)
	}
	return orders
}

func (q *Quoter) recordLiquidation(symbol, mode, side string, price, quantity int) {
	metrics.LiquidationsTotal.WithLabelValues(symbol, mode).Inc()
	if q.sink == nil {
		return
	}
	q.sink("liquidation", map[string]interface{}{
		"symbol":   symbol,
		"mode":     mode,
		"side":     side,
		"price":    price,
		"quantity": quantity,
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
