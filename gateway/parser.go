package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"

	"quote-engine-go/engine"
	"quote-engine-go/market"
	"quote-engine-go/strategy"
)

// CycleRequest 一次决策周期的线上请求。盘口以 JSON 对象表示，
// 键为价格（十进制整数字符串），买侧数量为正、卖侧为负。
type CycleRequest struct {
	Instruments map[string]DepthMessage `json:"instruments"`
	Positions   map[string]int          `json:"positions"`
	TraderData  string                  `json:"traderData"`
}

type DepthMessage struct {
	Buys  map[string]int `json:"buys"`
	Sells map[string]int `json:"sells"`
}

// CycleResponse 决策周期的应答。
type CycleResponse struct {
	Orders      map[string][]strategy.Order `json:"orders"`
	Conversions int                         `json:"conversions"`
	TraderData  string                      `json:"traderData"`
}

// ErrorResponse 请求级错误的应答；连接保持。
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseCycleRequest 解析请求并转换为引擎输入。
func ParseCycleRequest(raw []byte) (engine.Snapshot, error) {
	var req CycleRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return engine.Snapshot{}, fmt.Errorf("parse cycle request: %w", err)
	}

	depths := make(map[string]market.Depth, len(req.Instruments))
	for symbol, msg := range req.Instruments {
		depth, err := parseDepth(msg)
		if err != nil {
			return engine.Snapshot{}, fmt.Errorf("instrument %s: %w", symbol, err)
		}
		depths[symbol] = depth
	}

	positions := req.Positions
	if positions == nil {
		positions = map[string]int{}
	}
	return engine.Snapshot{
		Depths:     depths,
		Positions:  positions,
		TraderData: req.TraderData,
	}, nil
}

func parseDepth(msg DepthMessage) (market.Depth, error) {
	depth := market.Depth{
		Buys:  make(map[int]int, len(msg.Buys)),
		Sells: make(map[int]int, len(msg.Sells)),
	}
	for key, qty := range msg.Buys {
		price, err := strconv.Atoi(key)
		if err != nil {
			return market.Depth{}, fmt.Errorf("bad buy price %q: %w", key, err)
		}
		depth.Buys[price] = qty
	}
	for key, qty := range msg.Sells {
		price, err := strconv.Atoi(key)
		if err != nil {
			return market.Depth{}, fmt.Errorf("bad sell price %q: %w", key, err)
		}
		depth.Sells[price] = qty
	}
	return depth, nil
}

// EncodeCycleResponse 将引擎输出编码为应答。
func EncodeCycleResponse(res engine.Result) ([]byte, error) {
	return json.Marshal(CycleResponse{
		Orders:      res.Orders,
		Conversions: res.Conversions,
		TraderData:  res.TraderData,
	})
}
