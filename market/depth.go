package market

import "sort"

// Depth 单个合约的两侧盘口快照：价格 -> 挂单数量。
// 买侧数量为正；卖侧数量为负，绝对值为挂出的量。
// 每个决策周期由调用方重新提供，引擎不持有。
type Depth struct {
	Buys  map[int]int `json:"buys"`
	Sells map[int]int `json:"sells"`
}

// TwoSided 两侧均有挂单时才可报价。
func (d Depth) TwoSided() bool {
	return len(d.Buys) > 0 && len(d.Sells) > 0
}

// BuyLevels 返回买侧价格，从高到低。
func (d Depth) BuyLevels() []int {
	levels := make([]int, 0, len(d.Buys))
	for p := range d.Buys {
		levels = append(levels, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	return levels
}

// SellLevels 返回卖侧价格，从低到高。
func (d Depth) SellLevels() []int {
	levels := make([]int, 0, len(d.Sells))
	for p := range d.Sells {
		levels = append(levels, p)
	}
	sort.Ints(levels)
	return levels
}

// PopularBuy 返回挂量最大的买价。
// 挂量并列时取更高的价格（更靠近盘口），保证结果确定。
func (d Depth) PopularBuy() int {
	best := 0
	bestQty := -1
	for _, p := range d.BuyLevels() {
		if q := d.Buys[p]; q > bestQty {
			best = p
			bestQty = q
		}
	}
	return best
}

// PopularSell 返回挂量绝对值最大的卖价。
// 并列时取更低的价格（更靠近盘口）。
func (d Depth) PopularSell() int {
	best := 0
	bestQty := -1
	for _, p := range d.SellLevels() {
		if q := -d.Sells[p]; q > bestQty {
			best = p
			bestQty = q
		}
	}
	return best
}

// FairValue 以最受欢迎买卖价的中点估计公允价。
// 落在 .5 时向偶数取整（banker's rounding），价格假定为正。
func FairValue(popularBuy, popularSell int) int {
	sum := popularBuy + popularSell
	half := sum / 2
	if sum%2 == 0 {
		return half
	}
	if half%2 == 0 {
		return half
	}
	return half + 1
}
