// 场景回放：按 YAML 场景逐周期驱动引擎，blob 跨周期携带，
// 与外部调用方的契约完全一致。每个周期输出一行决策 JSON。
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"quote-engine-go/engine"
	"quote-engine-go/internal/store"
	"quote-engine-go/market"
	"quote-engine-go/strategy"
)

// Scenario 回放场景：一组按序执行的周期。
type Scenario struct {
	DefaultPositionLimit int             `yaml:"defaultPositionLimit"`
	PositionLimits       map[string]int  `yaml:"positionLimits"`
	Cycles               []ScenarioCycle `yaml:"cycles"`
}

type ScenarioCycle struct {
	Positions map[string]int          `yaml:"positions"`
	Books     map[string]ScenarioBook `yaml:"books"`
}

type ScenarioBook struct {
	Buys  map[int]int `yaml:"buys"`
	Sells map[int]int `yaml:"sells"`
}

type cycleOutput struct {
	Cycle       int                         `json:"cycle"`
	Orders      map[string][]strategy.Order `json:"orders"`
	Conversions int                         `json:"conversions"`
	TraderData  string                      `json:"traderData"`
}

func main() {
	path := flag.String("scenario", "configs/scenario.yaml", "场景文件路径")
	flag.Parse()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("读取场景失败: %v", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		log.Fatalf("解析场景失败: %v", err)
	}
	if sc.DefaultPositionLimit <= 0 {
		sc.DefaultPositionLimit = store.DefaultPositionLimit
	}

	blob := ""
	for i, cycle := range sc.Cycles {
		// 每个周期用全新引擎实例，进程内不保留任何记忆。
		st := store.New(sc.DefaultPositionLimit, nil)
		for symbol, limit := range sc.PositionLimits {
			st.SetLimit(symbol, limit)
		}
		eng := engine.New(st, strategy.NewQuoter(nil), nil)

		depths := make(map[string]market.Depth, len(cycle.Books))
		for symbol, book := range cycle.Books {
			depths[symbol] = market.Depth{Buys: book.Buys, Sells: book.Sells}
		}

		res := eng.RunCycle(engine.Snapshot{
			Depths:     depths,
			Positions:  cycle.Positions,
			TraderData: blob,
		})
		blob = res.TraderData

		line, err := json.Marshal(cycleOutput{
			Cycle:       i + 1,
			Orders:      res.Orders,
			Conversions: res.Conversions,
			TraderData:  res.TraderData,
		})
		if err != nil {
			log.Fatalf("编码输出失败: %v", err)
		}
		fmt.Println(string(line))
	}
}
