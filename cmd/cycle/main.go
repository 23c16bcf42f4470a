// 一次性周期评估：从 stdin（或 -in 文件）读取周期请求 JSON，
// 输出决策应答 JSON 到 stdout。供无常驻进程的调用方使用。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"quote-engine-go/config"
	"quote-engine-go/engine"
	"quote-engine-go/gateway"
	"quote-engine-go/internal/store"
	"quote-engine-go/strategy"
)

func main() {
	in := flag.String("in", "-", "请求文件路径，- 表示 stdin")
	cfgPath := flag.String("config", "", "可选配置文件（默认上限与每合约覆盖）")
	defaultLimit := flag.Int("limit", store.DefaultPositionLimit, "默认仓位上限（无配置文件时生效）")
	flag.Parse()

	raw, err := readInput(*in)
	if err != nil {
		log.Fatalf("读取请求失败: %v", err)
	}

	snap, err := gateway.ParseCycleRequest(raw)
	if err != nil {
		log.Fatalf("解析请求失败: %v", err)
	}

	st := store.New(*defaultLimit, nil)
	if *cfgPath != "" {
		cfg, err := config.LoadWithEnvOverrides(*cfgPath)
		if err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
		st = store.New(cfg.Engine.DefaultPositionLimit, nil)
		for symbol, limit := range cfg.Engine.PositionLimits {
			st.SetLimit(symbol, limit)
		}
	}

	eng := engine.New(st, strategy.NewQuoter(nil), nil)
	res := eng.RunCycle(snap)

	payload, err := gateway.EncodeCycleResponse(res)
	if err != nil {
		log.Fatalf("编码应答失败: %v", err)
	}
	fmt.Println(string(payload))
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
