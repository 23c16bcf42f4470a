package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"quote-engine-go/config"
	"quote-engine-go/engine"
	"quote-engine-go/gateway"
	"quote-engine-go/infrastructure/logger"
	"quote-engine-go/internal/store"
	"quote-engine-go/market"
	"quote-engine-go/metrics"
	"quote-engine-go/monitor/logschema"
	"quote-engine-go/strategy"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	listenAddr := flag.String("listenAddr", "", "websocket 监听地址，覆盖配置")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus metrics 监听地址，覆盖配置")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zl.Close()

	sink := func(event string, fields map[string]interface{}) {
		if err := logschema.Validate(event, fields); err != nil {
			zl.Warn("log schema violation: " + event + ": " + err.Error())
		}
		zl.LogEvent(event, fields)
	}

	st := store.New(cfg.Engine.DefaultPositionLimit, sink)
	applyLimits(st, cfg.Engine)

	eng := engine.New(st, strategy.NewQuoter(sink), sink)
	pub := market.NewPublisher()
	eng.SetPublisher(pub)
	go consumeDecisions(pub.SubscribeDecisions(), sink)

	if cfg.Server.MetricsAddr != "" {
		metrics.StartMetricsServer(cfg.Server.MetricsAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := config.NewReloader(*cfgPath, 2*time.Second, func(next config.AppConfig) {
		st.SetDefaultLimit(next.Engine.DefaultPositionLimit)
		applyLimits(st, next.Engine)
		zl.LogEvent("config_reloaded", map[string]interface{}{
			"defaultPositionLimit": next.Engine.DefaultPositionLimit,
			"overrides":            len(next.Engine.PositionLimits),
		})
	})
	if err != nil {
		log.Fatalf("初始化配置热更新失败: %v", err)
	}
	if err := reloader.Start(ctx); err != nil {
		log.Fatalf("启动配置热更新失败: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: gateway.NewServer(eng, sink).Handler(),
	}
	go func() {
		zl.LogEvent("server_started", map[string]interface{}{"addr": cfg.Server.ListenAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.LogError(err, map[string]interface{}{"addr": cfg.Server.ListenAddr})
			cancel()
		}
	}()

	// systemd 集成：就绪通知与看门狗心跳（非 systemd 环境下均为 no-op）。
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		go func() {
			ticker := time.NewTicker(interval / 2)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		zl.LogEvent("shutting_down", map[string]interface{}{"signal": sig.String()})
	case <-ctx.Done():
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func applyLimits(st *store.Store, cfg config.EngineConfig) {
	for symbol, limit := range cfg.PositionLimits {
		st.SetLimit(symbol, limit)
	}
}

func consumeDecisions(ch <-chan market.Decision, sink func(string, map[string]interface{})) {
	for d := range ch {
		sink("decision", map[string]interface{}{
			"symbol":     d.Symbol,
			"fair_value": d.FairValue,
			"position":   d.Position,
			"limit":      d.Limit,
			"orders":     d.OrderCount,
		})
	}
}
