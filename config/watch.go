package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader 基于 fsnotify 的配置热更新器，带冷却时间避免编辑器
// 连续写入触发的抖动。更新通过回调下发（如覆盖仓位上限）。
type Reloader struct {
	path     string
	cooldown time.Duration
	watcher  *fsnotify.Watcher
	onUpdate func(AppConfig)
}

func NewReloader(path string, cooldown time.Duration, onUpdate func(AppConfig)) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if cooldown <= 0 {
		cooldown = 2 * time.Second
	}
	return &Reloader{
		path:     path,
		cooldown: cooldown,
		watcher:  watcher,
		onUpdate: onUpdate,
	}, nil
}

// Start 启动监听，直到 ctx 取消。
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.watcher.Add(r.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	go r.watch(ctx)
	return nil
}

func (r *Reloader) watch(ctx context.Context) {
	defer r.watcher.Close()
	var lastReload time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(lastReload) < r.cooldown {
				continue
			}
			cfg, err := LoadWithEnvOverrides(r.path)
			if err != nil {
				// 坏配置不下发，保持当前运行参数。
				continue
			}
			lastReload = time.Now()
			if r.onUpdate != nil {
				r.onUpdate(cfg)
			}
		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
