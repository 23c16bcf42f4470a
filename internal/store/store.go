package store

import (
	"encoding/json"
	"sync"

	"quote-engine-go/metrics"
)

// DefaultPositionLimit 首次见到合约时使用的全局默认仓位上限。
const DefaultPositionLimit = 20

// EventSink 接收状态层的诊断事件（如恢复失败）。
type EventSink func(event string, fields map[string]interface{})

// Store 维护跨周期状态：每个合约的仓位上限与清算窗口。
// 每个周期开始时从持久化 blob 恢复，结束时重新序列化。
// 周期内为单写者访问；锁只保护跨实例的读方法。
type Store struct {
	mu           sync.RWMutex
	defaultLimit int
	limits       map[string]int
	windows      map[string]*Window

	sink EventSink
}

// persistedState 持久化 blob 的结构。字段均可选，未知字段忽略，
// 缺失字段保持 Store 现状不变（向前兼容）。
type persistedState struct {
	Version        int               `json:"v,omitempty"`
	Windows        map[string][]bool `json:"windows,omitempty"`
	PositionLimits map[string]int    `json:"position_limits,omitempty"`
}

const blobVersion = 1

func New(defaultLimit int, sink EventSink) *Store {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPositionLimit
	}
	return &Store{
		defaultLimit: defaultLimit,
		limits:       make(map[string]int),
		windows:      make(map[string]*Window),
		sink:         sink,
	}
}

// Restore 从持久化 blob 恢复状态。空或无法解析的 blob 视为"无历史状态"：
// 发出诊断事件后按默认状态继续，绝不报错（软失败是契约要求）。
func (s *Store) Restore(blob string) {
	if blob == "" {
		return
	}
	var st persistedState
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		metrics.StateRestoreFailures.Inc()
		s.logEvent("state_restore_failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Windows != nil {
		for symbol, values := range st.Windows {
			w := NewWindow()
			if len(values) > WindowCapacity {
				values = values[len(values)-WindowCapacity:]
			}
			for _, v := range values {
				w.Push(v)
			}
			s.windows[symbol] = w
		}
	}
	if st.PositionLimits != nil {
		for symbol, limit := range st.PositionLimits {
			s.limits[symbol] = limit
		}
	}
}

// Snapshot 序列化当前状态；与 Restore 无损往返。
func (s *Store) Snapshot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := persistedState{
		Version:        blobVersion,
		Windows:        make(map[string][]bool, len(s.windows)),
		PositionLimits: make(map[string]int, len(s.limits)),
	}
	for symbol, w := range s.windows {
		st.Windows[symbol] = w.Values()
	}
	for symbol, limit := range s.limits {
		st.PositionLimits[symbol] = limit
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Ensure 为合约补齐默认上限与空窗口。幂等。
func (s *Store) Ensure(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.limits[symbol]; !ok {
		s.limits[symbol] = s.defaultLimit
	}
	if _, ok := s.windows[symbol]; !ok {
		s.windows[symbol] = NewWindow()
	}
}

// Has 该合约是否已初始化过状态。
func (s *Store) Has(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.windows[symbol]
	return ok
}

// Limit 返回合约的仓位上限；未初始化时返回默认值（不创建条目）。
func (s *Store) Limit(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit, ok := s.limits[symbol]; ok {
		return limit
	}
	return s.defaultLimit
}

// SetLimit 外部覆盖合约仓位上限（配置热更新入口）。
func (s *Store) SetLimit(symbol string, limit int) {
	if limit <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[symbol] = limit
}

// SetDefaultLimit 更新全局默认上限，只影响此后首次见到的合约。
func (s *Store) SetDefaultLimit(limit int) {
	if limit <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultLimit = limit
}

// Window 返回合约的清算窗口；调用方先 Ensure。
func (s *Store) Window(symbol string) *Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windows[symbol]
}

func (s *Store) logEvent(event string, fields map[string]interface{}) {
	if s == nil || s.sink == nil {
		return
	}
	s.sink(event, fields)
}
