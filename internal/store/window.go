package store

// WindowCapacity 清算窗口容量：最近多少个周期的"被钉在仓位上限"记录。
const WindowCapacity = 10

// Window 固定容量的布尔滑动窗口（FIFO）。
// 第 i 项表示第 i 个历史周期结束时仓位是否恰好在 ±上限。
// 非并发安全；单个周期内由唯一的写者顺序访问。
type Window struct {
	entries []bool
}

func NewWindow() *Window {
	return &Window{entries: make([]bool, 0, WindowCapacity)}
}

// Push 追加一项，超过容量时淘汰最旧的一项。
func (w *Window) Push(v bool) {
	if len(w.entries) == WindowCapacity {
		copy(w.entries, w.entries[1:])
		w.entries = w.entries[:WindowCapacity-1]
	}
	w.entries = append(w.entries, v)
}

func (w *Window) Len() int { return len(w.entries) }

// Full 窗口达到容量后清算信号才有意义。
func (w *Window) Full() bool { return len(w.entries) == WindowCapacity }

// Last 最近一个周期是否被钉在上限；空窗口返回 false。
func (w *Window) Last() bool {
	if len(w.entries) == 0 {
		return false
	}
	return w.entries[len(w.entries)-1]
}

// TrueCount 窗口内为 true 的项数。
func (w *Window) TrueCount() int {
	n := 0
	for _, v := range w.entries {
		if v {
			n++
		}
	}
	return n
}

// All 窗口内是否全部为 true；空窗口返回 true，调用方需配合 Full 使用。
func (w *Window) All() bool {
	for _, v := range w.entries {
		if !v {
			return false
		}
	}
	return true
}

// Values 返回窗口内容的拷贝，最旧在前。
func (w *Window) Values() []bool {
	out := make([]bool, len(w.entries))
	copy(out, w.entries)
	return out
}
