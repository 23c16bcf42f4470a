package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New(DefaultPositionLimit, nil)
	s.Ensure("AMETHYSTS")
	s.Ensure("KELP")
	s.SetLimit("KELP", 50)
	for _, v := range []bool{true, false, true} {
		s.Window("AMETHYSTS").Push(v)
	}

	blob := s.Snapshot()
	require.NotEmpty(t, blob)

	restored := New(DefaultPositionLimit, nil)
	restored.Restore(blob)

	assert.Equal(t, 20, restored.Limit("AMETHYSTS"))
	assert.Equal(t, 50, restored.Limit("KELP"))
	assert.Equal(t, []bool{true, false, true}, restored.Window("AMETHYSTS").Values())
	assert.Equal(t, []bool{}, restored.Window("KELP").Values())

	// 再次往返保持一致。
	assert.Equal(t, blob, restored.Snapshot())
}

func TestRestoreFailSoft(t *testing.T) {
	var events []string
	sink := func(event string, fields map[string]interface{}) {
		events = append(events, event)
	}

	for _, blob := range []string{"", "{not json", "12,34", "\x00"} {
		s := New(DefaultPositionLimit, sink)
		s.Restore(blob)
		assert.False(t, s.Has("AMETHYSTS"), "blob %q must leave store empty", blob)
		assert.Equal(t, DefaultPositionLimit, s.Limit("AMETHYSTS"))
	}

	// 空串视为无历史状态，不算失败；其余三个应各产生一次诊断事件。
	assert.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "state_restore_failed", e)
	}
}

func TestRestoreIgnoresUnknownFields(t *testing.T) {
	s := New(DefaultPositionLimit, nil)
	s.Restore(`{"v":7,"windows":{"KELP":[true,true]},"position_limits":{"KELP":30},"future_field":{"x":1}}`)

	assert.Equal(t, 30, s.Limit("KELP"))
	assert.Equal(t, []bool{true, true}, s.Window("KELP").Values())
}

func TestRestoreTruncatesOversizedWindow(t *testing.T) {
	s := New(DefaultPositionLimit, nil)
	s.Restore(`{"windows":{"KELP":[false,false,false,true,true,true,true,true,true,true,true,true]}}`)

	w := s.Window("KELP")
	require.NotNil(t, w)
	assert.Equal(t, WindowCapacity, w.Len())
	// 保留最近的 10 项：淘汰最旧的两个 false。
	assert.Equal(t, []bool{false, true, true, true, true, true, true, true, true, true}, w.Values())
}

func TestRestorePartialBlobLeavesRestUntouched(t *testing.T) {
	s := New(DefaultPositionLimit, nil)
	s.Ensure("AMETHYSTS")
	s.SetLimit("AMETHYSTS", 40)

	// 只带 windows 的 blob 不应动 limits。
	s.Restore(`{"windows":{"KELP":[true]}}`)
	assert.Equal(t, 40, s.Limit("AMETHYSTS"))
	assert.Equal(t, []bool{true}, s.Window("KELP").Values())
}

func TestEnsureIdempotent(t *testing.T) {
	s := New(25, nil)
	s.Ensure("KELP")
	s.Window("KELP").Push(true)
	s.SetLimit("KELP", 60)

	s.Ensure("KELP")
	assert.Equal(t, 60, s.Limit("KELP"))
	assert.Equal(t, []bool{true}, s.Window("KELP").Values())
}

func TestLimitDefaultDoesNotCreateEntry(t *testing.T) {
	s := New(25, nil)
	assert.Equal(t, 25, s.Limit("KELP"))
	assert.False(t, s.Has("KELP"))
}
