package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// Schema 定义每个日志事件所需的关键字段，便于集中校验。
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	"cycle_complete": {
		Event:    "cycle_complete",
		Required: []string{"instruments", "orders", "conversions"},
	},
	"state_restore_failed": {
		Event:    "state_restore_failed",
		Required: []string{"error"},
	},
	"liquidation": {
		Event:    "liquidation",
		Required: []string{"symbol", "mode", "side", "price", "quantity"},
	},
	"cycle_request_rejected": {
		Event:    "cycle_request_rejected",
		Required: []string{"error"},
	},
	"decision": {
		Event:    "decision",
		Required: []string{"symbol", "fair_value", "position", "limit"},
	},
}

// Known 返回所有事件名，便于外部生成文档。
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate 检查日志字段是否包含 schema 中要求的 key。
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ","))
	}
	return nil
}
