package gateway

import (
	"encoding/json"
	"strings"
	"testing"

	"quote-engine-go/engine"
	"quote-engine-go/strategy"
)

func TestParseCycleRequest(t *testing.T) {
	raw := []byte(`{
		"instruments": {
			"AMETHYSTS": {"buys": {"10": 5, "9": 3}, "sells": {"12": -4, "13": -2}}
		},
		"positions": {"AMETHYSTS": -3},
		"traderData": "{\"windows\":{}}"
	}`)

	snap, err := ParseCycleRequest(raw)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	depth, ok := snap.Depths["AMETHYSTS"]
	if !ok {
		t.Fatal("missing instrument")
	}
	if depth.Buys[10] != 5 || depth.Buys[9] != 3 {
		t.Errorf("buys = %v", depth.Buys)
	}
	if depth.Sells[12] != -4 || depth.Sells[13] != -2 {
		t.Errorf("sells = %v", depth.Sells)
	}
	if snap.Positions["AMETHYSTS"] != -3 {
		t.Errorf("position = %d", snap.Positions["AMETHYSTS"])
	}
	if snap.TraderData != `{"windows":{}}` {
		t.Errorf("traderData = %q", snap.TraderData)
	}
}

func TestParseCycleRequestDefaults(t *testing.T) {
	snap, err := ParseCycleRequest([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if snap.Positions == nil {
		t.Error("positions must default to an empty map")
	}
	if snap.Positions["UNKNOWN"] != 0 {
		t.Error("unknown symbols default to zero position")
	}
}

func TestParseCycleRequestErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"not json", `{broken`, "parse cycle request"},
		{"bad buy price", `{"instruments":{"X":{"buys":{"ten":5}}}}`, "bad buy price"},
		{"bad sell price", `{"instruments":{"X":{"sells":{"1.5":-4}}}}`, "bad sell price"},
	}
	for _, tc := range cases {
		_, err := ParseCycleRequest([]byte(tc.raw))
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q missing %q", tc.name, err, tc.want)
		}
	}
}

func TestEncodeCycleResponse(t *testing.T) {
	raw, err := EncodeCycleResponse(engine.Result{
		Orders: map[string][]strategy.Order{
			"AMETHYSTS": {{Symbol: "AMETHYSTS", Price: 11, Quantity: 20}},
			"KELP":      {},
		},
		Conversions: 0,
		TraderData:  `{"v":1}`,
	})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	var res CycleResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if len(res.Orders["AMETHYSTS"]) != 1 || res.Orders["AMETHYSTS"][0].Price != 11 {
		t.Errorf("orders = %v", res.Orders)
	}
	if got, ok := res.Orders["KELP"]; !ok || len(got) != 0 {
		t.Errorf("skipped instrument must keep its empty list, got %v", res.Orders)
	}
	if res.Conversions != 0 {
		t.Errorf("conversions = %d", res.Conversions)
	}
}
