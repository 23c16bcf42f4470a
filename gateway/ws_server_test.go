package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"quote-engine-go/engine"
	"quote-engine-go/internal/store"
	"quote-engine-go/strategy"
)

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	eng := engine.New(store.New(store.DefaultPositionLimit, nil), strategy.NewQuoter(nil), nil)
	srv := httptest.NewServer(NewServer(eng, nil).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServerCycleRoundTrip(t *testing.T) {
	conn := dialTestServer(t)

	req := `{"instruments":{"AMETHYSTS":{"buys":{"10":5,"9":3},"sells":{"12":-4,"13":-2}}},"positions":{"AMETHYSTS":0},"traderData":""}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var res CycleResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("bad response %s: %v", raw, err)
	}

	orders := res.Orders["AMETHYSTS"]
	if len(orders) != 2 {
		t.Fatalf("orders = %v", orders)
	}
	if orders[0].Price != 11 || orders[0].Quantity != 20 {
		t.Errorf("buy = %+v", orders[0])
	}
	if res.TraderData == "" {
		t.Error("expected trader data blob")
	}

	// blob 回传给下一个周期：窗口长度增长。
	req2 := `{"instruments":{"AMETHYSTS":{"buys":{"10":5},"sells":{"12":-4}}},"positions":{"AMETHYSTS":20},"traderData":` + mustQuote(t, res.TraderData) + `}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req2)); err != nil {
		t.Fatalf("write 2: %v", err)
	}
	_, raw, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read 2: %v", err)
	}
	var res2 CycleResponse
	if err := json.Unmarshal(raw, &res2); err != nil {
		t.Fatalf("bad response 2: %v", err)
	}
	var blob struct {
		Windows map[string][]bool `json:"windows"`
	}
	if err := json.Unmarshal([]byte(res2.TraderData), &blob); err != nil {
		t.Fatalf("bad blob: %v", err)
	}
	if got := blob.Windows["AMETHYSTS"]; len(got) != 2 || got[1] != true {
		t.Errorf("window = %v, want [false true]", got)
	}
}

func TestServerRejectsBadRequestAndKeepsConnection(t *testing.T) {
	conn := dialTestServer(t)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{broken`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var errRes ErrorResponse
	if err := json.Unmarshal(raw, &errRes); err != nil || errRes.Error == "" {
		t.Fatalf("expected error response, got %s", raw)
	}

	// 连接仍可用。
	req := `{"instruments":{"KELP":{"buys":{"10":5},"sells":{"12":-4}}}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
		t.Fatalf("write after error: %v", err)
	}
	_, raw, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read after error: %v", err)
	}
	var res CycleResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(res.Orders["KELP"]) == 0 {
		t.Errorf("orders = %v", res.Orders)
	}
}

func mustQuote(t *testing.T, s string) string {
	t.Helper()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	return string(raw)
}
