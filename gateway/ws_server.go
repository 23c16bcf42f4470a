package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"quote-engine-go/engine"
)

// EventSink 接收网关侧事件。
type EventSink func(event string, fields map[string]interface{})

// Server 决策周期的 websocket 入口：每条消息一个周期请求，
// 回一条应答。引擎本身非并发安全，所有周期在单个执行队列里串行。
type Server struct {
	engine   *engine.Engine
	sink     EventSink
	upgrader websocket.Upgrader

	cycles chan cycleJob
}

type cycleJob struct {
	snap  engine.Snapshot
	reply chan engine.Result
}

func NewServer(e *engine.Engine, sink EventSink) *Server {
	s := &Server{
		engine: e,
		sink:   sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		cycles: make(chan cycleJob),
	}
	go s.runLoop()
	return s
}

// runLoop 串行执行所有连接提交的周期。
func (s *Server) runLoop() {
	for job := range s.cycles {
		job.reply <- s.engine.RunCycle(job.snap)
	}
}

// Handler 返回可挂载的 HTTP 处理器。
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveWS)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logEvent("ws_upgrade_failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}

		snap, err := ParseCycleRequest(raw)
		if err != nil {
			// 请求级错误：回错误消息，连接保持。
			s.logEvent("cycle_request_rejected", map[string]interface{}{"error": err.Error()})
			if werr := s.writeJSON(conn, ErrorResponse{Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		reply := make(chan engine.Result, 1)
		s.cycles <- cycleJob{snap: snap, reply: reply}
		res := <-reply

		payload, err := EncodeCycleResponse(res)
		if err != nil {
			s.logEvent("cycle_response_encode_failed", map[string]interface{}{"error": err.Error()})
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (s *Server) writeJSON(conn *websocket.Conn, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (s *Server) logEvent(event string, fields map[string]interface{}) {
	if s.sink == nil {
		return
	}
	s.sink(event, fields)
}
