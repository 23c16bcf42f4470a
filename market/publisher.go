package market

// Decision 单个合约一次决策周期的摘要。
type Decision struct {
	Symbol     string
	FairValue  int
	Position   int
	Limit      int
	OrderCount int
}

// Publisher 一个轻量事件分发器，供监控/日志侧订阅决策流。
// 订阅通道带缓冲，消费不及时则丢弃，绝不阻塞决策循环。
type Publisher struct {
	decisionSubs []chan Decision
}

func NewPublisher() *Publisher {
	return &Publisher{
		decisionSubs: make([]chan Decision, 0),
	}
}

func (p *Publisher) SubscribeDecisions() <-chan Decision {
	ch := make(chan Decision, 16)
	p.decisionSubs = append(p.decisionSubs, ch)
	return ch
}

func (p *Publisher) PublishDecision(d Decision) {
	for _, ch := range p.decisionSubs {
		select {
		case ch <- d:
		default:
		}
	}
}
