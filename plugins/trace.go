package plugins

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/linht/adrv-manager/adrv903x"
)

// traceBacklog is the per-subscriber queue depth; events beyond it are dropped
const traceBacklog = 256

// TraceEvent is one register access seen by the transceiver
type TraceEvent struct {
	Time   time.Time `json:"time"`
	Access string    `json:"access"`
	Addr   uint32    `json:"addr"`
	Mask   uint32    `json:"mask"`
	Value  uint32    `json:"value"`
	Error  string    `json:"error,omitempty"`
}

// TraceHub fans register access events out to websocket subscribers
type TraceHub struct {
	subs   map[string]chan TraceEvent
	subsMu sync.RWMutex
}

// NewTraceHub creates an empty hub
func NewTraceHub() *TraceHub {
	return &TraceHub{subs: make(map[string]chan TraceEvent)}
}

// Subscribe registers a new subscriber and returns its id and event stream
func (h *TraceHub) Subscribe() (string, <-chan TraceEvent) {
	id := uuid.New().String()
	ch := make(chan TraceEvent, traceBacklog)

	h.subsMu.Lock()
	h.subs[id] = ch
	h.subsMu.Unlock()

	return id, ch
}

// Unsubscribe removes a subscriber and closes its stream
func (h *TraceHub) Unsubscribe(id string) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

// Subscribers returns the number of active subscribers
func (h *TraceHub) Subscribers() int {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()
	return len(h.subs)
}

// Publish delivers ev to every subscriber without blocking
func (h *TraceHub) Publish(ev TraceEvent) {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close drops all subscribers
func (h *TraceHub) Close() {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

// tracingPort publishes every access made through the wrapped port
type tracingPort struct {
	adrv903x.RegisterPort
	hub *TraceHub
}

func (h *TraceHub) wrap(p adrv903x.RegisterPort) adrv903x.RegisterPort {
	return &tracingPort{RegisterPort: p, hub: h}
}

func (p *tracingPort) publish(access string, addr, mask, value uint32, err error) {
	ev := TraceEvent{
		Time:   time.Now(),
		Access: access,
		Addr:   addr,
		Mask:   mask,
		Value:  value,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	p.hub.Publish(ev)
}

func (p *tracingPort) ReadField(addr, mask uint32) (uint32, error) {
	v, err := p.RegisterPort.ReadField(addr, mask)
	p.publish("read_field", addr, mask, v, err)
	return v, err
}

func (p *tracingPort) WriteField(addr, mask, value uint32) error {
	err := p.RegisterPort.WriteField(addr, mask, value)
	p.publish("write_field", addr, mask, value, err)
	return err
}

func (p *tracingPort) Read32(addr, mask uint32) (uint32, error) {
	v, err := p.RegisterPort.Read32(addr, mask)
	p.publish("read32", addr, mask, v, err)
	return v, err
}

func (p *tracingPort) Write32(addr, value, mask uint32) error {
	err := p.RegisterPort.Write32(addr, value, mask)
	p.publish("write32", addr, mask, value, err)
	return err
}

// handleTrace streams register accesses to a websocket client until it
// disconnects
func (h *TraceHub) handleTrace(c *websocket.Conn) {
	id, events := h.Subscribe()
	defer h.Unsubscribe(id)

	// Reader goroutine only detects the close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
