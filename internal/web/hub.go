package web

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"CandleDream/internal/chart"
	"CandleDream/internal/model"
	"CandleDream/internal/sink"

	"github.com/fasthttp/websocket"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	clientBuffer = 256
	pingPeriod   = 45 * time.Second
	readTimeout  = 90 * time.Second
)

// Frame is one message to the browser.
type Frame struct {
	Type    string         `json:"type"`
	Series  model.SeriesID `json:"series,omitempty"`
	Candles []model.Candle `json:"candles,omitempty"`
	Candle  *model.Candle  `json:"candle,omitempty"`
	Visible *bool          `json:"visible,omitempty"`
	From    int64          `json:"from,omitempty"`
	To      int64          `json:"to,omitempty"`
	Status  *chart.Status  `json:"status,omitempty"`
}

// Controls are the session actions a browser may trigger.
type Controls struct {
	Overlay  func(active bool) bool
	ShowLast func(n int)
	FitView  func()
}

// encoder turns sink calls into frames.
type encoder func(Frame)

func (e encoder) SetSeries(id model.SeriesID, candles []model.Candle) {
	e(Frame{Type: "set_series", Series: id, Candles: candles})
}

func (e encoder) Upsert(id model.SeriesID, c model.Candle) {
	e(Frame{Type: "upsert", Series: id, Candle: &c})
}

func (e encoder) SetVisible(id model.SeriesID, visible bool) {
	e(Frame{Type: "visible", Series: id, Visible: &visible})
}

func (e encoder) FitView() { e(Frame{Type: "fit"}) }

func (e encoder) SetVisibleRange(from, to int64) {
	e(Frame{Type: "range", From: from, To: to})
}

type client struct {
	out  chan []byte
	done chan struct{} // closed by unregister
	slow chan struct{} // closed once out overflows
	once sync.Once
}

func newClient(buffer int) *client {
	return &client{
		out:  make(chan []byte, buffer),
		done: make(chan struct{}),
		slow: make(chan struct{}),
	}
}

// send queues b. A full queue marks the client slow; its write loop then
// drops the connection so the browser reconnects and gets a fresh replay.
func (c *client) send(b []byte) {
	select {
	case c.out <- b:
	default:
		c.once.Do(func() { close(c.slow) })
	}
}

// Hub is a sink.Sink that mirrors chart state in memory and streams every
// mutation to connected websocket clients. New clients get the mirrored
// state first.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	mem      *sink.Memory
	controls Controls
	upgrader websocket.FastHTTPUpgrader
}

// NewHub returns a hub with no clients and an empty mirror.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		mem:     sink.NewMemory(),
		upgrader: websocket.FastHTTPUpgrader{
			CheckOrigin: func(*fasthttp.RequestCtx) bool { return true },
		},
	}
}

// SetControls wires browser control frames to a session.
func (h *Hub) SetControls(c Controls) {
	h.mu.Lock()
	h.controls = c
	h.mu.Unlock()
}

// Memory exposes the mirrored chart state.
func (h *Hub) Memory() *sink.Memory { return h.mem }

func (h *Hub) SetSeries(id model.SeriesID, candles []model.Candle) {
	h.mem.SetSeries(id, candles)
	encoder(h.broadcast).SetSeries(id, candles)
}

func (h *Hub) Upsert(id model.SeriesID, c model.Candle) {
	h.mem.Upsert(id, c)
	encoder(h.broadcast).Upsert(id, c)
}

func (h *Hub) SetVisible(id model.SeriesID, visible bool) {
	h.mem.SetVisible(id, visible)
	encoder(h.broadcast).SetVisible(id, visible)
}

func (h *Hub) FitView() {
	h.mem.FitView()
	encoder(h.broadcast).FitView()
}

func (h *Hub) SetVisibleRange(from, to int64) {
	h.mem.SetVisibleRange(from, to)
	encoder(h.broadcast).SetVisibleRange(from, to)
}

// Activated broadcasts the activated event.
func (h *Hub) Activated(st chart.Status) {
	h.broadcast(Frame{Type: "activated", Status: &st})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		log.Printf("[ERROR] encode %s frame: %v", f.Type, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.send(b)
	}
}

// register adds a client and queues the current chart for it. Holding the
// write lock keeps broadcasts from slipping in ahead of the replay.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.mem.Replay(encoder(func(f Frame) {
		if b, err := json.Marshal(f); err == nil {
			c.send(b)
		}
	}))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.done)
}

// ServeWS upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeWS(ctx *fasthttp.RequestCtx) {
	err := h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		defer conn.Close()
		c := newClient(clientBuffer)
		h.register(c)
		defer h.unregister(c)

		go h.writeLoop(conn, c)

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.TextMessage {
				h.handleControl(data)
			}
		}
	})
	if err != nil {
		log.Printf("[WARN] websocket upgrade: %v", err)
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, c *client) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case b := <-c.out:
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.slow:
			log.Println("[WARN] websocket client too slow, closing")
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			_ = conn.Close()
			return
		case <-c.done:
			return
		}
	}
}

// handleControl applies a control frame such as {"type":"overlay","active":true}
// or {"type":"view","last":30}.
func (h *Hub) handleControl(data []byte) {
	if !gjson.ValidBytes(data) {
		return
	}
	h.mu.RLock()
	ctl := h.controls
	h.mu.RUnlock()

	switch gjson.GetBytes(data, "type").String() {
	case "overlay":
		if ctl.Overlay != nil {
			ctl.Overlay(gjson.GetBytes(data, "active").Bool())
		}
	case "view":
		last := gjson.GetBytes(data, "last")
		switch {
		case last.Exists() && ctl.ShowLast != nil:
			ctl.ShowLast(int(last.Int()))
		case !last.Exists() && ctl.FitView != nil:
			ctl.FitView()
		}
	}
}
