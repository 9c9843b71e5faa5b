// Package web serves the chart page, its websocket feed and a small JSON API.
package web

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"CandleDream/internal/chart"
	"CandleDream/internal/generator"
	"CandleDream/internal/model"
	"CandleDream/internal/random"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

//go:embed index.html
var indexHTML []byte

const (
	maxProjection = 500
	maxHistory    = 365
)

// Session is the part of chart.Session the API uses.
type Session interface {
	Status() chart.Status
	Toggle(active bool) bool
	DreamActive() bool
	Snapshot(id model.SeriesID) []model.Candle
	Project(count int) ([]model.Candle, error)
	ShowLast(n int)
}

// Server routes HTTP requests.
type Server struct {
	Session         Session
	Hub             *Hub
	ProjectionCount int
	// HistorySeed seeds the source of every /api/history request; zero means
	// a time-seeded source.
	HistorySeed int64
}

// Handler is the fasthttp request handler.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/":
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(indexHTML)
	case "/ws":
		s.Hub.ServeWS(ctx)
	case "/api/status":
		s.writeJSON(ctx, s.Session.Status())
	case "/api/overlay":
		s.handleOverlay(ctx)
	case "/api/candles":
		s.handleCandles(ctx)
	case "/api/projection":
		s.handleProjection(ctx)
	case "/api/history":
		s.handleHistory(ctx)
	case "/api/view":
		s.Session.ShowLast(ctx.QueryArgs().GetUintOrZero("last"))
		s.writeJSON(ctx, map[string]bool{"ok": true})
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

// handleOverlay reads the overlay state on GET and sets it on POST, from
// ?active= or a {"active":bool} body.
func (s *Server) handleOverlay(ctx *fasthttp.RequestCtx) {
	if ctx.IsGet() {
		s.writeJSON(ctx, map[string]bool{"active": s.Session.DreamActive()})
		return
	}
	if !ctx.IsPost() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	var active bool
	switch {
	case ctx.QueryArgs().Has("active"):
		active = ctx.QueryArgs().GetBool("active")
	case gjson.ValidBytes(ctx.PostBody()) && gjson.GetBytes(ctx.PostBody(), "active").Exists():
		active = gjson.GetBytes(ctx.PostBody(), "active").Bool()
	default:
		ctx.Error(`missing "active"`, fasthttp.StatusBadRequest)
		return
	}
	changed := s.Session.Toggle(active)
	s.writeJSON(ctx, map[string]bool{"active": s.Session.DreamActive(), "changed": changed})
}

func (s *Server) handleCandles(ctx *fasthttp.RequestCtx) {
	id := model.SeriesID(ctx.QueryArgs().Peek("series"))
	if id == "" {
		id = model.Reality
	}
	if id != model.Reality && id != model.Dream {
		ctx.Error(fmt.Sprintf("unknown series %q", id), fasthttp.StatusBadRequest)
		return
	}
	candles := s.Session.Snapshot(id)
	if candles == nil {
		candles = []model.Candle{}
	}
	s.writeJSON(ctx, candles)
}

func (s *Server) handleProjection(ctx *fasthttp.RequestCtx) {
	count := s.ProjectionCount
	if ctx.QueryArgs().Has("count") {
		count = ctx.QueryArgs().GetUintOrZero("count")
	}
	if count < 1 || count > maxProjection {
		ctx.Error(fmt.Sprintf("count must be in [1, %d]", maxProjection), fasthttp.StatusBadRequest)
		return
	}
	candles, err := s.Session.Project(count)
	if err != nil {
		log.Printf("[ERROR] project: %v", err)
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	s.writeJSON(ctx, candles)
}

type history struct {
	Trend   string            `json:"trend"`
	Candles []model.Candle    `json:"candles"`
	Volume  []model.VolumeBar `json:"volume"`
}

// handleHistory returns daily trending candles ending today.
func (s *Server) handleHistory(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	tp := generator.DownTrend()
	if string(args.Peek("trend")) == "up" {
		tp = generator.UpTrend()
	}
	days := 90
	if args.Has("days") {
		days = args.GetUintOrZero("days")
	}
	if days < 1 || days > maxHistory {
		ctx.Error(fmt.Sprintf("days must be in [1, %d]", maxHistory), fasthttp.StatusBadRequest)
		return
	}
	start := 52500.0
	if v, err := args.GetUfloat("start"); err == nil && v > 0 {
		start = v
	}

	seed := s.HistorySeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := random.New(seed)
	candles, volume, err := generator.Trending(src, generator.Params{
		StartPrice: start,
		Count:      days,
		Step:       generator.DailyStep,
		EndTime:    time.Now().Truncate(24 * time.Hour).Unix(),
	}, tp)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		return
	}
	s.writeJSON(ctx, history{Trend: tp.Name, Candles: candles, Volume: volume})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[ERROR] encode response: %v", err)
		ctx.Error("encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}
