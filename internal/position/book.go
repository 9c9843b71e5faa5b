// Package position values the fixed position shown next to the chart.
package position

import (
	"fmt"
	"strings"
	"sync"

	"CandleDream/internal/model"

	"github.com/shopspring/decimal"
)

// Default is the panel's position: long 0.5 BTC from 52000.
const (
	DefaultSymbol = "BTC/USD"
	DefaultSize   = 0.5
	DefaultEntry  = 52000.0
)

var hundred = decimal.NewFromInt(100)

// Book holds one position and marks it to market with decimal arithmetic.
type Book struct {
	mu     sync.Mutex
	symbol string
	side   model.Side
	size   decimal.Decimal
	entry  decimal.Decimal
}

// NewBook validates and stores a position.
func NewBook(symbol string, side model.Side, size, entry float64) (*Book, error) {
	side = model.Side(strings.ToUpper(string(side)))
	if side != model.Long && side != model.Short {
		return nil, fmt.Errorf("position side %q must be LONG or SHORT", side)
	}
	if size <= 0 || entry <= 0 {
		return nil, fmt.Errorf("position size %.4f and entry %.2f must be positive", size, entry)
	}
	return &Book{
		symbol: symbol,
		side:   side,
		size:   decimal.NewFromFloat(size),
		entry:  decimal.NewFromFloat(entry),
	}, nil
}

// DefaultBook returns the panel's default long position.
func DefaultBook() *Book {
	b, _ := NewBook(DefaultSymbol, model.Long, DefaultSize, DefaultEntry)
	return b
}

// Mark values the position at price.
func (b *Book) Mark(price float64) model.PositionMark {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := decimal.NewFromFloat(price)
	diff := p.Sub(b.entry)
	if b.side == model.Short {
		diff = diff.Neg()
	}
	pnl := diff.Mul(b.size)
	cost := b.entry.Mul(b.size)
	pct := decimal.Zero
	if !cost.IsZero() {
		pct = pnl.Div(cost).Mul(hundred)
	}
	return model.PositionMark{
		Symbol: b.symbol,
		Side:   b.side,
		Size:   b.size.InexactFloat64(),
		Entry:  b.entry.InexactFloat64(),
		Price:  p.Round(2).InexactFloat64(),
		Value:  p.Mul(b.size).Round(2).InexactFloat64(),
		PnL:    pnl.Round(2).InexactFloat64(),
		PnLPct: pct.Round(2).InexactFloat64(),
	}
}
