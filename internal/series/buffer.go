// Package series holds the bounded in-memory window of one price series.
package series

import (
	"errors"
	"fmt"

	"CandleDream/internal/model"
)

// DefaultCapacity is the number of closed candles kept on screen.
const DefaultCapacity = 100

// ErrCapacity is returned by New for a non-positive capacity.
var ErrCapacity = errors.New("series capacity must be positive")

// Buffer is a sliding window of closed candles plus at most one forming
// candle. It is not safe for concurrent use; the owning engine is the only writer.
type Buffer struct {
	capacity int
	closed   []model.Candle
	forming  *model.Candle
}

// New returns a buffer holding the newest capacity candles of history.
func New(capacity int, history []model.Candle) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	for i := 1; i < len(history); i++ {
		if err := history[i-1].FollowedBy(history[i]); err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	if len(history) > capacity {
		history = history[len(history)-capacity:]
	}
	closed := make([]model.Candle, len(history), capacity+1)
	copy(closed, history)
	return &Buffer{capacity: capacity, closed: closed}, nil
}

// Append closes c into the window. The forming slot is cleared. When the
// window overflows the oldest candle is dropped and evicted is true.
func (b *Buffer) Append(c model.Candle) (evicted bool, err error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	if last, ok := b.Last(); ok {
		if err := last.FollowedBy(c); err != nil {
			return false, err
		}
	}
	b.forming = nil
	if len(b.closed) == b.capacity {
		copy(b.closed, b.closed[1:])
		b.closed[len(b.closed)-1] = c
		return true, nil
	}
	b.closed = append(b.closed, c)
	return false, nil
}

// SetForming replaces the in-progress candle.
func (b *Buffer) SetForming(c model.Candle) { b.forming = &c }

// Forming returns the in-progress candle, if any.
func (b *Buffer) Forming() (model.Candle, bool) {
	if b.forming == nil {
		return model.Candle{}, false
	}
	return *b.forming, true
}

// Last returns the newest closed candle.
func (b *Buffer) Last() (model.Candle, bool) {
	if len(b.closed) == 0 {
		return model.Candle{}, false
	}
	return b.closed[len(b.closed)-1], true
}

// Closed returns a copy of the closed window, oldest first.
func (b *Buffer) Closed() []model.Candle {
	out := make([]model.Candle, len(b.closed))
	copy(out, b.closed)
	return out
}

// Candles returns the closed window followed by the forming candle.
func (b *Buffer) Candles() []model.Candle {
	out := make([]model.Candle, len(b.closed), len(b.closed)+1)
	copy(out, b.closed)
	if b.forming != nil {
		out = append(out, *b.forming)
	}
	return out
}

// Price is the latest known price: the forming close, else the last close.
func (b *Buffer) Price() (float64, bool) {
	if b.forming != nil {
		return b.forming.Close, true
	}
	if last, ok := b.Last(); ok {
		return last.Close, true
	}
	return 0, false
}

func (b *Buffer) Len() int      { return len(b.closed) }
func (b *Buffer) Capacity() int { return b.capacity }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{capacity: b.capacity, closed: make([]model.Candle, len(b.closed), b.capacity+1)}
	copy(c.closed, b.closed)
	if b.forming != nil {
		f := *b.forming
		c.forming = &f
	}
	return c
}
