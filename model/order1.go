package model

import (
	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
)

// An Order1 model keeps one Adaptive model per previous symbol.
type Order1 struct {
	ctx  []*Adaptive
	prev int
}

// NewOrder1 returns an order-1 model over n symbols.
// The context of the first symbol is symbol 0.
func NewOrder1(n int, limit uint32) (*Order1, error) {
	if n < 1 {
		return nil, errors.Errorf("%d symbols", n)
	}
	m := &Order1{ctx: make([]*Adaptive, n)}
	for i := range m.ctx {
		a, err := NewAdaptive(n, limit)
		if err != nil {
			return nil, errors.Wrapf(err, "context %d", i)
		}
		m.ctx[i] = a
	}
	return m, nil
}

func (m *Order1) Prob(sym int) ac.Prob {
	p := m.ctx[m.prev].Prob(sym)
	if p.Upper != 0 {
		m.prev = sym
	}
	return p
}

func (m *Order1) Total() uint32 { return m.ctx[m.prev].Total() }

func (m *Order1) Find(scaled uint32) (int, ac.Prob, bool) {
	sym, p, ok := m.ctx[m.prev].Find(scaled)
	if ok {
		m.prev = sym
	}
	return sym, p, ok
}
