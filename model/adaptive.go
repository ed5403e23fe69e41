package model

import (
	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
)

// An Adaptive model counts the symbols it has coded.
// Every symbol starts with a count of one. When the total reaches the limit all counts
// larger than one are halved, so recent statistics weigh more and no count drops to zero.
//
// The encoder and the decoder must each use their own Adaptive built with the same arguments.
type Adaptive struct {
	cum   []uint32
	limit uint32
}

// NewAdaptive returns a model over n symbols whose total stays below limit.
// limit is usually the FreqMax of the coder's precision.
func NewAdaptive(n int, limit uint32) (*Adaptive, error) {
	if n < 1 || uint64(n) >= uint64(limit) {
		return nil, errors.Errorf("%d symbols do not fit below %d", n, limit)
	}
	cum := make([]uint32, n+1)
	for i := range cum {
		cum[i] = uint32(i)
	}
	return &Adaptive{cum: cum, limit: limit}, nil
}

// Len returns the number of symbols.
func (m *Adaptive) Len() int { return len(m.cum) - 1 }

func (m *Adaptive) Total() uint32 { return m.cum[len(m.cum)-1] }

// Prob returns the interval of sym and counts it.
func (m *Adaptive) Prob(sym int) ac.Prob {
	if sym < 0 || sym >= m.Len() {
		return ac.Prob{}
	}
	p := m.prob(sym)
	m.update(sym)
	return p
}

// Find returns the symbol holding scaled and counts it.
func (m *Adaptive) Find(scaled uint32) (int, ac.Prob, bool) {
	sym, ok := find(m.cum, scaled)
	if !ok {
		return -1, ac.Prob{}, false
	}
	p := m.prob(sym)
	m.update(sym)
	return sym, p, true
}

func (m *Adaptive) prob(sym int) ac.Prob {
	return ac.Prob{Lower: m.cum[sym], Upper: m.cum[sym+1], Total: m.Total()}
}

func (m *Adaptive) update(sym int) {
	for i := sym + 1; i < len(m.cum); i++ {
		m.cum[i]++
	}
	if m.Total() < m.limit {
		return
	}

	var base uint32
	for i := 1; i < len(m.cum); i++ {
		d := m.cum[i] - base
		if d > 1 {
			d /= 2
		}
		base = m.cum[i]
		m.cum[i] = m.cum[i-1] + d
	}
}
