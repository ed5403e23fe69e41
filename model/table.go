// Package model provides probability models for the arithmetic coders in package ac.
package model

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
)

// A Table is a static model built from symbol weights.
type Table struct {
	cum []uint32 // cum[i] is the sum of the weights of symbols before i
}

// NewTable returns a Table where symbol i has probability weights[i]/sum(weights).
// The sum must not exceed freqMax.
func NewTable(weights []uint32, freqMax uint32) (*Table, error) {
	if len(weights) == 0 {
		return nil, errors.New("no weights")
	}
	cum := make([]uint32, len(weights)+1)
	var total uint64
	for i, w := range weights {
		if w == 0 {
			return nil, errors.Errorf("symbol %d has zero weight", i)
		}
		total += uint64(w)
		if total > uint64(freqMax) {
			return nil, errors.Errorf("total weight exceeds %d", freqMax)
		}
		cum[i+1] = uint32(total)
	}
	return &Table{cum: cum}, nil
}

// Len returns the number of symbols.
func (t *Table) Len() int { return len(t.cum) - 1 }

func (t *Table) Total() uint32 { return t.cum[len(t.cum)-1] }

// Prob returns the interval of sym, or an empty interval if sym is not in the table.
func (t *Table) Prob(sym int) ac.Prob {
	if sym < 0 || sym >= t.Len() {
		return ac.Prob{}
	}
	return ac.Prob{Lower: t.cum[sym], Upper: t.cum[sym+1], Total: t.Total()}
}

func (t *Table) Find(scaled uint32) (int, ac.Prob, bool) {
	sym, ok := find(t.cum, scaled)
	if !ok {
		return -1, ac.Prob{}, false
	}
	return sym, t.Prob(sym), true
}

// find returns the symbol whose cumulative interval holds f.
func find(cum []uint32, f uint32) (int, bool) {
	n := len(cum) - 1
	sym := sort.Search(n, func(i int) bool { return cum[i+1] > f })
	if sym == n {
		return -1, false
	}
	return sym, true
}
