// Package witten implements the arithmetic coding algorithm described in
// Witten, Ian H.; Neal, Radford M.; Cleary, John G. (June 1987). "Arithmetic Coding for Data Compression". Communications of the ACM 30 (6): 520–540.
//
// Intervals are half-open, [lower, upper), and carries are resolved without buffering by deferring
// the bits of middle-straddling renormalizations until the next decided bit.
package witten

import (
	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
)

// An interval carries the state shared by the encoder and the decoder.
type interval struct {
	lower uint64
	upper uint64
	rng   uint64

	max           uint64
	half          uint64
	quarter       uint64
	threeQuarters uint64
	freqMax       uint32
}

func newInterval(p ac.Precision) (interval, error) {
	if err := p.Validate(); err != nil {
		return interval{}, err
	}
	iv := interval{
		max:           p.Max(),
		half:          p.Half(),
		quarter:       p.Quarter(),
		threeQuarters: p.ThreeQuarters(),
		freqMax:       p.FreqMax(),
	}
	iv.upper = iv.max
	iv.rng = iv.max
	return iv, nil
}

// narrow zooms into the part of the interval that p occupies.
func (iv *interval) narrow(p ac.Prob) error {
	if err := p.Check(iv.freqMax); err != nil {
		return err
	}
	upper := iv.lower + iv.rng*uint64(p.Upper)/uint64(p.Total)
	lower := iv.lower + iv.rng*uint64(p.Lower)/uint64(p.Total)
	if lower >= upper {
		// Unreachable with a validated precision.
		return errors.Errorf("degenerate interval [%d, %d)", lower, upper)
	}
	iv.lower, iv.upper = lower, upper
	return nil
}

// A step is one renormalization decision.
type step int

const (
	stop step = iota
	lowHalf
	highHalf
	middle
)

// next classifies the interval and rescales it accordingly.
// The caller emits or consumes one bit for every step other than stop.
func (iv *interval) next() step {
	switch {
	case iv.upper <= iv.half:
		iv.lower = 2 * iv.lower
		iv.upper = 2 * iv.upper
		return lowHalf
	case iv.lower >= iv.half:
		iv.lower = 2 * (iv.lower - iv.half)
		iv.upper = 2 * (iv.upper - iv.half)
		return highHalf
	case iv.lower >= iv.quarter && iv.upper <= iv.threeQuarters:
		iv.lower = 2 * (iv.lower - iv.quarter)
		iv.upper = 2 * (iv.upper - iv.quarter)
		return middle
	}
	return stop
}
