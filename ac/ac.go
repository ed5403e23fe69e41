// Package ac defines the interfaces the arithmetic coding algorithm requires.
// See its subpackages for particular finite precision realizations of the algorithm.
package ac

import (
	"github.com/pkg/errors"
)

var (
	// ErrModelContract is returned when a model hands out an interval that violates
	// 0 <= lower < upper <= total <= FreqMax, or cannot find a symbol for a scaled value.
	ErrModelContract = errors.New("model contract violation")

	// ErrPrecision is returned when precision parameters cannot be used for coding.
	ErrPrecision = errors.New("invalid precision")
)

// A Precision holds the bit widths of the coder.
// Interval bounds lie in [0, 1<<RangeBits], cumulative frequencies in [0, 1<<FreqBits - 1].
type Precision struct {
	RangeBits uint
	FreqBits  uint
}

// DefaultPrecision is the precision used when none is given.
var DefaultPrecision = Precision{RangeBits: 32, FreqBits: 16}

// Validate checks that an interval straddling the middle always holds a frequency unit
// and that range*total never overflows 64 bits.
func (p Precision) Validate() error {
	if p.FreqBits < 1 {
		return errors.Wrapf(ErrPrecision, "FreqBits %d < 1", p.FreqBits)
	}
	if p.RangeBits < p.FreqBits+2 {
		return errors.Wrapf(ErrPrecision, "RangeBits %d < FreqBits %d + 2", p.RangeBits, p.FreqBits)
	}
	if p.RangeBits+p.FreqBits > 64 {
		return errors.Wrapf(ErrPrecision, "RangeBits %d + FreqBits %d > 64", p.RangeBits, p.FreqBits)
	}
	return nil
}

func (p Precision) Max() uint64           { return 1 << p.RangeBits }
func (p Precision) Half() uint64          { return 1 << (p.RangeBits - 1) }
func (p Precision) Quarter() uint64       { return 1 << (p.RangeBits - 2) }
func (p Precision) ThreeQuarters() uint64 { return 3 * p.Quarter() }

// FreqMax is the largest total a model may use.
func (p Precision) FreqMax() uint32 { return uint32(1)<<p.FreqBits - 1 }

// A Prob is the cumulative frequency interval [Lower, Upper) of a symbol out of Total.
// For an alphabet a, b, c, d with weights 2, 3, 2, 1 the intervals are
// a: [0, 2), b: [2, 5), c: [5, 7), d: [7, 8), all with Total 8.
type Prob struct {
	Lower uint32
	Upper uint32
	Total uint32
}

// Check reports ErrModelContract if p is not a valid interval for freqMax.
func (p Prob) Check(freqMax uint32) error {
	if p.Lower >= p.Upper || p.Upper > p.Total || p.Total > freqMax {
		return errors.Wrapf(ErrModelContract, "bad interval [%d, %d) of %d, max %d", p.Lower, p.Upper, p.Total, freqMax)
	}
	return nil
}

// A Sink receives the coded bit stream.
type Sink interface {
	// Accept receives the n low bits of buf, most significant first.
	// n is 8 except possibly for the last call of a stream.
	Accept(buf byte, n uint) error
}

// A Source supplies the coded bit stream.
type Source interface {
	// Fill returns up to 8 bits in the low bits of buf, most significant first, and their count.
	// A count of 0 means the source is exhausted and it will not be called again.
	Fill() (buf byte, n uint, err error)
}

// An EncodeModel maps a symbol to its interval.
// It may update its statistics, in which case the DecodeModel it is paired with must update them identically.
type EncodeModel interface {
	Prob(sym int) Prob
}

// A DecodeModel maps a scaled value back to a symbol.
type DecodeModel interface {
	// Total returns the total frequency of the next step.
	Total() uint32

	// Find returns the symbol whose interval contains scaled, which lies in [0, Total()).
	// ok is false if there is no such symbol.
	Find(scaled uint32) (sym int, p Prob, ok bool)
}

// A Model can be used for both encoding and decoding.
type Model interface {
	EncodeModel
	DecodeModel
}

// FreqScale maps a value v in [0, rng) of the current interval back into the frequency domain of total.
// The encoder maps x to floor(rng*x/total). FreqScale returns the largest x with
// rng*x <= total*(v+1) - 1, which is exactly the x the encoder mapped to a value covering v.
// total must not exceed rng.
func FreqScale(v, rng uint64, total uint32) uint32 {
	return uint32(((v+1)*uint64(total) - 1) / rng)
}
