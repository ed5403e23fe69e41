// Package bitstr provides a Sink and a Source over strings of '0' and '1' characters.
package bitstr

import (
	"strings"

	"github.com/pkg/errors"
)

// A Sink collects bits as '0' and '1' characters.
type Sink struct {
	b strings.Builder

	// Calls counts the Accept calls, Last holds the bit count of the latest one.
	Calls int
	Last  uint
}

// Accept appends the n low bits of buf.
func (s *Sink) Accept(buf byte, n uint) error {
	for i := n; i > 0; i-- {
		if (buf>>(i-1))&1 == 1 {
			s.b.WriteByte('1')
		} else {
			s.b.WriteByte('0')
		}
	}
	s.Calls++
	s.Last = n
	return nil
}

func (s *Sink) String() string { return s.b.String() }

// A Source hands out the bits of a string, at most Chunk of them per Fill.
type Source struct {
	bits  string
	Chunk uint

	// Fills counts the Fill calls, including the one that reported exhaustion.
	Fills int
}

// NewSource returns a Source over bits, which must only hold '0' and '1'.
func NewSource(bits string) *Source {
	return &Source{bits: bits, Chunk: 8}
}

// Fill returns the next chunk of bits.
func (s *Source) Fill() (byte, uint, error) {
	s.Fills++
	var buf byte
	var n uint
	for ; n < s.Chunk && len(s.bits) > 0; n++ {
		switch s.bits[0] {
		case '0':
			buf <<= 1
		case '1':
			buf = buf<<1 | 1
		default:
			return 0, 0, errors.Errorf("bad bit %q", s.bits[0])
		}
		s.bits = s.bits[1:]
	}
	return buf, n, nil
}
