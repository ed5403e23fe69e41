package witten

import (
	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
)

// ErrFinished is returned when symbols are put into an encoder that has already been finished.
var ErrFinished = errors.New("encoder finished")

// An Encoder narrows an interval one symbol at a time and writes the bits that become certain to a sink.
// An Encoder codes exactly one stream and must not be used concurrently.
type Encoder struct {
	iv      interval
	pending uint64 // bits deferred by middle steps

	sink ac.Sink
	buf  byte
	nbuf uint
	done bool
	err  error // sticky transport error
}

// NewEncoder returns an Encoder writing to sink with precision p.
func NewEncoder(sink ac.Sink, p ac.Precision) (*Encoder, error) {
	iv, err := newInterval(p)
	if err != nil {
		return nil, err
	}
	return &Encoder{iv: iv, sink: sink}, nil
}

// Put encodes sym with the interval model assigns to it.
func (e *Encoder) Put(model ac.EncodeModel, sym int) error {
	if e.err != nil {
		return e.err
	}
	if e.done {
		return ErrFinished
	}
	if err := e.iv.narrow(model.Prob(sym)); err != nil {
		return errors.Wrapf(err, "symbol %d", sym)
	}
	for {
		var err error
		switch e.iv.next() {
		case lowHalf:
			err = e.bitPlusFollow(0)
		case highHalf:
			err = e.bitPlusFollow(1)
		case middle:
			e.pending++
		default:
			e.iv.rng = e.iv.upper - e.iv.lower
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Finish writes the bits needed to pin the final interval and flushes the last partial buffer.
func (e *Encoder) Finish() error {
	if e.err != nil {
		return e.err
	}
	if e.done {
		return ErrFinished
	}
	e.done = true

	iv := &e.iv
	var err error
	switch {
	case iv.lower == 0 && e.pending == 0:
		// Every continuation of a 0 lies below half, inside the interval.
		if iv.upper != iv.max {
			err = e.bitPlusFollow(0)
		}
	case iv.upper == iv.max && e.pending == 0:
		if iv.lower != 0 {
			err = e.bitPlusFollow(1)
		}
	case iv.lower == 0:
		err = e.bitPlusFollow(0)
	case iv.upper == iv.max:
		// Half is inside since lower < half after renormalization.
		err = e.bitPlusFollow(1)
	default:
		// Pick quarter or half, whichever the interval straddles.
		e.pending++
		var bit byte
		if iv.lower >= iv.quarter {
			bit = 1
		}
		err = e.bitPlusFollow(bit)
	}
	if err != nil {
		return err
	}

	if e.nbuf != 0 {
		return e.flush()
	}
	return nil
}

// bitPlusFollow writes bit followed by the pending bits, which all resolve to its inverse.
func (e *Encoder) bitPlusFollow(bit byte) error {
	if err := e.writeBit(bit); err != nil {
		return err
	}
	inv := bit ^ 1
	for ; e.pending > 0; e.pending-- {
		if err := e.writeBit(inv); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeBit(bit byte) error {
	e.buf = e.buf<<1 | bit
	e.nbuf++
	if e.nbuf == 8 {
		return e.flush()
	}
	return nil
}

func (e *Encoder) flush() error {
	if err := e.sink.Accept(e.buf, e.nbuf); err != nil {
		e.err = errors.WithStack(err)
		return e.err
	}
	e.buf, e.nbuf = 0, 0
	return nil
}
