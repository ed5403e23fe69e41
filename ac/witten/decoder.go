package witten

import (
	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
)

// A Decoder mirrors an Encoder, keeping a window of the coded bits that fall inside its interval.
// The Decoder does not know where a stream ends; callers either know the number of symbols
// or reserve an end of stream symbol.
type Decoder struct {
	iv       interval
	window   uint64
	primed   bool
	rangeBit uint

	src       ac.Source
	buf       byte
	nbuf      uint
	exhausted bool
	overrun   uint
	err       error // sticky transport error
}

// NewDecoder returns a Decoder reading from src with precision p.
// No bits are read until the first call to Get.
func NewDecoder(src ac.Source, p ac.Precision) (*Decoder, error) {
	iv, err := newInterval(p)
	if err != nil {
		return nil, err
	}
	return &Decoder{iv: iv, rangeBit: p.RangeBits, src: src}, nil
}

// Get decodes the next symbol using model.
func (d *Decoder) Get(model ac.DecodeModel) (int, error) {
	if d.err != nil {
		return -1, d.err
	}
	if !d.primed {
		for i := uint(0); i < d.rangeBit; i++ {
			bit, err := d.readBit()
			if err != nil {
				return -1, err
			}
			d.window = d.window<<1 | uint64(bit)
		}
		d.primed = true
	}

	iv := &d.iv
	if d.window < iv.lower || d.window >= iv.upper {
		return -1, errors.Wrapf(ac.ErrModelContract, "window %d outside [%d, %d)", d.window, iv.lower, iv.upper)
	}
	total := model.Total()
	if total == 0 || total > iv.freqMax {
		return -1, errors.Wrapf(ac.ErrModelContract, "total %d outside (0, %d]", total, iv.freqMax)
	}
	scaled := ac.FreqScale(d.window-iv.lower, iv.rng, total)
	sym, p, ok := model.Find(scaled)
	if !ok {
		return -1, errors.Wrapf(ac.ErrModelContract, "no symbol for %d of %d", scaled, total)
	}
	if p.Total != total || scaled < p.Lower || scaled >= p.Upper {
		return -1, errors.Wrapf(ac.ErrModelContract, "symbol %d: [%d, %d) of %d does not hold %d of %d", sym, p.Lower, p.Upper, p.Total, scaled, total)
	}
	if err := iv.narrow(p); err != nil {
		return -1, errors.Wrapf(err, "symbol %d", sym)
	}

	for {
		switch iv.next() {
		case lowHalf:
		case highHalf:
			d.window -= iv.half
		case middle:
			d.window -= iv.quarter
		default:
			iv.rng = iv.upper - iv.lower
			return sym, nil
		}
		bit, err := d.readBit()
		if err != nil {
			return -1, err
		}
		d.window = d.window<<1 | uint64(bit)
	}
}

// Overrun returns the number of filler bits read after the source was exhausted.
// A complete stream never needs more than RangeBits of them, so a larger count means the input was cut short.
func (d *Decoder) Overrun() uint { return d.overrun }

// readBit returns the next coded bit.
// Once the source is exhausted the stream continues with zeros, matching the encoder's final padding.
func (d *Decoder) readBit() (byte, error) {
	if d.exhausted {
		d.overrun++
		return 0, nil
	}
	if d.nbuf == 0 {
		buf, n, err := d.src.Fill()
		if err != nil {
			d.err = errors.WithStack(err)
			return 0, d.err
		}
		if n == 0 {
			d.exhausted = true
			d.overrun++
			return 0, nil
		}
		if n > 8 {
			n = 8
		}
		d.buf, d.nbuf = buf, n
	}
	d.nbuf--
	return (d.buf >> d.nbuf) & 1, nil
}
