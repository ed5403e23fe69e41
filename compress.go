package arcd

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
	"github.com/fumin/arcd/ac/witten"
	"github.com/fumin/arcd/ctw"
	"github.com/fumin/arcd/model"
)

// newModel returns a fresh model for the method. Compress and Decompress each build their own.
func newModel(m Method, depth int, p ac.Precision) (ac.Model, error) {
	switch m {
	case Adaptive:
		return model.NewAdaptive(256, p.FreqMax())
	case Order1:
		return model.NewOrder1(256, p.FreqMax())
	case CTW:
		return ctw.NewModel(depth), nil
	}
	return nil, errors.Wrapf(ErrMethod, "%d", m)
}

func putByte(enc *witten.Encoder, m ac.Model, method Method, c byte) error {
	if method != CTW {
		return enc.Put(m, int(c))
	}
	for i := 7; i >= 0; i-- {
		if err := enc.Put(m, int(c>>uint(i))&1); err != nil {
			return err
		}
	}
	return nil
}

func getByte(dec *witten.Decoder, m ac.Model, method Method) (byte, error) {
	if method != CTW {
		sym, err := dec.Get(m)
		return byte(sym), err
	}
	var c byte
	for i := 0; i < 8; i++ {
		bit, err := dec.Get(m)
		if err != nil {
			return 0, err
		}
		c = c<<1 | byte(bit)
	}
	return c, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (w *countWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return n, err
}

// Compress compresses everything read from r and writes it to w.
// The output starts with a header recording the configuration and the input size,
// so Decompress needs no parameters.
func Compress(w io.Writer, r io.Reader, cfg Config) error {
	if err := cfg.Verify(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.WithStack(err)
	}
	h := &header{method: cfg.Method, depth: cfg.Depth, size: int64(len(data)), precision: cfg.Precision}
	cw := &countWriter{w: w}
	if err := writeHeader(cw, h); err != nil {
		return err
	}

	m, err := newModel(h.method, h.depth, h.precision)
	if err != nil {
		return err
	}
	sink := NewByteSink(cw)
	enc, err := witten.NewEncoder(sink, h.precision)
	if err != nil {
		return err
	}
	for i, c := range data {
		if err := putByte(enc, m, h.method, c); err != nil {
			return errors.Wrapf(err, "byte %d", i)
		}
	}
	if err := enc.Finish(); err != nil {
		return err
	}
	if err := sink.Flush(); err != nil {
		return err
	}

	logf(cfg.Logger, "%v: %d bytes -> %d bytes", h.method, h.size, cw.n)
	return nil
}

// Decompress reads a stream written by Compress from r and writes the original bytes to w.
// Bytes following the stream in r may be consumed.
func Decompress(w io.Writer, r io.Reader, l Logger) error {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return err
	}
	if h.method == 0 {
		return errors.Wrap(ErrFormat, "no method")
	}
	cfg := Config{Method: h.method, Depth: h.depth, Precision: h.precision}
	if err := cfg.Verify(); err != nil {
		return errors.Wrap(err, "header")
	}
	logf(l, "%v: depth %d, precision %d/%d, %d bytes", h.method, h.depth, h.precision.RangeBits, h.precision.FreqBits, h.size)

	m, err := newModel(cfg.Method, cfg.Depth, cfg.Precision)
	if err != nil {
		return err
	}
	dec, err := witten.NewDecoder(NewByteSource(br), cfg.Precision)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for i := int64(0); i < h.size; i++ {
		c, err := getByte(dec, m, cfg.Method)
		if err != nil {
			return errors.Wrapf(err, "byte %d", i)
		}
		if dec.Overrun() > cfg.Precision.RangeBits {
			return errors.Wrapf(ErrFormat, "truncated body at byte %d of %d", i, h.size)
		}
		if err := bw.WriteByte(c); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(bw.Flush())
}
