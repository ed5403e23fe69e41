package arcd

import (
	"io"

	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
	"github.com/fumin/arcd/ac/witten"
	"github.com/fumin/arcd/model"
)

// EOS is the symbol that ends a stream written by a Writer.
const EOS = 256

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("arcd: writer closed")

func newStreamModel() (*model.Adaptive, error) {
	return model.NewAdaptive(EOS+1, ac.DefaultPrecision.FreqMax())
}

// A Writer compresses bytes with an adaptive model and terminates the stream with EOS,
// so that no length needs to be known in advance.
type Writer struct {
	sink  *ByteSink
	enc   *witten.Encoder
	model *model.Adaptive
	err   error
}

// NewWriter returns a Writer compressing to w. Close must be called to complete the stream.
func NewWriter(w io.Writer) (*Writer, error) {
	sink := NewByteSink(w)
	enc, err := witten.NewEncoder(sink, ac.DefaultPrecision)
	if err != nil {
		return nil, err
	}
	m, err := newStreamModel()
	if err != nil {
		return nil, err
	}
	return &Writer{sink: sink, enc: enc, model: m}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	for i, c := range p {
		if err := w.enc.Put(w.model, int(c)); err != nil {
			w.err = err
			return i, err
		}
	}
	return len(p), nil
}

// Close writes EOS, finishes the coder and flushes the output. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.err == ErrClosed {
		return nil
	}
	if w.err != nil {
		return w.err
	}
	if err := w.enc.Put(w.model, EOS); err != nil {
		w.err = err
		return err
	}
	if err := w.enc.Finish(); err != nil {
		w.err = err
		return err
	}
	if err := w.sink.Flush(); err != nil {
		w.err = err
		return err
	}
	w.err = ErrClosed
	return nil
}

// A Reader decompresses a stream written by a Writer.
type Reader struct {
	dec   *witten.Decoder
	model *model.Adaptive
	err   error
}

// NewReader returns a Reader decompressing from r.
func NewReader(r io.Reader) (*Reader, error) {
	dec, err := witten.NewDecoder(NewByteSource(r), ac.DefaultPrecision)
	if err != nil {
		return nil, err
	}
	m, err := newStreamModel()
	if err != nil {
		return nil, err
	}
	return &Reader{dec: dec, model: m}, nil
}

// Read returns io.EOF once EOS has been decoded.
// A stream cut short is reported as ErrFormat once the decoder runs past the end of its input,
// but bytes decoded before that point may already be garbage.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && r.err == nil {
		sym, err := r.dec.Get(r.model)
		switch {
		case err != nil:
			r.err = err
		case sym == EOS:
			r.err = io.EOF
		case r.dec.Overrun() > ac.DefaultPrecision.RangeBits:
			r.err = errors.Wrap(ErrFormat, "truncated stream")
		default:
			p[n] = byte(sym)
			n++
		}
	}
	if n > 0 {
		return n, nil
	}
	return 0, r.err
}
