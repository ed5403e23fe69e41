package arcd

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// A ByteSink packs coded bits into bytes, most significant bit first.
// A short final group of bits is padded with zeros, which is what a decoder reads after the end of input anyway.
type ByteSink struct {
	w *bufio.Writer
}

// NewByteSink returns a ByteSink writing to w. Flush must be called after the encoder finishes.
func NewByteSink(w io.Writer) *ByteSink {
	return &ByteSink{w: bufio.NewWriter(w)}
}

func (s *ByteSink) Accept(buf byte, n uint) error {
	if n < 8 {
		buf <<= 8 - n
	}
	return s.w.WriteByte(buf)
}

// Flush writes any buffered bytes to the underlying writer.
func (s *ByteSink) Flush() error {
	return errors.WithStack(s.w.Flush())
}

// A ByteSource hands out the bytes of a reader eight bits at a time.
type ByteSource struct {
	r io.ByteReader
}

// NewByteSource returns a ByteSource reading from r.
// r is wrapped in a bufio.Reader unless it is an io.ByteReader already.
func NewByteSource(r io.Reader) *ByteSource {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ByteSource{r: br}
}

func (s *ByteSource) Fill() (byte, uint, error) {
	b, err := s.r.ReadByte()
	if err == io.EOF {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return b, 8, nil
}
