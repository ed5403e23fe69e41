package arcd

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/fumin/arcd/ac"
)

// ErrFormat is returned when the input is not a compressed stream.
var ErrFormat = errors.New("arcd: invalid format")

const magic = "arcd"

// maxHeaderLen bounds the encoded header.
const maxHeaderLen = 256

// Header field numbers. The header is a protocol buffer message, so fields can be added
// without breaking older readers.
const (
	fieldMethod    protowire.Number = 1
	fieldDepth     protowire.Number = 2
	fieldSize      protowire.Number = 3
	fieldRangeBits protowire.Number = 4
	fieldFreqBits  protowire.Number = 5
)

// A header precedes the coded body of Compress.
type header struct {
	method    Method
	depth     int
	size      int64
	precision ac.Precision
}

func (h *header) marshal() []byte {
	var b []byte
	for _, f := range []struct {
		num protowire.Number
		v   uint64
	}{
		{fieldMethod, uint64(h.method)},
		{fieldDepth, uint64(h.depth)},
		{fieldSize, uint64(h.size)},
		{fieldRangeBits, uint64(h.precision.RangeBits)},
		{fieldFreqBits, uint64(h.precision.FreqBits)},
	} {
		b = protowire.AppendTag(b, f.num, protowire.VarintType)
		b = protowire.AppendVarint(b, f.v)
	}
	return b
}

func (h *header) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(ErrFormat, protowire.ParseError(n).Error())
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(ErrFormat, protowire.ParseError(n).Error())
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return errors.Wrap(ErrFormat, protowire.ParseError(n).Error())
		}
		b = b[n:]
		switch num {
		case fieldMethod:
			if v > 255 {
				return errors.Wrapf(ErrFormat, "method %d", v)
			}
			h.method = Method(v)
		case fieldDepth:
			if v > maxDepth {
				return errors.Wrapf(ErrFormat, "depth %d", v)
			}
			h.depth = int(v)
		case fieldSize:
			if v > 1<<62 {
				return errors.Wrapf(ErrFormat, "size %d", v)
			}
			h.size = int64(v)
		case fieldRangeBits:
			if v > 64 {
				return errors.Wrapf(ErrFormat, "range bits %d", v)
			}
			h.precision.RangeBits = uint(v)
		case fieldFreqBits:
			if v > 64 {
				return errors.Wrapf(ErrFormat, "frequency bits %d", v)
			}
			h.precision.FreqBits = uint(v)
		}
	}
	return nil
}

// writeHeader writes the magic followed by the length delimited header.
func writeHeader(w io.Writer, h *header) error {
	b := protowire.AppendBytes([]byte(magic), h.marshal())
	_, err := w.Write(b)
	return errors.WithStack(err)
}

func readHeader(r *bufio.Reader) (*header, error) {
	m := make([]byte, len(magic))
	if _, err := io.ReadFull(r, m); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrap(ErrFormat, "short magic")
		}
		return nil, errors.WithStack(err)
	}
	if string(m) != magic {
		return nil, errors.Wrapf(ErrFormat, "magic %q", m)
	}

	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, errors.Wrap(ErrFormat, "header length")
	}
	if n > maxHeaderLen {
		return nil, errors.Wrapf(ErrFormat, "header length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(ErrFormat, "short header")
	}
	h := &header{}
	if err := h.unmarshal(b); err != nil {
		return nil, err
	}
	return h, nil
}
