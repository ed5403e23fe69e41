package arcd

import (
	"bytes"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/fumin/arcd/ac"
)

func TestCompress(t *testing.T) {
	const name = "testdata/gettysburg.txt"
	gettys, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("%v", err)
	}

	for _, method := range []Method{Adaptive, Order1, CTW} {
		t.Run(method.String(), func(t *testing.T) {
			// Compress
			f, err := os.CreateTemp("", "arcd.TestCompress.Compress")
			if err != nil {
				t.Fatalf("%v", err)
			}
			defer f.Close()
			defer os.Remove(f.Name())
			var logs bytes.Buffer
			cfg := Config{Method: method, Logger: log.New(&logs, "", 0)}
			if err := Compress(f, bytes.NewReader(gettys), cfg); err != nil {
				t.Fatalf("%+v", err)
			}
			if !strings.Contains(logs.String(), method.String()) {
				t.Errorf("log %q", logs.String())
			}

			// Decompress
			if _, err = f.Seek(0, 0); err != nil {
				t.Fatalf("%v", err)
			}
			info, err := f.Stat()
			if err != nil {
				t.Fatalf("%v", err)
			}
			// Order1 spends most of a short text learning its 256 contexts.
			if method != Order1 && info.Size() >= int64(len(gettys)) {
				t.Errorf("%v: %d bytes compressed to %d", method, len(gettys), info.Size())
			}
			t.Logf("%v: %d -> %d", method, len(gettys), info.Size())

			var decom bytes.Buffer
			if err := Decompress(&decom, f, nil); err != nil {
				t.Fatalf("%+v", err)
			}

			// Check if the decompressed result is the same as the original file
			if !bytes.Equal(gettys, decom.Bytes()) {
				t.Errorf("%q", decom.Bytes())
			}
		})
	}
}

func roundTrip(t *testing.T, data []byte, cfg Config) []byte {
	var buf bytes.Buffer
	if err := Compress(&buf, bytes.NewReader(data), cfg); err != nil {
		t.Fatalf("%+v", err)
	}
	compressed := append([]byte(nil), buf.Bytes()...)
	var out bytes.Buffer
	if err := Decompress(&out, &buf, nil); err != nil {
		t.Fatalf("%+v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("%v: round trip of %d bytes gave %d bytes", cfg.Method, len(data), out.Len())
	}
	return compressed
}

func TestCompressEdgeCases(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	random := make([]byte, 4096)
	rnd.Read(random)
	inputs := map[string][]byte{
		"empty":  nil,
		"one":    {'x'},
		"zeros":  make([]byte, 10000),
		"ones":   bytes.Repeat([]byte{0xff}, 10000),
		"random": random,
	}
	configs := []struct {
		cfg    Config
		coarse bool
	}{
		{Config{Method: Adaptive}, false},
		{Config{Method: Order1}, false},
		{Config{Method: CTW, Depth: 8}, false},
		{Config{Method: Adaptive, Precision: ac.Precision{RangeBits: 17, FreqBits: 15}}, false},
		{Config{Method: Order1, Precision: ac.Precision{RangeBits: 11, FreqBits: 9}}, true},
		{Config{Method: CTW, Depth: 4, Precision: ac.Precision{RangeBits: 48, FreqBits: 16}}, false},
	}
	for name, data := range inputs {
		for _, c := range configs {
			cfg := c.cfg
			compressed := roundTrip(t, data, cfg)
			if name == "zeros" && !c.coarse && len(compressed) > 200 {
				t.Errorf("%v: %d zeros compressed to %d bytes", cfg.Method, len(data), len(compressed))
			}
		}
	}
}

func TestCompressDeterminism(t *testing.T) {
	data := []byte(strings.Repeat("abracadabra ", 100))
	cfg := Config{Method: Order1}
	a, b := roundTrip(t, data, cfg), roundTrip(t, data, cfg)
	if !bytes.Equal(a, b) {
		t.Errorf("outputs differ")
	}
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		cfg Config
		err error
	}{
		{Config{Method: 9}, ErrMethod},
		{Config{Precision: ac.Precision{RangeBits: 10, FreqBits: 9}}, ac.ErrPrecision},
		{Config{Precision: ac.Precision{RangeBits: 10, FreqBits: 8}}, ac.ErrPrecision},
		{Config{Method: CTW, Precision: ac.Precision{RangeBits: 16, FreqBits: 12}}, ac.ErrPrecision},
	}
	for _, test := range tests {
		cfg := test.cfg
		if err := cfg.Verify(); !errors.Is(err, test.err) {
			t.Errorf("%+v: got %v, want %v", test.cfg, err, test.err)
		}
	}

	var cfg Config
	if err := cfg.Verify(); err != nil {
		t.Fatalf("%+v", err)
	}
	if cfg.Method != Adaptive || cfg.Precision != ac.DefaultPrecision {
		t.Errorf("defaults %+v", cfg)
	}
	cfg = Config{Method: CTW}
	if err := cfg.Verify(); err != nil || cfg.Depth != 48 {
		t.Errorf("CTW defaults %+v: %v", cfg, err)
	}
	if err := (*Config)(nil).Verify(); err == nil {
		t.Errorf("nil config verified")
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{Adaptive, Order1, CTW} {
		got, err := ParseMethod(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Errorf("ParseMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMethod("lz77"); !errors.Is(err, ErrMethod) {
		t.Errorf("ParseMethod(lz77): %v", err)
	}
	if s := Method(7).String(); s != "method(7)" {
		t.Errorf("%q", s)
	}
}

func TestDecompressFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Compress(&buf, strings.NewReader("hello"), Config{}); err != nil {
		t.Fatalf("%+v", err)
	}
	valid := buf.Bytes()

	badPrecision := &header{method: Adaptive, size: 1, precision: ac.Precision{RangeBits: 8, FreqBits: 7}}
	var bp bytes.Buffer
	if err := writeHeader(&bp, badPrecision); err != nil {
		t.Fatalf("%+v", err)
	}

	// Method 257 does not fit a byte and must not alias Adaptive.
	b := protowire.AppendTag(nil, fieldMethod, protowire.VarintType)
	b = protowire.AppendVarint(b, 257)
	b = protowire.AppendTag(b, fieldSize, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	wideMethod := protowire.AppendBytes([]byte(magic), b)
	wideMethod = append(wideMethod, 0)

	tests := []struct {
		name string
		in   []byte
		err  error
	}{
		{"empty", nil, ErrFormat},
		{"magic", []byte("xz\x00\x00hello"), ErrFormat},
		{"short header", valid[:6], ErrFormat},
		{"long header", append([]byte(magic), 0xff, 0x0f), ErrFormat},
		{"no method", append([]byte(magic), 0), ErrFormat},
		{"bad tag", append([]byte(magic), 1, 0), ErrFormat},
		{"precision", bp.Bytes(), ac.ErrPrecision},
		{"wide method", wideMethod, ErrFormat},
	}
	for _, test := range tests {
		err := Decompress(io.Discard, bytes.NewReader(test.in), nil)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: got %+v, want %v", test.name, err, test.err)
		}
	}
}

func TestHeaderUnknownFields(t *testing.T) {
	h := &header{method: CTW, depth: 12, size: 1 << 40, precision: ac.Precision{RangeBits: 40, FreqBits: 20}}
	b := h.marshal()
	// A length delimited field 9 from a newer writer.
	b = append(b, 9<<3|2, 3, 'a', 'b', 'c')
	var got header
	if err := got.unmarshal(b); err != nil {
		t.Fatalf("%+v", err)
	}
	if got != *h {
		t.Errorf("%+v != %+v", got, *h)
	}
}

func TestDecompressTruncated(t *testing.T) {
	gettys, err := os.ReadFile("testdata/gettysburg.txt")
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, method := range []Method{Adaptive, Order1, CTW} {
		var buf bytes.Buffer
		if err := Compress(&buf, bytes.NewReader(gettys), Config{Method: method}); err != nil {
			t.Fatalf("%+v", err)
		}
		cut := buf.Bytes()[:buf.Len()/2]
		var out bytes.Buffer
		err := Decompress(&out, bytes.NewReader(cut), nil)
		if !errors.Is(err, ErrFormat) {
			t.Errorf("%v: %d of %d bytes: got %v, want ErrFormat", method, len(cut), buf.Len(), err)
		}
		if out.Len() >= len(gettys) {
			t.Errorf("%v: decoded %d bytes from a truncated body", method, out.Len())
		}
	}
}

// TestDecompressForgedSize checks that a header claiming a huge size without a body fails fast.
func TestDecompressForgedSize(t *testing.T) {
	for _, method := range []Method{Adaptive, Order1, CTW} {
		cfg := Config{Method: method}
		if err := cfg.Verify(); err != nil {
			t.Fatalf("%+v", err)
		}
		h := &header{method: cfg.Method, depth: cfg.Depth, size: 1 << 40, precision: cfg.Precision}
		var buf bytes.Buffer
		if err := writeHeader(&buf, h); err != nil {
			t.Fatalf("%+v", err)
		}
		var out bytes.Buffer
		err := Decompress(&out, &buf, nil)
		if !errors.Is(err, ErrFormat) {
			t.Errorf("%v: got %v, want ErrFormat", method, err)
		}
		if out.Len() > 64 {
			t.Errorf("%v: decoded %d bytes from filler", method, out.Len())
		}
	}
}
