package arcd

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/arcd/ac"
	"github.com/fumin/arcd/ctw"
)

// ErrMethod is returned for unknown compression methods.
var ErrMethod = errors.New("arcd: unknown method")

// A Method selects the probability model of the compressed body.
type Method byte

const (
	// Adaptive counts byte frequencies.
	Adaptive Method = 1 + iota
	// Order1 counts byte frequencies separately for every preceding byte.
	Order1
	// CTW codes every byte as eight bits, most significant first, with Context Tree Weighting.
	CTW
)

var methodNames = map[Method]string{
	Adaptive: "adaptive",
	Order1:   "order1",
	CTW:      "ctw",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "method(" + strconv.Itoa(int(m)) + ")"
}

// ParseMethod returns the method with the given name.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(s)
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrMethod, "%q", s)
}

// maxDepth bounds the CTW depth accepted from a header.
const maxDepth = 1024

// Config describes the parameters of Compress.
type Config struct {
	// Method selects the model (default: Adaptive).
	Method Method

	// Depth is the context depth in bits of the CTW method (default: 48).
	Depth int

	// Precision of the arithmetic coder (default: ac.DefaultPrecision).
	Precision ac.Precision

	// Logger receives statistics, nil disables them.
	Logger Logger
}

// ApplyDefaults replaces zero values by their defaults.
func (c *Config) ApplyDefaults() {
	if c.Method == 0 {
		c.Method = Adaptive
	}
	if c.Depth == 0 && c.Method == CTW {
		c.Depth = 48
	}
	if c.Precision == (ac.Precision{}) {
		c.Precision = ac.DefaultPrecision
	}
}

// Verify applies the defaults and checks the configuration for errors.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("arcd: configuration is nil")
	}
	c.ApplyDefaults()
	if err := c.Precision.Validate(); err != nil {
		return err
	}
	switch c.Method {
	case Adaptive, Order1:
		if c.Precision.FreqMax() <= 256 {
			return errors.Wrapf(ac.ErrPrecision, "%v needs more than %d frequency bits", c.Method, c.Precision.FreqBits)
		}
	case CTW:
		if c.Precision.FreqBits <= ctw.TotalBits {
			return errors.Wrapf(ac.ErrPrecision, "%v needs more than %d frequency bits", c.Method, c.Precision.FreqBits)
		}
		if c.Depth < 0 || c.Depth > maxDepth {
			return errors.Errorf("arcd: depth %d out of range [0, %d]", c.Depth, maxDepth)
		}
	default:
		return errors.Wrapf(ErrMethod, "%d", c.Method)
	}
	return nil
}
