package arcd

import "fmt"

// A Logger receives debug output. The *log.Logger type implements it.
// A nil Logger disables the output without formatting anything.
type Logger interface {
	Output(calldepth int, s string) error
}

func logf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}
