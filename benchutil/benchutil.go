// Package benchutil reports the TestBench* timings as aligned rows,
// in the style of the stdlib "testing" pkg's benchmark output.
package benchutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strings"
)

// Out receives every report line.
var Out io.Writer = os.Stdout

type Metric struct {
	N    float64
	Unit string
}

// Report prints one row, named after the calling test.
func Report(nOps int, ms []*Metric) {
	fmt.Fprintln(Out, format(callerName(1), nOps, ms))
}

func format(name string, nOps int, ms []*Metric) string {
	buf := new(strings.Builder)
	fmt.Fprintf(buf, "%-*s", 20, name)
	fmt.Fprintf(buf, "\t%8d", nOps)
	for _, m := range ms {
		buf.WriteByte('\t')
		prettyPrint(buf, m.N, m.Unit)
	}
	return buf.String()
}

// callerName gives the function name for the caller,
// after skip frames (where 0 means the current function).
func callerName(skip int) string {
	pcs := make([]uintptr, 1)
	callers := runtime.Callers(skip+2, pcs) // skip + runtime.Callers + callerName
	if callers == 0 {
		panic("bench: zero callers found")
	}
	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	split := strings.Split(frame.Function, ".")
	return split[len(split)-1]
}

// prettyPrint keeps ten places before the decimal point
// and four significant figures for small numbers.
func prettyPrint(w io.Writer, x float64, unit string) {
	var format string
	switch y := math.Abs(x); {
	case y == 0 || y >= 999.95:
		format = "%10.0f %s"
	case y >= 99.995:
		format = "%12.1f %s"
	case y >= 9.9995:
		format = "%13.2f %s"
	case y >= 0.99995:
		format = "%14.3f %s"
	case y >= 0.099995:
		format = "%15.4f %s"
	case y >= 0.0099995:
		format = "%16.5f %s"
	case y >= 0.00099995:
		format = "%17.6f %s"
	default:
		format = "%18.7f %s"
	}
	fmt.Fprintf(w, format, x, unit)
}
