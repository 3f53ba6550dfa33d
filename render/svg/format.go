package svg

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/swfconvert/render"
)

// MaxPrecision is the maximum number of fractional digits.
const MaxPrecision = 5

const debugPrecision = 3

// CheckPrecision returns a *render.ConfigError if precision is out of range.
func CheckPrecision(name string, precision int) error {
	if precision < 0 || precision > MaxPrecision {
		return render.ConfigErrorf("%s must be between 0 and %d (got %d)", name, MaxPrecision, precision)
	}
	return nil
}

// FormatNumber writes v with at most precision fractional digits,
// without trailing zeros. Values rounding to zero are written "0".
func FormatNumber(v float32, precision int) string {
	s := strconv.FormatFloat(float64(v), 'f', precision, 32)
	if strings.IndexByte(s, '.') != -1 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// FormatOptimized is like FormatNumber, but drops the leading zero
// of fractional values.
func FormatOptimized(v float32, precision int) string {
	s := FormatNumber(v, precision)
	if v >= -1 && v <= 1 && strings.IndexByte(s, '.') != -1 {
		s = strings.Replace(s, "0", "", 1)
	}
	return s
}

// AppendValues appends space separated values.
func AppendValues(b []byte, precision int, values ...float32) []byte {
	for i, v := range values {
		if i != 0 {
			b = append(b, ' ')
		}
		b = append(b, FormatNumber(v, precision)...)
	}
	return b
}

// AppendValuesOptimized appends values, only separated by a space
// when neither the sign nor the decimal point of a value can act as
// separator. last is the value written just before, and the last
// value written is returned.
func AppendValuesOptimized(b []byte, last string, values ...string) ([]byte, string) {
	for _, v := range values {
		if last != "" {
			signSep := strings.IndexByte(v, '-') != -1
			pointSep := strings.IndexByte(last, '.') != -1 && strings.HasPrefix(v, ".")
			if !signSep && !pointSep {
				b = append(b, ' ')
			}
		}
		b = append(b, v...)
		last = v
	}
	return b, last
}

func formatAll(precision int, optimized bool, values ...float32) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if optimized {
			out[i] = FormatOptimized(v, precision)
		} else {
			out[i] = FormatNumber(v, precision)
		}
	}
	return out
}

// valuesList formats values for attributes such as viewBox and dx,
// always separated by spaces.
func valuesList(precision int, optimized bool, values ...float32) string {
	return strings.Join(formatAll(precision, optimized, values...), " ")
}
