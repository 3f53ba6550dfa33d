package svg

import (
	"errors"
	"math"
	"testing"

	"github.com/benoitkugler/swfconvert/render"
	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	for _, test := range []struct {
		v         float32
		precision int
		number    string
		optimized string
	}{
		{1.123, 2, "1.12", "1.12"},
		{100, 2, "100", "100"},
		{100, 0, "100", "100"},
		{-0.0001, 2, "0", "0"},
		{-0.4, 0, "0", "0"},
		{0.1, 2, "0.1", ".1"},
		{-0.3, 1, "-0.3", "-.3"},
		{10.5, 1, "10.5", "10.5"},
	} {
		assert.Equal(t, test.number, FormatNumber(test.v, test.precision), test.v)
		assert.Equal(t, test.optimized, FormatOptimized(test.v, test.precision), test.v)
	}
}

func TestFormatNegativeZero(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	for precision := 0; precision <= MaxPrecision; precision++ {
		assert.Equal(t, "0", FormatNumber(negZero, precision), precision)
		assert.Equal(t, "0", FormatOptimized(negZero, precision), precision)
	}
	assert.Equal(t, "0.1 -0.9 0.3 0 1", string(AppendValues(nil, 1, 0.1, -0.9, 0.3, negZero, 1)))
	b, _ := AppendValuesOptimized(nil, "", formatAll(1, true, 0.1, -0.9, 0.3, negZero, 1)...)
	assert.Equal(t, ".1-.9.3 0 1", string(b))
}

func TestAppendValuesOptimized(t *testing.T) {
	b, last := AppendValuesOptimized(nil, "", ".1", "-.9", ".3", "0", "1")
	assert.Equal(t, ".1-.9.3 0 1", string(b))
	assert.Equal(t, "1", last)

	assert.Equal(t, "1.5 -2 0", string(AppendValues(nil, 1, 1.5, -2, 0)))
	assert.Equal(t, "0 -.5", valuesList(1, true, 0, -0.5))
}

func TestCheckPrecision(t *testing.T) {
	assert.NoError(t, CheckPrecision("precision", 0))
	assert.NoError(t, CheckPrecision("precision", MaxPrecision))

	err := CheckPrecision("precision", MaxPrecision+1)
	var cfgErr *render.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Error(t, CheckPrecision("precision", -1))
}
