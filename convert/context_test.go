package convert

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextString(t *testing.T) {
	root := FileContext(2, "movie.swf")
	assert.Equal(t, "file 2 'movie.swf'", root.String())
	assert.Equal(t, "file 2 'movie.swf', root", root.ObjectChild(nil).String())
	assert.Equal(t, "file 2 'movie.swf', object ID 7", root.ObjectChild([]int{7}).String())

	ctx := root.ObjectChild([]int{3, 12, 7}).Child("fill style 1")
	assert.Equal(t, "file 2 'movie.swf', object ID 7 (3 > 12 > 7), fill style 1", ctx.String())
	assert.Equal(t, "file 0", FileContext(0, "").String())
}

func TestContextErrorf(t *testing.T) {
	ctx := FileContext(0, "a.swf").ObjectChild([]int{4})
	err := fmt.Errorf("converting frame: %w", ctx.Errorf("unsupported blend mode %d", 12))

	var convErr *Error
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, ctx, convErr.Context)
	assert.Equal(t, "unsupported blend mode 12, context: file 0 'a.swf', object ID 4", convErr.Error())
}
