package convert

import (
	"bytes"
	"compress/zlib"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressed(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeLossless(t *testing.T) {
	ctx := FileContext(0, "")
	argb := &swf.DefineBitsLossless{Version: 2, Format: swf.RGB24, Width: 2, Height: 1,
		Data: compressed(t, []byte{128, 10, 20, 30, 255, 1, 2, 3})}
	img, err := decodeLossless(ctx, argb)
	require.NoError(t, err)
	// not premultiplied
	assert.Equal(t, []uint8{10, 20, 30, 128, 1, 2, 3, 255}, img.Pix)

	mapped := &swf.DefineBitsLossless{Version: 1, Format: swf.ColorMapped8, Width: 3, Height: 2, ColorTableSize: 2,
		Data: compressed(t, []byte{
			0xFF, 0, 0, 0, 0, 0xFF, // table
			0, 1, 0, 0, // padded rows
			1, 1, 1, 0,
		})}
	img, err = decodeLossless(ctx, mapped)
	require.NoError(t, err)
	blue := color.NRGBA{B: 0xFF, A: 0xFF}
	assert.Equal(t, color.NRGBA{R: 0xFF, A: 0xFF}, img.NRGBAAt(0, 0))
	assert.Equal(t, blue, img.NRGBAAt(1, 0))
	assert.Equal(t, blue, img.NRGBAAt(0, 1))

	truncated := &swf.DefineBitsLossless{Version: 1, Format: swf.RGB24, Width: 4, Height: 4, Data: compressed(t, []byte{1, 2, 3})}
	_, err = decodeLossless(ctx, truncated)
	assert.ErrorContains(t, err, "truncated image data")

	_, err = decodeLossless(ctx, &swf.DefineBitsLossless{Data: []byte("not compressed")})
	assert.Error(t, err)
}

func TestPixelHelpers(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xF8, A: 0xFF}, pix15Color(0x7C, 0x00))
	assert.Equal(t, color.NRGBA{B: 0xF8, A: 0xFF}, pix15Color(0x00, 0x1F))
	assert.Equal(t, uint8(128), divideAlpha(64, 128))
	assert.Equal(t, uint8(0), divideAlpha(10, 0))
	assert.Equal(t, uint8(255), divideAlpha(200, 100))
	assert.Equal(t, 8, paddedRow(5))
	assert.Equal(t, 4, paddedRow(4))
}

func encodedPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeJPEGAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{64, 64, 64, 0xFF})
	src.SetNRGBA(1, 0, color.NRGBA{64, 64, 64, 0xFF})
	tag := &swf.DefineBitsJPEG{Version: 3, Data: encodedPNG(t, src), AlphaData: compressed(t, []byte{128, 255})}

	img, err := decodeJPEG(FileContext(0, ""), tag)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{128, 128, 128, 128}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{64, 64, 64, 255}, img.NRGBAAt(1, 0))

	w, h, err := ImageSize(FileContext(0, ""), tag)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 1}, [2]int{w, h})

	tag.AlphaData = compressed(t, []byte{1, 2, 3})
	_, err = decodeJPEG(FileContext(0, ""), tag)
	assert.ErrorContains(t, err, "invalid alpha data size 3")
}

func TestEncodeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	data, err := EncodeImage(img, "png", 75)
	require.NoError(t, err)
	assert.Equal(t, ir.FormatPNG, data.Format)
	cfg, err := png.DecodeConfig(bytes.NewReader(data.Data))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)

	data, err = EncodeImage(img, "jpg", 75)
	require.NoError(t, err)
	assert.Equal(t, ir.FormatJPEG, data.Format)
	assert.Nil(t, data.AlphaData)

	img.Pix[3] = 0
	data, err = EncodeImage(img, "jpg", 75)
	require.NoError(t, err)
	assert.NotEmpty(t, data.AlphaData)
	assert.Equal(t, [2]int{4, 3}, [2]int{data.Width, data.Height})
}

func TestImageDecoder(t *testing.T) {
	cfg := testConvertConfig(t)
	cfg.DownsampleFilter = "sharp"
	_, err := NewImageDecoder(cfg)
	assert.Error(t, err)
	cfg = testConvertConfig(t)
	cfg.ImageFormat = "bmp"
	_, err = NewImageDecoder(cfg)
	assert.Error(t, err)

	cfg = testConvertConfig(t)
	cfg.DownsampleImages = true
	cfg.MaxDPI = 100
	cfg.ImageFormat = "png"
	d, err := NewImageDecoder(cfg)
	require.NoError(t, err)

	// top row red, bottom row blue
	pixels := make([]byte, 4*40*20)
	for i := 0; i < 40*20; i++ {
		pixels[4*i+1] = 0xFF
		if i >= 40*10 {
			pixels[4*i+1], pixels[4*i+3] = 0, 0xFF
		}
	}
	tag := &swf.DefineBitsLossless{Version: 1, Format: swf.RGB24, Width: 40, Height: 20, Data: compressed(t, pixels)}

	data, err := d.Decode(FileContext(0, ""), tag, &CompositeColorTransform{}, 200)
	require.NoError(t, err)
	assert.Equal(t, [2]int{20, 10}, [2]int{data.Width, data.Height})

	// not downsampled below the density, and flipped
	data, err = d.Decode(FileContext(0, ""), tag, &CompositeColorTransform{}, 50)
	require.NoError(t, err)
	assert.Equal(t, [2]int{40, 20}, [2]int{data.Width, data.Height})
	decoded, err := png.Decode(bytes.NewReader(data.Data))
	require.NoError(t, err)
	r, _, b, _ := decoded.At(0, 0).RGBA()
	assert.Equal(t, [2]uint32{0, 0xFFFF}, [2]uint32{r, b})

	_, err = d.Decode(FileContext(0, ""), &swf.DefineShape{}, nil, 100)
	assert.Error(t, err)
}

func TestDownsampledDensity(t *testing.T) {
	cfg := testConvertConfig(t)
	cfg.DownsampleImages = true
	cfg.DownsampleMinSize = 10
	cfg.MaxDPI = 100
	d, err := NewImageDecoder(cfg)
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for _, density := range []float32{0, float32(math.Inf(1)), float32(math.NaN())} {
		assert.Equal(t, img.Bounds(), d.downsampled(img, density).Bounds(), density)
	}
	// never below the minimum size
	assert.Equal(t, image.Rect(0, 0, 10, 10), d.downsampled(img, 10000).Bounds())

	// an image placed with a zero scale is kept as is
	tag := &swf.DefineBitsLossless{Version: 1, Format: swf.RGB24, Width: 20, Height: 20,
		Data: compressed(t, make([]byte, 4*20*20))}
	density := ImageDensity(ir.Matrix{}, ir.NewScaling(100, 100), 20, 20)
	data, err := d.Decode(FileContext(0, ""), tag, &CompositeColorTransform{}, density)
	require.NoError(t, err)
	assert.Equal(t, [2]int{20, 20}, [2]int{data.Width, data.Height})
}

func TestDedupImages(t *testing.T) {
	a := &ir.ImageData{Data: []byte{1, 2, 3}}
	sameAsA := &ir.ImageData{Data: []byte{1, 2, 3}}
	b := &ir.ImageData{Data: []byte{1, 2, 3}, AlphaData: []byte{4}}
	fills := []*ir.ImageFill{{Image: a}, {Image: b}, {Image: sameAsA}, {Image: a}}

	images := dedupImages(fills)
	assert.Equal(t, []*ir.ImageData{a, b}, images)
	assert.Same(t, a, fills[2].Image)

	fills[2].Image = sameAsA
	assert.Len(t, distinctImages(fills), 3)
}
