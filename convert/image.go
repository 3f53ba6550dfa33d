package convert

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/transform"
	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/chewxy/math32"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// rows of lossless bitmaps are padded to 32 bits
const bitmapRowPadding = 4

var downsampleFilters = map[string]transform.ResampleFilter{
	"fast":     transform.NearestNeighbor,
	"box":      transform.Box,
	"triangle": transform.Linear,
	"bell":     transform.Gaussian,
	"mitchell": transform.MitchellNetravali,
	"bicubic":  transform.CatmullRom,
	"lanczos3": transform.Lanczos,
}

// ImageDecoder converts the bitmap tags to encoded images, applying
// the color transform, downsampling and vertical flip.
type ImageDecoder struct {
	cfg    *config.Convert
	filter transform.ResampleFilter
	format string // png, jpg or empty for the default of each tag
}

// NewImageDecoder checks the image options.
func NewImageDecoder(cfg *config.Convert) (*ImageDecoder, error) {
	filter, ok := downsampleFilters[cfg.DownsampleFilter]
	if !ok {
		return nil, fmt.Errorf("unknown downsampling filter %q", cfg.DownsampleFilter)
	}
	d := &ImageDecoder{cfg: cfg, filter: filter}
	switch cfg.ImageFormat {
	case "png":
		d.format = "png"
	case "jpg", "jpeg":
		d.format = "jpg"
	case "default", "":
	default:
		return nil, fmt.Errorf("invalid image format %q", cfg.ImageFormat)
	}
	return d, nil
}

func zlibDecompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ImageSize returns the dimensions of a bitmap tag, in pixels.
func ImageSize(ctx *Context, tag swf.DefineTag) (w, h int, err error) {
	switch tag := tag.(type) {
	case *swf.DefineBitsLossless:
		return tag.Width, tag.Height, nil
	case *swf.DefineBitsJPEG:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(tag.Data))
		if err != nil {
			return 0, 0, ctx.Errorf("invalid image data: %s", err)
		}
		return cfg.Width, cfg.Height, nil
	default:
		return 0, 0, ctx.Errorf("invalid image ID %d", tag.CharacterID())
	}
}

// Decode converts the bitmap tag. density is the resolution at which
// the image is drawn, in pixels per inch.
func (d *ImageDecoder) Decode(ctx *Context, tag swf.DefineTag, colors *CompositeColorTransform, density float32) (*ir.ImageData, error) {
	var (
		img           *image.NRGBA
		defaultFormat = "png"
		err           error
	)
	switch tag := tag.(type) {
	case *swf.DefineBitsLossless:
		img, err = decodeLossless(ctx, tag)
	case *swf.DefineBitsJPEG:
		defaultFormat = "jpg"
		img, err = decodeJPEG(ctx, tag)
	default:
		return nil, ctx.Errorf("unsupported image type %T", tag)
	}
	if err != nil {
		return nil, err
	}
	return d.createImageData(img, colors, density, defaultFormat)
}

func decodeLossless(ctx *Context, tag *swf.DefineBitsLossless) (*image.NRGBA, error) {
	data, err := zlibDecompress(tag.Data)
	if err != nil {
		return nil, ctx.Errorf("invalid compressed image data: %s", err)
	}
	alpha := tag.Version >= 2
	w, h := tag.Width, tag.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	switch tag.Format {
	case swf.ColorMapped8:
		entrySize := 3
		if alpha {
			entrySize = 4
		}
		table := make([]color.NRGBA, tag.ColorTableSize)
		for i := range table {
			off := i * entrySize
			if off+entrySize > len(data) {
				return nil, ctx.Errorf("truncated color table")
			}
			c := color.NRGBA{R: data[off], G: data[off+1], B: data[off+2], A: 0xFF}
			if alpha {
				c.A = data[off+3]
			}
			table[i] = c
		}
		pos := len(table) * entrySize
		rowSize := paddedRow(w)
		if pos+rowSize*h > len(data) {
			return nil, ctx.Errorf("truncated image data")
		}
		for y := 0; y < h; y++ {
			row := data[pos+y*rowSize:]
			for x := 0; x < w; x++ {
				index := int(row[x])
				if index < len(table) {
					img.SetNRGBA(x, y, table[index])
				}
			}
		}
	case swf.RGB15:
		if alpha {
			return nil, ctx.Errorf("invalid image format %d", tag.Format)
		}
		rowSize := paddedRow(2 * w)
		if rowSize*h > len(data) {
			return nil, ctx.Errorf("truncated image data")
		}
		for y := 0; y < h; y++ {
			row := data[y*rowSize:]
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, pix15Color(row[2*x], row[2*x+1]))
			}
		}
	case swf.RGB24:
		if 4*w*h > len(data) {
			return nil, ctx.Errorf("truncated image data")
		}
		for i := 0; i < w*h; i++ {
			px := data[4*i : 4*i+4]
			c := color.NRGBA{R: px[1], G: px[2], B: px[3], A: 0xFF}
			if alpha {
				c.A = px[0]
			}
			img.Pix[4*i], img.Pix[4*i+1], img.Pix[4*i+2], img.Pix[4*i+3] = c.R, c.G, c.B, c.A
		}
	default:
		return nil, ctx.Errorf("invalid image format %d", tag.Format)
	}
	return img, nil
}

func paddedRow(size int) int {
	return (size + bitmapRowPadding - 1) / bitmapRowPadding * bitmapRowPadding
}

// pix15Color decodes a big endian 0RRRRRGGGGGBBBBB pixel.
func pix15Color(b0, b1 byte) color.NRGBA {
	v := uint16(b0)<<8 | uint16(b1)
	return color.NRGBA{
		R: uint8(v & 0x7C00 >> 7),
		G: uint8(v & 0x03E0 >> 2),
		B: uint8(v & 0x1F << 3),
		A: 0xFF,
	}
}

// decodeEmbedded decodes the JPEG, PNG or GIF payload of a JPEG tag.
func decodeEmbedded(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)
	switch kind {
	case matchers.TypePng:
		return png.Decode(r)
	case matchers.TypeGif:
		return gif.Decode(r)
	default:
		// JPEG tags may start with an erroneous header, which
		// the decoder tolerates
		return jpeg.Decode(r)
	}
}

func decodeJPEG(ctx *Context, tag *swf.DefineBitsJPEG) (*image.NRGBA, error) {
	src, err := decodeEmbedded(tag.Data)
	if err != nil {
		return nil, ctx.Errorf("invalid image data: %s", err)
	}
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			img.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	if tag.Version < 3 || len(tag.AlphaData) == 0 {
		return img, nil
	}

	alpha, err := zlibDecompress(tag.AlphaData)
	if err != nil {
		return nil, ctx.Errorf("invalid compressed alpha data: %s", err)
	}
	if len(alpha) == 0 {
		return img, nil
	}
	if len(alpha) != b.Dx()*b.Dy() {
		return nil, ctx.Errorf("invalid alpha data size %d for %dx%d image", len(alpha), b.Dx(), b.Dy())
	}
	for i, a := range alpha {
		px := img.Pix[4*i : 4*i+4 : 4*i+4]
		// the color channels are premultiplied by the alpha data
		px[0], px[1], px[2] = divideAlpha(px[0], a), divideAlpha(px[1], a), divideAlpha(px[2], a)
		px[3] = a
	}
	return img, nil
}

func divideAlpha(c, a uint8) uint8 {
	if a == 0 {
		return 0
	}
	v := math32.Round(float32(c) * 255 / float32(a))
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// applyColorTransform modifies img in place.
func applyColorTransform(img *image.NRGBA, colors *CompositeColorTransform) {
	if colors == nil || colors.IsEmpty() {
		return
	}
	for i := 0; i < len(img.Pix); i += 4 {
		px := img.Pix[i : i+4 : i+4]
		c := colors.Transform(ir.NewColor(px[0], px[1], px[2], px[3]))
		px[0], px[1], px[2], px[3] = c.R(), c.G(), c.B(), c.A()
	}
}

// downsampled returns img resized so that its density does not exceed
// the maximum density, keeping both sides above the minimum size.
func (d *ImageDecoder) downsampled(img image.Image, density float32) image.Image {
	b := img.Bounds()
	minSize := float32(d.cfg.DownsampleMinSize)
	tooSmall := float32(b.Dx()) < minSize || float32(b.Dy()) < minSize
	valid := density > 0 && !math32.IsInf(density, 1) && !math32.IsNaN(density)
	if !d.cfg.DownsampleImages || !valid || density < d.cfg.MaxDPI || tooSmall {
		return img
	}
	scale := d.cfg.MaxDPI / density
	w, h := float32(b.Dx())*scale, float32(b.Dy())*scale
	if w < minSize {
		h *= minSize / w
		w = minSize
	}
	if h < minSize {
		w *= minSize / h
		h = minSize
	}
	return transform.Resize(img, int(math32.Round(w)), int(math32.Round(h)), d.filter)
}

func (d *ImageDecoder) createImageData(img *image.NRGBA, colors *CompositeColorTransform, density float32, defaultFormat string) (*ir.ImageData, error) {
	applyColorTransform(img, colors)
	var out image.Image = img
	out = d.downsampled(out, density)
	if d.cfg.YDirection == ir.YUp {
		out = transform.FlipV(out)
	}
	format := defaultFormat
	if d.format != "" {
		format = d.format
	}
	return EncodeImage(out, format, d.cfg.JPEGQuality)
}

// splitAlpha returns the opaque color image of img and its alpha
// channel, nil if img is opaque.
func splitAlpha(img image.Image) (*image.NRGBA, *image.Gray) {
	b := img.Bounds()
	rgb := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mask := image.NewGray(rgb.Rect)
	opaque := true
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A != 0xFF {
				opaque = false
			}
			mask.Pix[y*mask.Stride+x] = c.A
			c.A = 0xFF
			rgb.SetNRGBA(x, y, c)
		}
	}
	if opaque {
		return rgb, nil
	}
	return rgb, mask
}

// EncodeImage encodes img as PNG or JPEG. With JPEG, the alpha channel
// is encoded separately as a gray JPEG image, unless img is opaque.
func EncodeImage(img image.Image, format string, quality int) (*ir.ImageData, error) {
	b := img.Bounds()
	out := &ir.ImageData{Width: b.Dx(), Height: b.Dy()}
	var buf bytes.Buffer
	if format == "png" {
		out.Format = ir.FormatPNG
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG image: %w", err)
		}
		out.Data = buf.Bytes()
		return out, nil
	}

	out.Format = ir.FormatJPEG
	opts := &jpeg.Options{Quality: quality}
	rgb, mask := splitAlpha(img)
	if err := jpeg.Encode(&buf, rgb, opts); err != nil {
		return nil, fmt.Errorf("encoding JPEG image: %w", err)
	}
	out.Data = buf.Bytes()
	if mask == nil {
		return out, nil
	}
	var alphaBuf bytes.Buffer
	if err := jpeg.Encode(&alphaBuf, mask, opts); err != nil {
		return nil, fmt.Errorf("encoding JPEG alpha mask: %w", err)
	}
	out.AlphaData = alphaBuf.Bytes()
	return out, nil
}
