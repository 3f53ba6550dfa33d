package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"sync"

	"github.com/benoitkugler/swfconvert/ir"
)

// tables are the image and font resources of one document, shared by
// the frames rasterized and built concurrently. Entries are created
// with an insert-if-absent discipline, then loaded once.
type tables struct {
	images imageTable
	fonts  fontTable
}

func newTables() *tables {
	return &tables{
		images: imageTable{entries: map[uint64][]*pdfImage{}},
		fonts:  fontTable{entries: map[string]*pdfFont{}},
	}
}

// pdfImage is an image in a format fpdf can embed.
type pdfImage struct {
	source *ir.ImageData

	once sync.Once
	data []byte
	kind string // PNG or JPG
	err  error
}

type imageTable struct {
	mu      sync.Mutex
	entries map[uint64][]*pdfImage
}

// get returns the entry of the images equal to img, creating it if needed.
func (t *imageTable) get(img *ir.ImageData) (*pdfImage, error) {
	hash := img.Hash()
	t.mu.Lock()
	var entry *pdfImage
	for _, e := range t.entries[hash] {
		if e.source.Equal(img) {
			entry = e
			break
		}
	}
	if entry == nil {
		entry = &pdfImage{source: img}
		t.entries[hash] = append(t.entries[hash], entry)
	}
	t.mu.Unlock()

	entry.once.Do(entry.load)
	return entry, entry.err
}

func (p *pdfImage) load() {
	img := p.source
	data, err := imageBytes(img.Data, img.DataFile)
	if err != nil {
		p.err = err
		return
	}
	hasAlpha := len(img.AlphaData) != 0 || img.AlphaDataFile != ""
	switch {
	case img.Format == ir.FormatPNG:
		p.data, p.kind = data, "PNG"
	case !hasAlpha:
		p.data, p.kind = data, "JPG"
	default:
		// JPEG has no alpha channel: merge the mask in a PNG image
		decoded, err := decodeImage(img)
		if err != nil {
			p.err = err
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			p.err = fmt.Errorf("encoding image with alpha: %w", err)
			return
		}
		p.data, p.kind = buf.Bytes(), "PNG"
	}
}

func imageBytes(data []byte, file string) ([]byte, error) {
	if len(data) != 0 || file == "" {
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// decodeImage decodes img, applying its separate alpha channel, if any.
func decodeImage(img *ir.ImageData) (image.Image, error) {
	data, err := imageBytes(img.Data, img.DataFile)
	if err != nil {
		return nil, err
	}
	var src image.Image
	if img.Format == ir.FormatJPEG {
		src, err = jpeg.Decode(bytes.NewReader(data))
	} else {
		src, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", img.Format, err)
	}

	alphaData, err := imageBytes(img.AlphaData, img.AlphaDataFile)
	if err != nil || len(alphaData) == 0 {
		return src, err
	}
	mask, err := jpeg.Decode(bytes.NewReader(alphaData))
	if err != nil {
		return nil, fmt.Errorf("decoding alpha mask: %w", err)
	}
	b := src.Bounds()
	if mask.Bounds().Size() != b.Size() {
		return nil, fmt.Errorf("alpha mask size %v doesn't match image size %v", mask.Bounds().Size(), b.Size())
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mb := mask.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			c.A = color.GrayModel.Convert(mask.At(mb.Min.X+x, mb.Min.Y+y)).(color.Gray).Y
			out.SetNRGBA(x, y, c)
		}
	}
	return out, nil
}

// pdfFont is a TrueType font file.
type pdfFont struct {
	file string

	once sync.Once
	data []byte
	err  error
}

type fontTable struct {
	mu      sync.Mutex
	entries map[string]*pdfFont
}

// get returns the entry of the font file, creating it if needed.
func (t *fontTable) get(font *ir.Font) (*pdfFont, error) {
	if font == nil || font.File == "" {
		return nil, fmt.Errorf("font %q has no file", fontName(font))
	}
	t.mu.Lock()
	entry, ok := t.entries[font.File]
	if !ok {
		entry = &pdfFont{file: font.File}
		t.entries[font.File] = entry
	}
	t.mu.Unlock()

	entry.once.Do(func() {
		entry.data, entry.err = os.ReadFile(entry.file)
	})
	return entry, entry.err
}

func fontName(font *ir.Font) string {
	if font == nil {
		return ""
	}
	return font.Name
}
