package ir

import (
	"bytes"
	"hash/fnv"
	"sync"
)

type ImageFormat uint8

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
)

// Extension returns the file extension, without dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

func (f ImageFormat) String() string { return f.Extension() }

// ImageData is an encoded image, with an optional separate
// alpha channel (used with JPEG).
type ImageData struct {
	Data      []byte
	AlphaData []byte // optional
	Format    ImageFormat
	Width     int
	Height    int

	// DataFile and AlphaDataFile are set when the image is written.
	DataFile      string
	AlphaDataFile string

	hashOnce sync.Once
	hash     uint64
}

// Hash returns a content digest, computed once.
func (img *ImageData) Hash() uint64 {
	img.hashOnce.Do(func() {
		h := fnv.New64a()
		h.Write(img.Data)
		h.Write([]byte{0})
		h.Write(img.AlphaData)
		img.hash = h.Sum64()
	})
	return img.hash
}

// Equal compares the content of the images.
func (img *ImageData) Equal(other *ImageData) bool {
	if img == other {
		return true
	}
	if img.Hash() != other.Hash() {
		return false
	}
	return bytes.Equal(img.Data, other.Data) && bytes.Equal(img.AlphaData, other.AlphaData)
}
