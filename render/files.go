package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/benoitkugler/swfconvert/ir"
)

const (
	ImagesDir = "images"
	FontsDir  = "fonts"
)

// FrameImages returns the distinct image files used by frames, in
// traversal order.
func FrameImages(frames []*ir.FrameGroup) []*ir.ImageData {
	var (
		out  []*ir.ImageData
		seen = map[*ir.ImageData]bool{}
	)
	for _, frame := range frames {
		for _, fill := range ir.Images(frame) {
			if fill.Image != nil && !seen[fill.Image] {
				seen[fill.Image] = true
				out = append(out, fill.Image)
			}
		}
	}
	return out
}

// FrameFonts returns the distinct fonts used by frames, in traversal order.
func FrameFonts(frames []*ir.FrameGroup) []*ir.Font {
	var (
		out  []*ir.Font
		seen = map[*ir.Font]bool{}
	)
	for _, frame := range frames {
		for _, font := range ir.Fonts(frame) {
			if !seen[font] {
				seen[font] = true
				out = append(out, font)
			}
		}
	}
	return out
}

// CopyImages copies the data files of images into dir/images.
func CopyImages(images []*ir.ImageData, dir string) error {
	var files []string
	for _, img := range images {
		files = append(files, img.DataFile)
		if img.AlphaDataFile != "" {
			files = append(files, img.AlphaDataFile)
		}
	}
	return copyFiles(files, filepath.Join(dir, ImagesDir))
}

// CopyFonts copies the files of fonts into dir/fonts.
func CopyFonts(fonts []*ir.Font, dir string) error {
	var files []string
	for _, font := range fonts {
		files = append(files, font.File)
	}
	return copyFiles(files, filepath.Join(dir, FontsDir))
}

func copyFiles(files []string, dir string) error {
	if len(files) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, file := range files {
		if file == "" {
			return fmt.Errorf("missing resource file for %s", dir)
		}
		dst := filepath.Join(dir, filepath.Base(file))
		if same, _ := filepath.Abs(dst); same == absPath(file) {
			continue
		}
		if err := copyFile(file, dst); err != nil {
			return err
		}
	}
	return nil
}

func absPath(file string) string {
	out, _ := filepath.Abs(file)
	return out
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// CreateOutputFile creates the parent directories of path, then the file.
func CreateOutputFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
