package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
)

// ImagesDir is the sub-directory of the temporary directory
// receiving the image files.
const ImagesDir = "images"

// dedupImages replaces the image data of each fill by the first
// equal image, and returns the distinct images, in order of first use.
func dedupImages(fills []*ir.ImageFill) []*ir.ImageData {
	var (
		out     []*ir.ImageData
		buckets = map[uint64][]*ir.ImageData{}
	)
	for _, fill := range fills {
		data := fill.Image
		var existing *ir.ImageData
		for _, candidate := range buckets[data.Hash()] {
			if candidate.Equal(data) {
				existing = candidate
				break
			}
		}
		if existing != nil {
			fill.Image = existing
			continue
		}
		buckets[data.Hash()] = append(buckets[data.Hash()], data)
		out = append(out, data)
	}
	return out
}

// distinctImages keeps every image, only removing the repeated pointers.
func distinctImages(fills []*ir.ImageFill) []*ir.ImageData {
	var (
		out  []*ir.ImageData
		seen = map[*ir.ImageData]bool{}
	)
	for _, fill := range fills {
		if !seen[fill.Image] {
			seen[fill.Image] = true
			out = append(out, fill.Image)
		}
	}
	return out
}

// createImageFiles deduplicates the images of the frames (unless
// keepDuplicates) and writes them to dir, named after their index.
func createImageFiles(ctx context.Context, frames []*ir.FrameGroup, dir string, keepDuplicates bool,
	runner render.Runner, progress *render.Progress, logger *slog.Logger,
) error {
	var fills []*ir.ImageFill
	for _, frame := range frames {
		fills = append(fills, ir.Images(frame)...)
	}
	if len(fills) == 0 {
		return nil
	}

	var images []*ir.ImageData
	if keepDuplicates {
		images = distinctImages(fills)
	} else {
		images = dedupImages(fills)
		logger.Info("removed duplicate images", "removed", len(fills)-len(images), "total", len(fills))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	progress.Start(len(images))
	return runner.Run(ctx, len(images), func(_ context.Context, i int) error {
		if err := writeImageFiles(images[i], dir, strconv.Itoa(i)); err != nil {
			return err
		}
		progress.Increment()
		return nil
	})
}

func writeImageFiles(data *ir.ImageData, dir, name string) error {
	ext := data.Format.Extension()
	data.DataFile = filepath.Join(dir, name+"."+ext)
	if err := os.WriteFile(data.DataFile, data.Data, 0o644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	if len(data.AlphaData) != 0 {
		data.AlphaDataFile = filepath.Join(dir, name+"_mask."+ext)
		if err := os.WriteFile(data.AlphaDataFile, data.AlphaData, 0o644); err != nil {
			return fmt.Errorf("writing image mask: %w", err)
		}
	}
	return nil
}
