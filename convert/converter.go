package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/benoitkugler/swfconvert/swf"
)

// Converter turns a collection of decoded files into frame trees,
// writing the font and image files to the temporary directory.
type Converter struct {
	cfg      *config.Convert
	logger   *slog.Logger
	progress *render.Progress
	images   *ImageDecoder
}

// NewConverter checks the image options of cfg. progress may be nil.
func NewConverter(cfg *config.Convert, logger *slog.Logger, progress *render.Progress) (*Converter, error) {
	images, err := NewImageDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{cfg: cfg, logger: logger, progress: progress, images: images}, nil
}

func (c *Converter) fontsDir() string  { return filepath.Join(c.cfg.TempDir, FontsDir) }
func (c *Converter) imagesDir() string { return filepath.Join(c.cfg.TempDir, ImagesDir) }

// DecodeFiles reads the XML dumps at paths.
func DecodeFiles(ctx context.Context, paths []string, parallel bool) ([]*swf.File, error) {
	files := make([]*swf.File, len(paths))
	err := render.Runner{Parallel: parallel}.Run(ctx, len(paths), func(_ context.Context, i int) error {
		f, err := os.Open(paths[i])
		if err != nil {
			return err
		}
		defer f.Close()
		file, err := swf.DecodeXML(f)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", paths[i], err)
		}
		files[i] = file
		return nil
	})
	return files, err
}

// ConvertCollection returns the frames of each file. names are used
// in error messages and may be empty.
func (c *Converter) ConvertCollection(ctx context.Context, files []*swf.File, names []string) ([][]*ir.FrameGroup, error) {
	for _, dir := range []string{c.fontsDir(), c.imagesDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return nil, err
		}
	}

	contexts := make([]*Context, len(files))
	for i := range files {
		var name string
		if i < len(names) {
			name = names[i]
		}
		contexts[i] = FileContext(i, name)
	}

	c.progress.BeginStep("Creating fonts")
	groups, fonts, err := NewFontConverter(c.cfg, c.logger).CreateFontGroups(contexts, files)
	if err != nil {
		return nil, err
	}
	if err := createFontFiles(ctx, groups, c.fontsDir(), render.Runner{Parallel: c.cfg.ParallelImageCreation}, c.progress); err != nil {
		return nil, err
	}
	ungroupFonts(groups)
	c.progress.EndStep()

	c.progress.BeginStep("Finding frames")
	frames := make([][]*Frame, len(files))
	c.progress.Start(len(files))
	err = render.Runner{Parallel: c.cfg.ParallelSwfConversion}.Run(ctx, len(files), func(_ context.Context, i int) error {
		fileFrames, err := NewFrameBuilder(c.cfg, c.logger).CreateFrames(contexts[i], files[i])
		if err != nil {
			return err
		}
		if c.cfg.IgnoreEmptyFrames {
			fileFrames = nonEmptyFrames(fileFrames)
		}
		frames[i] = fileFrames
		c.progress.Increment()
		return nil
	})
	c.progress.EndStep()
	if err != nil {
		return nil, err
	}

	c.progress.BeginStep("Converting frames")
	var total int
	for _, fileFrames := range frames {
		total += len(fileFrames)
	}
	c.progress.Start(total)
	out := make([][]*ir.FrameGroup, len(files))
	for i, fileFrames := range frames {
		out[i], err = c.ConvertFile(ctx, fileFrames, i, fonts)
		if err != nil {
			return nil, err
		}
	}
	c.progress.EndStep()

	c.progress.BeginStep("Creating images")
	var all []*ir.FrameGroup
	for _, fileFrames := range out {
		all = append(all, fileFrames...)
	}
	err = createImageFiles(ctx, all, c.imagesDir(), c.cfg.KeepDuplicateImages,
		render.Runner{Parallel: c.cfg.ParallelImageCreation}, c.progress, c.logger)
	c.progress.EndStep()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConvertFile returns the frame trees of the frames of the file
// fileIndex, using the fonts of the collection.
func (c *Converter) ConvertFile(ctx context.Context, frames []*Frame, fileIndex int, fonts map[FontKey]*ir.Font) ([]*ir.FrameGroup, error) {
	out := make([]*ir.FrameGroup, len(frames))
	err := render.Runner{Parallel: c.cfg.ParallelSwfConversion}.Run(ctx, len(frames), func(_ context.Context, i int) error {
		group, err := NewFrameConverter(c.cfg, c.images, fonts, fileIndex, c.logger).CreateFrameGroup(frames[i])
		if err != nil {
			return err
		}
		out[i] = group
		c.progress.Increment()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nonEmptyFrames(frames []*Frame) []*Frame {
	var out []*Frame
	for _, frame := range frames {
		if len(frame.Objects) != 0 {
			out = append(out, frame)
		}
	}
	return out
}

// Cleanup removes the temporary font and image files, unless
// they are kept for debugging.
func (c *Converter) Cleanup() {
	if !c.cfg.Debug.KeepImages {
		c.logger.Info("deleting temporary image files", "dir", c.imagesDir())
		if err := os.RemoveAll(c.imagesDir()); err != nil {
			c.logger.Error("failed to delete temporary image files", "err", err)
		}
	}
	if !c.cfg.Debug.KeepFonts {
		c.logger.Info("deleting temporary font files", "dir", c.fontsDir())
		if err := os.RemoveAll(c.fontsDir()); err != nil {
			c.logger.Error("failed to delete temporary font files", "err", err)
		}
	}
}
