package main

import (
	"strconv"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/spf13/pflag"
)

// binder declares flags writing to the fields of cfg. The same binder is
// used to show the defaults and to replay the flags given on the command
// line over the configuration file.
type binder func(fs *pflag.FlagSet, cfg *config.Config)

// invertedBool is a boolean flag storing the opposite of its value.
type invertedBool struct{ v *bool }

func (b invertedBool) String() string {
	if b.v == nil {
		return "false"
	}
	return strconv.FormatBool(!*b.v)
}

func (b invertedBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b.v = !v
	return nil
}

func (invertedBool) Type() string { return "bool" }

func invertedBoolFlag(fs *pflag.FlagSet, p *bool, name, shorthand, usage string) {
	fs.VarPF(invertedBool{p}, name, shorthand, usage).NoOptDefVal = "true"
}

func bindGlobal(fs *pflag.FlagSet, cfg *config.Config) {
	c := &cfg.Convert
	fs.IntVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level from 0 (none) to 5 (all)")
	fs.BoolVarP(&cfg.Silent, "silent", "s", cfg.Silent, "don't display the conversion progress")
	fs.StringArrayVarP(&cfg.Outputs, "output", "o", cfg.Outputs, "output files or directories, one per input")
	fs.StringVarP(&c.TempDir, "tempdir", "t", c.TempDir, "directory of the intermediate files (default: the directory of the first input)")
	fs.BoolVarP(&c.IgnoreEmptyFrames, "ignore-empty", "e", c.IgnoreEmptyFrames, "ignore empty frames, not generating output for them")
	invertedBoolFlag(fs, &c.GroupFonts, "dont-group-fonts", "g", "disable font grouping (merging similar fonts together)")
	fs.BoolVar(&c.KeepFontNames, "keep-font-names", c.KeepFontNames, "use the original font names instead of renaming them")
	fs.BoolVar(&c.KeepDuplicateImages, "keep-duplicate-images", c.KeepDuplicateImages, "keep duplicate images with the same data")
	fs.BoolVar(&c.DownsampleImages, "downsample-images", c.DownsampleImages, "downsample big images to reduce the output size")
	fs.StringVar(&c.DownsampleFilter, "downsample-filter", c.DownsampleFilter,
		"downsampling filter: fast, bell, bicubic, bicubichf, box, bspline, hermite, lanczos3, mitchell or triangle")
	fs.IntVar(&c.DownsampleMinSize, "downsample-min-size", c.DownsampleMinSize, "minimum size in pixels that images are downsampled to or from")
	fs.Float32Var(&c.MaxDPI, "max-dpi", c.MaxDPI, "maximum image density in DPI")
	fs.IntVar(&c.JPEGQuality, "jpeg-quality", c.JPEGQuality, "JPEG image quality between 0 and 100")
	fs.StringVar(&c.ImageFormat, "image-format", c.ImageFormat, "format of the images: default, jpg or png")
}

func bindIR(fs *pflag.FlagSet, cfg *config.Config) {
	c := &cfg.IR
	fs.BoolVar(&c.PrettyPrint, "pretty", c.PrettyPrint, "pretty print the output")
	fs.IntVar(&c.IndentSize, "indent-size", c.IndentSize, "indent size when pretty printing")
}

func bindPDF(fs *pflag.FlagSet, cfg *config.Config) {
	c := &cfg.PDF
	invertedBoolFlag(fs, &c.Compress, "no-compress", "", "don't compress the PDF content streams")
	fs.StringArrayVar(&c.Metadata, "metadata", c.Metadata, "metadata file (YAML or JSON) of each input")
	invertedBoolFlag(fs, &c.OptimizePageLabels, "dont-optimize-page-labels", "", "write one page label range per page")
	fs.BoolVar(&c.RasterizationEnabled, "rasterization-enabled", c.RasterizationEnabled, "rasterize the complex frames")
	fs.IntVar(&c.RasterizationThreshold, "rasterization-threshold", c.RasterizationThreshold, "minimum complexity of the rasterized frames")
	fs.Float32Var(&c.RasterizationDPI, "rasterization-dpi", c.RasterizationDPI, "density of the rasterized frames")
	fs.StringVar(&c.RasterizationFormat, "rasterization-format", c.RasterizationFormat, "image format of the rasterized frames: png or jpg")
	fs.IntVar(&c.RasterizationJPEGQuality, "rasterization-jpeg-quality", c.RasterizationJPEGQuality, "JPEG quality of the rasterized frames")
	fs.StringVar(&c.RasterizerCommand, "rasterizer", c.RasterizerCommand,
		"external rasterizer command, with the {input}, {output} and {dpi} placeholders")
}

func bindSVG(fs *pflag.FlagSet, cfg *config.Config) {
	c := &cfg.SVG
	fs.BoolVar(&c.PrettyPrint, "pretty", c.PrettyPrint, "pretty print the output")
	fs.BoolVar(&c.Compress, "svgz", c.Compress, "write gzip compressed SVG files")
	fs.IntVar(&c.Precision, "precision", c.Precision, "precision of the path values")
	fs.IntVar(&c.TransformPrecision, "transform-precision", c.TransformPrecision, "precision of the transform values")
	fs.IntVar(&c.PercentPrecision, "percent-precision", c.PercentPrecision, "precision of the percentages")
	invertedBoolFlag(fs, &c.WriteProlog, "no-prolog", "", "don't write the XML prolog")
	fs.StringVar(&c.ImagesMode, "images-mode", c.ImagesMode, "image references: external or base64")
	fs.StringVar(&c.FontsMode, "fonts-mode", c.FontsMode, "font references: external, base64 or none")
}

// replayFlags applies the flags changed in fs to cfg, through the binders.
// Flags unknown to the binders are ignored.
func replayFlags(fs *pflag.FlagSet, cfg *config.Config, binders ...binder) error {
	target := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	for _, bind := range binders {
		bind(target, cfg)
	}
	var err error
	fs.Visit(func(f *pflag.Flag) {
		dst := target.Lookup(f.Name)
		if dst == nil || err != nil {
			return
		}
		if src, ok := f.Value.(pflag.SliceValue); ok {
			if d, ok := dst.Value.(pflag.SliceValue); ok {
				err = d.Replace(src.GetSlice())
				return
			}
		}
		err = dst.Value.Set(f.Value.String())
	})
	return err
}
