// Package config holds the options of a conversion. Values come from
// the struct defaults, then the SWFCONVERT_* environment variables, then an
// optional TOML file, then the command line flags and -D parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config is threaded explicitly to every component.
type Config struct {
	// Inputs and Outputs are only given on the command line.
	Inputs  []string `ignored:"true" toml:"-"`
	Outputs []string `ignored:"true" toml:"-"`

	LogLevel int  `envconfig:"LOG" default:"3" toml:"log"`
	Silent   bool `envconfig:"SILENT" toml:"silent"`

	Convert Convert `toml:"convert"`
	IR      IR      `toml:"ir"`
	PDF     PDF     `toml:"pdf"`
	SVG     SVG     `toml:"svg"`
}

// Convert are the options of the conversion to frame trees.
type Convert struct {
	// TempDir receives the font and image files. It defaults
	// to the directory of the first input file.
	TempDir    string        `envconfig:"TEMPDIR" toml:"tempdir"`
	YDirection ir.YDirection `ignored:"true" toml:"-"`

	IgnoreEmptyFrames bool `envconfig:"IGNORE_EMPTY" toml:"ignore_empty"`
	GroupFonts        bool `envconfig:"GROUP_FONTS" default:"true" toml:"group_fonts"`
	KeepFontNames     bool `envconfig:"KEEP_FONT_NAMES" toml:"keep_font_names"`

	KeepDuplicateImages bool    `envconfig:"KEEP_DUPLICATE_IMAGES" toml:"keep_duplicate_images"`
	DownsampleImages    bool    `envconfig:"DOWNSAMPLE_IMAGES" toml:"downsample_images"`
	DownsampleFilter    string  `envconfig:"DOWNSAMPLE_FILTER" default:"lanczos3" toml:"downsample_filter"`
	DownsampleMinSize   int     `envconfig:"DOWNSAMPLE_MIN_SIZE" default:"10" toml:"downsample_min_size"`
	MaxDPI              float32 `envconfig:"MAX_DPI" default:"200" toml:"max_dpi"`
	JPEGQuality         int     `envconfig:"JPEG_QUALITY" default:"75" toml:"jpeg_quality"`
	// ImageFormat is one of default, png, jpg.
	ImageFormat string `envconfig:"IMAGE_FORMAT" default:"default" toml:"image_format"`

	ParallelSwfDecoding   bool `envconfig:"PARALLEL_SWF_DECODING" toml:"parallel_swf_decoding"`
	ParallelSwfConversion bool `envconfig:"PARALLEL_SWF_CONVERSION" toml:"parallel_swf_conversion"`
	ParallelImageCreation bool `envconfig:"PARALLEL_IMAGE_CREATION" toml:"parallel_image_creation"`

	Debug Debug `toml:"debug"`
}

// Debug options, usually set with -D key=value.
type Debug struct {
	KeepFonts       bool `envconfig:"KEEP_FONTS" toml:"keep_fonts"`
	KeepImages      bool `envconfig:"KEEP_IMAGES" toml:"keep_images"`
	DrawShapeBounds bool `envconfig:"DRAW_SHAPE_BOUNDS" toml:"draw_shape_bounds"`
	DrawTextBounds  bool `envconfig:"DRAW_TEXT_BOUNDS" toml:"draw_text_bounds"`
	DrawClipBounds  bool `envconfig:"DRAW_CLIP_BOUNDS" toml:"draw_clip_bounds"`
	DisableClipping bool `envconfig:"DISABLE_CLIPPING" toml:"disable_clipping"`
	DisableBlending bool `envconfig:"DISABLE_BLENDING" toml:"disable_blending"`
	DisableMasking  bool `envconfig:"DISABLE_MASKING" toml:"disable_masking"`

	// FramePadding is in inches.
	FramePadding   float32 `envconfig:"FRAME_PADDING" toml:"frame_padding"`
	DebugLineWidth float32 `envconfig:"DEBUG_LINE_WIDTH" default:"20" toml:"debug_line_width"`
	DebugLineColor Color   `envconfig:"DEBUG_LINE_COLOR" default:"#00ff00" toml:"debug_line_color"`

	// FrameSize overrides the size of every frame, in inches, if
	// it has two values.
	FrameSize FloatList `envconfig:"FRAME_SIZE" toml:"frame_size"`
	// BitmapMatrixOffset is a translation pre-concatenated to
	// bitmap fill matrices, if it has two values.
	BitmapMatrixOffset FloatList `envconfig:"BITMAP_MATRIX_OFFSET" toml:"bitmap_matrix_offset"`

	// IgnoreGlyphOffsetsThreshold is in EM square units.
	IgnoreGlyphOffsetsThreshold float32 `envconfig:"IGNORE_GLYPH_OFFSETS_THRESHOLD" default:"32" toml:"ignore_glyph_offsets_threshold"`
	RecursiveFrames             bool    `envconfig:"RECURSIVE_FRAMES" toml:"recursive_frames"`

	// FontScale2 and FontScale3 are the scales of the
	// second and third versions of font definitions.
	FontScale2 FloatList `envconfig:"FONT_SCALE_2" default:"[1,-1,1,1]" toml:"font_scale_2"`
	FontScale3 FloatList `envconfig:"FONT_SCALE_3" default:"[0.05,-0.05,1,1]" toml:"font_scale_3"`
}

// IR are the options of the JSON output.
type IR struct {
	PrettyPrint bool `envconfig:"PRETTY" toml:"pretty"`
	IndentSize  int  `envconfig:"INDENT_SIZE" default:"2" toml:"indent_size"`

	ParallelFrameRendering bool `envconfig:"PARALLEL_FRAME_RENDERING" default:"true" toml:"parallel_frame_rendering"`
}

// PDF are the options of the PDF output.
type PDF struct {
	Compress           bool     `envconfig:"COMPRESS" default:"true" toml:"compress"`
	Metadata           []string `envconfig:"METADATA" toml:"metadata"`
	OptimizePageLabels bool     `envconfig:"OPTIMIZE_PAGE_LABELS" default:"true" toml:"optimize_page_labels"`

	RasterizationEnabled     bool    `envconfig:"RASTERIZATION_ENABLED" toml:"rasterization_enabled"`
	RasterizationThreshold   int     `envconfig:"RASTERIZATION_THRESHOLD" default:"100000" toml:"rasterization_threshold"`
	RasterizationDPI         float32 `envconfig:"RASTERIZATION_DPI" default:"200" toml:"rasterization_dpi"`
	RasterizationFormat      string  `envconfig:"RASTERIZATION_FORMAT" default:"jpg" toml:"rasterization_format"`
	RasterizationJPEGQuality int     `envconfig:"RASTERIZATION_JPEG_QUALITY" default:"75" toml:"rasterization_jpeg_quality"`
	// RasterizerCommand is an external command template, with
	// the {input}, {dpi} and {output} placeholders.
	RasterizerCommand string `envconfig:"RASTERIZER" toml:"rasterizer"`

	ParallelRasterization  bool `envconfig:"PARALLEL_RASTERIZATION" default:"true" toml:"parallel_rasterization"`
	ParallelFrameRendering bool `envconfig:"PARALLEL_FRAME_RENDERING" default:"true" toml:"parallel_frame_rendering"`
}

// SVG are the options of the SVG output.
type SVG struct {
	PrettyPrint        bool `envconfig:"PRETTY" toml:"pretty"`
	Compress           bool `envconfig:"SVGZ" toml:"svgz"`
	Precision          int  `envconfig:"PRECISION" default:"1" toml:"precision"`
	TransformPrecision int  `envconfig:"TRANSFORM_PRECISION" default:"2" toml:"transform_precision"`
	PercentPrecision   int  `envconfig:"PERCENT_PRECISION" default:"2" toml:"percent_precision"`
	WriteProlog        bool `envconfig:"PROLOG" default:"true" toml:"prolog"`
	// ImagesMode is external or base64.
	ImagesMode string `envconfig:"IMAGES_MODE" default:"external" toml:"images_mode"`
	// FontsMode is external, base64 or none.
	FontsMode string `envconfig:"FONTS_MODE" default:"external" toml:"fonts_mode"`

	ParallelFrameRendering bool `envconfig:"PARALLEL_FRAME_RENDERING" default:"true" toml:"parallel_frame_rendering"`
}

// Load returns the defaults overridden by the environment, then by the
// TOML file at path, if not empty.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("swfconvert", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the ranges of the numeric options.
func (cfg *Config) Validate() error {
	c := cfg.Convert
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.DownsampleMinSize >= 3, "minimum downsampling size must be at least 3 px")
	check(c.MaxDPI >= 10 && c.MaxDPI <= 2000, "maximum image density must be between 10 and 2000 DPI")
	check(c.JPEGQuality >= 0 && c.JPEGQuality <= 100, "JPEG quality must be between 0 and 100")
	check(c.Debug.IgnoreGlyphOffsetsThreshold >= 0, "ignore glyph offsets threshold must be positive")
	check(len(c.Debug.FrameSize) == 0 || len(c.Debug.FrameSize) == 2, "frame size must have 2 values")
	check(len(c.Debug.BitmapMatrixOffset) == 0 || len(c.Debug.BitmapMatrixOffset) == 2, "bitmap matrix offset must have 2 values")
	check(len(c.Debug.FontScale2) == 4, "font scale must have 4 values")
	check(len(c.Debug.FontScale3) == 4, "font scale must have 4 values")
	switch c.ImageFormat {
	case "default", "png", "jpg", "jpeg":
	default:
		check(false, "invalid image format %q", c.ImageFormat)
	}

	p := cfg.PDF
	check(p.RasterizationDPI >= 10 && p.RasterizationDPI <= 2000, "rasterization density must be between 10 and 2000 DPI")
	check(p.RasterizationThreshold >= 0, "rasterization threshold complexity must be greater or equal to 0")
	check(p.RasterizationJPEGQuality >= 0 && p.RasterizationJPEGQuality <= 100, "rasterization JPEG quality must be between 0 and 100")
	switch p.RasterizationFormat {
	case "png", "jpg", "jpeg":
	default:
		check(false, "invalid rasterization image format %q", p.RasterizationFormat)
	}
	check(cfg.IR.IndentSize >= 0, "indent size must be positive")
	return errors.Join(errs...)
}

// FontScale converts one of the font scale options.
func FontScale(values FloatList) ir.FontScale {
	if len(values) != 4 {
		return ir.FontScale{ScaleX: 1, ScaleY: 1, UnscaleX: 1, UnscaleY: 1}
	}
	return ir.FontScale{ScaleX: values[0], ScaleY: values[1], UnscaleX: values[2], UnscaleY: values[3]}
}

// Color is an ir.Color read from #rrggbb or #aarrggbb.
type Color ir.Color

func (c *Color) Decode(value string) error {
	hex := strings.TrimPrefix(value, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || (len(hex) != 6 && len(hex) != 8) {
		return fmt.Errorf("invalid color %q", value)
	}
	col := ir.Color(v)
	if len(hex) == 6 {
		col = col.Opaque()
	}
	*c = Color(col)
	return nil
}

func (c *Color) UnmarshalText(text []byte) error { return c.Decode(string(text)) }

// FloatList is read from [a, b, ...].
type FloatList []float32

func (l *FloatList) Decode(value string) error {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return fmt.Errorf("invalid list %q: expected [a, b, ...]", value)
	}
	value = strings.TrimSpace(value[1 : len(value)-1])
	var out FloatList
	if value != "" {
		for _, field := range strings.Split(value, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return fmt.Errorf("invalid list %q: %w", value, err)
			}
			out = append(out, float32(f))
		}
	}
	*l = out
	return nil
}

func (l *FloatList) UnmarshalText(text []byte) error { return l.Decode(string(text)) }
